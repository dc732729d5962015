package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/trajcon/internal/ir"
)

// Mismatch is one field whose replayed value differs from the recording.
type Mismatch struct {
	Seq      int64  `json:"seq"`
	Field    string `json:"field"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

// ReplayResult summarizes a replay of one recorded run.
type ReplayResult struct {
	RunID           string     `json:"run_id"`
	Constraint      string     `json:"constraint"`
	SpecHashChanged bool       `json:"spec_hash_changed"`
	Checked         int        `json:"checked"`
	Mismatches      []Mismatch `json:"mismatches"`
}

// Identical reports whether every replayed evaluation matched.
func (r *ReplayResult) Identical() bool {
	return len(r.Mismatches) == 0
}

// Replay re-evaluates the samples of a recorded run against the current
// constraint and compares each answer to what was stored.
//
// Replay writes nothing. Evaluation is deterministic, so a mismatch means the
// constraint changed since the run was recorded; SpecHashChanged says whether
// the spec text changed too.
func (e *Evaluator) Replay(ctx context.Context, runID string) (*ReplayResult, error) {
	if e.store == nil {
		return nil, &RuntimeError{Code: ErrCodeNoStore, Message: "evaluator has no store", RunID: runID}
	}

	run, err := e.store.ReadRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &RuntimeError{Code: ErrCodeRunNotFound, Message: "run not found", RunID: runID}
	}
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}
	if run.Constraint != e.name {
		return nil, &RuntimeError{
			Code:    ErrCodeConstraintMismatch,
			Message: fmt.Sprintf("run recorded for %q, evaluator built for %q", run.Constraint, e.name),
			RunID:   runID,
		}
	}

	recorded, err := e.store.ReadEvaluations(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", runID, err)
	}

	result := &ReplayResult{
		RunID:           runID,
		Constraint:      run.Constraint,
		SpecHashChanged: run.SpecHash != e.specHash,
		Mismatches:      []Mismatch{},
	}
	for _, want := range recorded {
		got := e.Query(want.Sample)
		result.Mismatches = append(result.Mismatches, diffEvaluation(want, got)...)
		result.Checked++
	}

	level := e.logger.Info
	if !result.Identical() {
		level = e.logger.Warn
	}
	level("run replayed",
		"run_id", runID,
		"checked", result.Checked,
		"mismatches", len(result.Mismatches),
		"spec_hash_changed", result.SpecHashChanged)

	return result, nil
}

// diffEvaluation compares the answer fields of two evaluations of the same
// sample. Run id and seq are not compared.
func diffEvaluation(want, got ir.Evaluation) []Mismatch {
	var out []Mismatch
	add := func(field, recorded, replayed string) {
		if recorded != replayed {
			out = append(out, Mismatch{Seq: want.Seq, Field: field, Recorded: recorded, Replayed: replayed})
		}
	}

	add("outcome", string(want.Outcome), string(got.Outcome))
	add("in_region", ir.FormatInRegion(want.InRegion), ir.FormatInRegion(got.InRegion))
	add("max_velocity", want.MaxVelocity.String(), got.MaxVelocity.String())
	add("min_acceleration", want.MinAcceleration.String(), got.MinAcceleration.String())
	add("max_acceleration", want.MaxAcceleration.String(), got.MaxAcceleration.String())
	return out
}
