package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/roach88/trajcon/internal/constraint"
	"github.com/roach88/trajcon/internal/geometry"
	"github.com/roach88/trajcon/internal/ir"
	"github.com/roach88/trajcon/internal/store"
)

// Evaluator answers queries against one built constraint and records runs.
//
// Thread-safety model:
//   - Query(): safe from any goroutine when the constraint is
//   - Evaluate(), Replay(): safe from any goroutine; seq values stay unique
//     because the clock is atomic, and the store serializes writes
type Evaluator struct {
	constraint constraint.Constraint
	name       string
	specHash   string
	store      *store.Store
	clock      SeqClock
	runIDs     RunIDGenerator
	logger     *slog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithStore records runs to s. Without a store only Query is usable.
func WithStore(s *store.Store) Option {
	return func(e *Evaluator) {
		e.store = s
	}
}

// WithClock replaces the default clock, which starts at 0.
// Use NewClockAt(store.LatestSeq) when appending to an existing database.
func WithClock(c SeqClock) Option {
	return func(e *Evaluator) {
		e.clock = c
	}
}

// WithRunIDGenerator replaces the default UUIDv7 generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Evaluator) {
		e.runIDs = g
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = l
	}
}

// New creates an Evaluator for the constraint registered under name.
// specHash identifies the spec version the constraint was built from and is
// stored on every run.
func New(c constraint.Constraint, name, specHash string, opts ...Option) *Evaluator {
	e := &Evaluator{
		constraint: c,
		name:       name,
		specHash:   specHash,
		clock:      NewClock(),
		runIDs:     UUIDv7Generator{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the constraint name.
func (e *Evaluator) Name() string {
	return e.name
}

// Query answers a single sample without recording it. The result has no
// RunID and Seq 0.
//
// Outcome is OutcomeDirect unless the root constraint is a region gate, in
// which case InRegion is set and Outcome is OutcomeDelegated (inside) or
// OutcomeGated (outside).
func (e *Evaluator) Query(s ir.Sample) ir.Evaluation {
	pose := samplePose(s)

	ev := ir.Evaluation{
		Sample:  s,
		Outcome: ir.OutcomeDirect,
	}
	if gate, ok := e.constraint.(constraint.Gate); ok {
		in := gate.IsPoseInRegion(pose)
		ev.InRegion = ir.Bool(in)
		ev.Outcome = ir.OutcomeGated
		if in {
			ev.Outcome = ir.OutcomeDelegated
		}
	}

	ev.MaxVelocity = ir.Bound(e.constraint.MaxVelocity(pose, s.Curvature, s.Velocity))
	mm := e.constraint.MinMaxAcceleration(pose, s.Curvature, s.Velocity)
	ev.MinAcceleration = ir.Bound(mm.Min)
	ev.MaxAcceleration = ir.Bound(mm.Max)
	return ev
}

// Evaluate answers every sample in order and records them as one run.
//
// The run takes the next seq and each evaluation the one after, so seq is
// strictly increasing within and across runs sharing a clock. Samples must be
// finite; if any is not, Evaluate fails before taking a seq or a run id.
func (e *Evaluator) Evaluate(ctx context.Context, samples []ir.Sample) (ir.Run, []ir.Evaluation, error) {
	if e.store == nil {
		return ir.Run{}, nil, &RuntimeError{Code: ErrCodeNoStore, Message: "evaluator has no store"}
	}
	for i, s := range samples {
		if field, ok := nonFinite(s); ok {
			return ir.Run{}, nil, &RuntimeError{
				Code:    ErrCodeInvalidSample,
				Message: fmt.Sprintf("sample %d has non-finite %s", i, field),
			}
		}
	}

	run := ir.Run{
		ID:            e.runIDs.Generate(),
		Constraint:    e.name,
		SpecHash:      e.specHash,
		Seq:           e.clock.Next(),
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}

	e.logger.Debug("run starting",
		"run_id", run.ID,
		"constraint", run.Constraint,
		"samples", len(samples),
		"seq", run.Seq)

	evals := make([]ir.Evaluation, 0, len(samples))
	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return ir.Run{}, nil, fmt.Errorf("evaluate %s: %w", e.name, err)
		}
		ev := e.Query(s)
		ev.RunID = run.ID
		ev.Seq = e.clock.Next()

		e.logger.Debug("sample evaluated",
			"run_id", run.ID,
			"seq", ev.Seq,
			"outcome", ev.Outcome,
			"max_velocity", ev.MaxVelocity.String())

		evals = append(evals, ev)
	}

	if err := e.store.WriteRunWithEvaluations(ctx, run, evals); err != nil {
		return ir.Run{}, nil, fmt.Errorf("evaluate %s: %w", e.name, err)
	}

	e.logger.Info("run recorded",
		"run_id", run.ID,
		"constraint", run.Constraint,
		"evaluations", len(evals),
		"outcomes", CountOutcomes(evals))

	return run, evals, nil
}

func samplePose(s ir.Sample) geometry.Pose2d {
	return geometry.NewPose2d(s.X, s.Y, geometry.NewRotation2d(s.Heading))
}

// CountOutcomes tallies evaluations by outcome.
func CountOutcomes(evals []ir.Evaluation) map[ir.Outcome]int {
	counts := make(map[ir.Outcome]int, len(ir.ValidOutcomes))
	for _, ev := range evals {
		counts[ev.Outcome]++
	}
	return counts
}

// nonFinite returns the first non-finite field of s.
func nonFinite(s ir.Sample) (string, bool) {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"x", s.X},
		{"y", s.Y},
		{"heading", s.Heading},
		{"curvature", s.Curvature},
		{"velocity", s.Velocity},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return f.name, true
		}
	}
	return "", false
}
