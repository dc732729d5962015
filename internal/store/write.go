package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/trajcon/internal/ir"
)

// execer is the subset of *sql.DB and *sql.Tx the writers need.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING, so writing the same run twice is a no-op.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	if err := writeRun(ctx, s.db, run); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteEvaluation inserts one evaluation. The run it references must exist
// (foreign key). A second write for the same (run_id, seq) is ignored.
func (s *Store) WriteEvaluation(ctx context.Context, e ir.Evaluation) error {
	if err := writeEvaluation(ctx, s.db, e); err != nil {
		return fmt.Errorf("write evaluation: %w", err)
	}
	return nil
}

// WriteRunWithEvaluations writes a run and all its evaluations in a single
// transaction. Either every row persists or none do.
func (s *Store) WriteRunWithEvaluations(ctx context.Context, run ir.Run, evals []ir.Evaluation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run %s: begin tx: %w", run.ID, err)
	}
	defer tx.Rollback() // No-op if committed

	if err := writeRun(ctx, tx, run); err != nil {
		return fmt.Errorf("write run %s: %w", run.ID, err)
	}
	for _, e := range evals {
		if err := writeEvaluation(ctx, tx, e); err != nil {
			return fmt.Errorf("write run %s: evaluation seq=%d: %w", run.ID, e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run %s: commit: %w", run.ID, err)
	}
	return nil
}

func writeRun(ctx context.Context, db execer, run ir.Run) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO runs
		(id, constraint_name, spec_hash, seq, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Constraint,
		run.SpecHash,
		run.Seq,
		run.EngineVersion,
		run.IRVersion,
	)
	return err
}

func writeEvaluation(ctx context.Context, db execer, e ir.Evaluation) error {
	maxVel, minAcc, maxAcc, err := evaluationLimits(e)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO evaluations
		(run_id, seq, x, y, heading, curvature, velocity, in_region, outcome,
		 max_velocity, min_acceleration, max_acceleration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		e.RunID,
		e.Seq,
		e.Sample.X,
		e.Sample.Y,
		e.Sample.Heading,
		e.Sample.Curvature,
		e.Sample.Velocity,
		boolToNull(e.InRegion),
		string(e.Outcome),
		maxVel,
		minAcc,
		maxAcc,
	)
	return err
}
