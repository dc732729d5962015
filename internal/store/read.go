package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/roach88/trajcon/internal/ir"
	"github.com/roach88/trajcon/internal/queryir"
	"github.com/roach88/trajcon/internal/querysql"
)

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	runs, err := s.QueryRuns(ctx, queryir.Equals{Field: "id", Value: id})
	if err != nil {
		return ir.Run{}, err
	}
	if len(runs) == 0 {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, sql.ErrNoRows)
	}
	return runs[0], nil
}

// ListRuns returns every run, optionally restricted to one constraint name,
// ordered by seq.
func (s *Store) ListRuns(ctx context.Context, constraintName string) ([]ir.Run, error) {
	var filter queryir.Predicate
	if constraintName != "" {
		filter = queryir.Equals{Field: "constraint_name", Value: constraintName}
	}
	return s.QueryRuns(ctx, filter)
}

// LatestRun returns the run with the highest seq.
// Returns sql.ErrNoRows if the store has no runs.
func (s *Store) LatestRun(ctx context.Context) (ir.Run, error) {
	runs, err := s.ListRuns(ctx, "")
	if err != nil {
		return ir.Run{}, err
	}
	if len(runs) == 0 {
		return ir.Run{}, fmt.Errorf("latest run: %w", sql.ErrNoRows)
	}
	return runs[len(runs)-1], nil
}

// QueryRuns returns the runs matching filter (nil = all).
func (s *Store) QueryRuns(ctx context.Context, filter queryir.Predicate) ([]ir.Run, error) {
	query, params, err := querysql.Compile(queryir.Select{
		From:   queryir.TableRuns,
		Filter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		var r ir.Run
		if err := rows.Scan(&r.ID, &r.Constraint, &r.SpecHash, &r.Seq, &r.EngineVersion, &r.IRVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEvaluations returns all evaluations of a run in seq order.
// Returns an empty slice (not nil) if the run has none.
func (s *Store) ReadEvaluations(ctx context.Context, runID string) ([]ir.Evaluation, error) {
	return s.QueryEvaluations(ctx, queryir.Equals{Field: "run_id", Value: runID}, 0)
}

// QueryEvaluations returns the evaluations matching filter (nil = all),
// ordered by seq, at most limit rows when limit > 0.
func (s *Store) QueryEvaluations(ctx context.Context, filter queryir.Predicate, limit int) ([]ir.Evaluation, error) {
	query, params, err := querysql.Compile(queryir.Select{
		From:   queryir.TableEvaluations,
		Filter: filter,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	evals := []ir.Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evals, nil
}

// scanEvaluation reads a row in queryir.Columns[TableEvaluations] order.
func scanEvaluation(rows *sql.Rows) (ir.Evaluation, error) {
	var (
		e                      ir.Evaluation
		outcome                string
		inRegion               sql.NullBool
		maxVel, minAcc, maxAcc sql.NullFloat64
	)
	err := rows.Scan(
		&e.RunID,
		&e.Seq,
		&e.Sample.X,
		&e.Sample.Y,
		&e.Sample.Heading,
		&e.Sample.Curvature,
		&e.Sample.Velocity,
		&inRegion,
		&outcome,
		&maxVel,
		&minAcc,
		&maxAcc,
	)
	if err != nil {
		return ir.Evaluation{}, fmt.Errorf("scan evaluation: %w", err)
	}

	e.Outcome = ir.Outcome(outcome)
	e.InRegion = nullToBool(inRegion)
	e.MaxVelocity = nullToBound(maxVel, math.Inf(1))
	e.MinAcceleration = nullToBound(minAcc, math.Inf(-1))
	e.MaxAcceleration = nullToBound(maxAcc, math.Inf(1))
	return e, nil
}
