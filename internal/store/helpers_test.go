package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/trajcon/internal/ir"
)

// createTestStore creates a store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestRun(id, name string, seq int64) ir.Run {
	return ir.Run{
		ID:            id,
		Constraint:    name,
		SpecHash:      "test-hash",
		Seq:           seq,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

// createInsideEvaluation is a delegated evaluation capped at maxVel.
func createInsideEvaluation(runID string, seq int64, maxVel float64) ir.Evaluation {
	return ir.Evaluation{
		RunID:           runID,
		Seq:             seq,
		Sample:          ir.Sample{X: 5, Y: 5, Velocity: 1},
		InRegion:        ir.Bool(true),
		Outcome:         ir.OutcomeDelegated,
		MaxVelocity:     ir.Bound(maxVel),
		MinAcceleration: ir.Bound(math.Inf(-1)),
		MaxAcceleration: ir.Bound(math.Inf(1)),
	}
}

// createOutsideEvaluation is a gated, fully unconstrained evaluation.
func createOutsideEvaluation(runID string, seq int64) ir.Evaluation {
	return ir.Evaluation{
		RunID:           runID,
		Seq:             seq,
		Sample:          ir.Sample{X: 15, Y: 5, Heading: math.Pi / 2},
		InRegion:        ir.Bool(false),
		Outcome:         ir.OutcomeGated,
		MaxVelocity:     ir.Bound(math.Inf(1)),
		MinAcceleration: ir.Bound(math.Inf(-1)),
		MaxAcceleration: ir.Bound(math.Inf(1)),
	}
}
