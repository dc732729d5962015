package harness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trajcon/internal/ir"
)

func TestGolden_SlowZone(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "slow_zone"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestGolden_Turns(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "turns"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestTraceSnapshot_MarshalCanonical(t *testing.T) {
	snap := TraceSnapshot{
		ScenarioName: "s",
		Constraint:   "c",
		RunID:        "r",
		Trace: []ir.Evaluation{{
			Seq:             7,
			Sample:          ir.Sample{X: 1.25, Y: -2},
			InRegion:        ir.Bool(true),
			Outcome:         ir.OutcomeDelegated,
			MaxVelocity:     1.5,
			MinAcceleration: ir.Bound(math.Inf(-1)),
			MaxAcceleration: ir.Bound(math.Inf(1)),
		}},
	}

	got, err := snap.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"constraint":"c","run_id":"r","scenario_name":"s","trace":[{"in_region":true,"max_acceleration":"+Inf","max_velocity":1.5,"min_acceleration":"-Inf","outcome":"delegated","sample":{"curvature":0,"heading":0,"velocity":0,"x":1.25,"y":-2},"seq":7}]}`,
		string(got))
}

func TestTraceSnapshot_OmitsInRegionForDirect(t *testing.T) {
	snap := TraceSnapshot{Trace: []ir.Evaluation{{Outcome: ir.OutcomeDirect, MaxVelocity: 2}}}

	got, err := snap.MarshalCanonical()
	require.NoError(t, err)
	assert.NotContains(t, string(got), "in_region")
}

func TestTraceSnapshot_RejectsNaN(t *testing.T) {
	snap := TraceSnapshot{Trace: []ir.Evaluation{{MaxVelocity: ir.Bound(math.NaN())}}}

	_, err := snap.MarshalCanonical()
	assert.Error(t, err)
}
