package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/trajcon/internal/ir"
)

// TraceSnapshot captures the recorded trace of a scenario.
// It serializes through ir.MarshalCanonical for byte-stable golden files.
type TraceSnapshot struct {
	ScenarioName string
	Constraint   string
	RunID        string
	Trace        []ir.Evaluation
}

// NewTraceSnapshot builds a snapshot from a result.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		Constraint:   result.Run.Constraint,
		RunID:        result.Run.ID,
		Trace:        result.Trace,
	}
}

// MarshalCanonical returns the canonical JSON form of the snapshot.
func (s TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// toCanonicalMap converts the snapshot to plain maps, since
// ir.MarshalCanonical only accepts IR types and primitives. Unbounded
// limits become the strings "+Inf" and "-Inf".
func (s TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		entry := map[string]any{
			"seq":     ev.Seq,
			"outcome": string(ev.Outcome),
			"sample": map[string]any{
				"x":         ev.Sample.X,
				"y":         ev.Sample.Y,
				"heading":   ev.Sample.Heading,
				"curvature": ev.Sample.Curvature,
				"velocity":  ev.Sample.Velocity,
			},
			"max_velocity":     canonicalBound(ev.MaxVelocity),
			"min_acceleration": canonicalBound(ev.MinAcceleration),
			"max_acceleration": canonicalBound(ev.MaxAcceleration),
		}
		if ev.InRegion != nil {
			entry["in_region"] = *ev.InRegion
		}
		trace[i] = entry
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"constraint":    s.Constraint,
		"run_id":        s.RunID,
		"trace":         trace,
	}
}

func canonicalBound(b ir.Bound) any {
	if b.Infinite() {
		return b.String()
	}
	return float64(b)
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run. A trace mismatch fails t via
// goldie; failed expectations are left in the returned result.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	traceJSON, err := NewTraceSnapshot(name, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)

	return nil
}
