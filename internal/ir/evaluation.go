package ir

// Outcome describes how the root constraint answered a query.
type Outcome string

const (
	// OutcomeDelegated means the root is a region gate and the pose was inside.
	OutcomeDelegated Outcome = "delegated"

	// OutcomeGated means the root is a region gate and the pose was outside,
	// so the answer is unconstrained.
	OutcomeGated Outcome = "gated"

	// OutcomeDirect means the root is not a region gate.
	OutcomeDirect Outcome = "direct"
)

// ValidOutcomes defines allowed outcome values.
var ValidOutcomes = map[Outcome]bool{
	OutcomeDelegated: true,
	OutcomeGated:     true,
	OutcomeDirect:    true,
}

// Sample is one query point: a pose plus the path state at that pose.
type Sample struct {
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	Heading   float64 `json:"heading" yaml:"heading"` // radians
	Curvature float64 `json:"curvature" yaml:"curvature"`
	Velocity  float64 `json:"velocity" yaml:"velocity"`
}

// Run groups the evaluations of one constraint over a batch of samples.
type Run struct {
	ID            string `json:"id"` // UUIDv7
	Constraint    string `json:"constraint"`
	SpecHash      string `json:"spec_hash"`
	Seq           int64  `json:"seq"` // logical clock at run start
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// Evaluation is the recorded answer for a single sample.
type Evaluation struct {
	RunID           string  `json:"run_id"`
	Seq             int64   `json:"seq"`
	Sample          Sample  `json:"sample"`
	InRegion        *bool   `json:"in_region,omitempty"` // nil when the root is not a gate
	Outcome         Outcome `json:"outcome"`
	MaxVelocity     Bound   `json:"max_velocity"`
	MinAcceleration Bound   `json:"min_acceleration"`
	MaxAcceleration Bound   `json:"max_acceleration"`
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// FormatInRegion renders an optional in-region flag: "true", "false", or
// "n/a" when the root is not a gate.
func FormatInRegion(b *bool) string {
	switch {
	case b == nil:
		return "n/a"
	case *b:
		return "true"
	default:
		return "false"
	}
}
