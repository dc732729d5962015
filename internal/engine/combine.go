package engine

import (
	"github.com/roach88/trajcon/internal/constraint"
	"github.com/roach88/trajcon/internal/ir"
)

// Limits is the combined answer of several constraints at one sample.
type Limits struct {
	MaxVelocity     ir.Bound `json:"max_velocity"`
	MinAcceleration ir.Bound `json:"min_acceleration"`
	MaxAcceleration ir.Bound `json:"max_acceleration"`

	// Feasible is false when the acceleration windows do not overlap.
	Feasible bool `json:"feasible"`

	// Unconstrained is true when no constraint bounds acceleration here.
	Unconstrained bool `json:"unconstrained"`
}

// Combine answers s against every constraint and reduces the answers: the
// smallest max velocity and the intersection of the acceleration windows.
// With no constraints everything is unbounded.
func Combine(constraints []constraint.Constraint, s ir.Sample) Limits {
	v, window := constraint.Reduce(constraints, samplePose(s), s.Curvature, s.Velocity)
	return Limits{
		MaxVelocity:     ir.Bound(v),
		MinAcceleration: ir.Bound(window.Min),
		MaxAcceleration: ir.Bound(window.Max),
		Feasible:        window.Feasible(),
		Unconstrained:   window.IsUnconstrained(),
	}
}
