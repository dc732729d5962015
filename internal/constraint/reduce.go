package constraint

import (
	"math"

	"github.com/roach88/trajcon/internal/geometry"
)

// Reduce combines constraints at a single state: the smallest max velocity
// and the intersection of all acceleration windows. With no constraints it
// returns (+Inf, Unconstrained()).
//
// The returned window may be infeasible (Min > Max); callers decide how to
// treat that.
func Reduce(constraints []Constraint, pose geometry.Pose2d, curvature, velocity float64) (float64, MinMax) {
	maxVelocity := math.Inf(1)
	window := Unconstrained()
	for _, c := range constraints {
		maxVelocity = math.Min(maxVelocity, c.MaxVelocity(pose, curvature, velocity))
		window = window.Intersect(c.MinMaxAcceleration(pose, curvature, velocity))
	}
	return maxVelocity, window
}
