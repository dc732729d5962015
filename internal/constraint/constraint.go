package constraint

import (
	"math"

	"github.com/roach88/trajcon/internal/geometry"
)

// Constraint bounds velocity and acceleration along a path.
//
// Units: pose in metres, curvature in rad/m, velocity in m/s, acceleration
// in m/s².
type Constraint interface {
	// MaxVelocity returns the maximum velocity allowed at the given state.
	MaxVelocity(pose geometry.Pose2d, curvature, velocity float64) float64

	// MinMaxAcceleration returns the acceleration window at the given state.
	MinMaxAcceleration(pose geometry.Pose2d, curvature, velocity float64) MinMax
}

// MinMax is a (minimum, maximum) acceleration bound pair.
type MinMax struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Unconstrained returns the acceleration window that imposes no bound.
func Unconstrained() MinMax {
	return MinMax{Min: math.Inf(-1), Max: math.Inf(1)}
}

// IsUnconstrained reports whether m is exactly (-Inf, +Inf).
func (m MinMax) IsUnconstrained() bool {
	return math.IsInf(m.Min, -1) && math.IsInf(m.Max, 1)
}

// Feasible reports whether the window is non-empty.
func (m MinMax) Feasible() bool {
	return m.Min <= m.Max
}

// Intersect returns the tightest window satisfying both m and other.
func (m MinMax) Intersect(other MinMax) MinMax {
	return MinMax{
		Min: math.Max(m.Min, other.Min),
		Max: math.Min(m.Max, other.Max),
	}
}
