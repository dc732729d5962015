package constraint

import (
	"math"

	"github.com/roach88/trajcon/internal/geometry"
)

// MaxVelocity caps velocity at a fixed limit everywhere.
type MaxVelocity struct {
	Limit float64
}

func (c MaxVelocity) MaxVelocity(geometry.Pose2d, float64, float64) float64 {
	return c.Limit
}

func (c MaxVelocity) MinMaxAcceleration(geometry.Pose2d, float64, float64) MinMax {
	return Unconstrained()
}

// CentripetalAcceleration limits velocity so that v²·|k| stays below Limit.
type CentripetalAcceleration struct {
	Limit float64
}

// MaxVelocity returns sqrt(Limit / |curvature|); +Inf on a straight line.
func (c CentripetalAcceleration) MaxVelocity(_ geometry.Pose2d, curvature, _ float64) float64 {
	if curvature == 0 {
		return math.Inf(1)
	}
	return math.Sqrt(c.Limit / math.Abs(curvature))
}

func (c CentripetalAcceleration) MinMaxAcceleration(geometry.Pose2d, float64, float64) MinMax {
	return Unconstrained()
}

// AccelerationLimit fixes the acceleration window and leaves velocity free.
type AccelerationLimit struct {
	Min float64
	Max float64
}

func (c AccelerationLimit) MaxVelocity(geometry.Pose2d, float64, float64) float64 {
	return math.Inf(1)
}

func (c AccelerationLimit) MinMaxAcceleration(geometry.Pose2d, float64, float64) MinMax {
	return MinMax{Min: c.Min, Max: c.Max}
}
