package constraint

import (
	"math"

	"github.com/roach88/trajcon/internal/geometry"
)

// RectangularRegion enforces an inner constraint only within a rectangular
// region of the field.
//
// The corners are not validated: an inverted rectangle yields a region that
// contains no poses.
type RectangularRegion struct {
	region geometry.Rectangle
	inner  Constraint
}

// NewRectangularRegion creates a region gate around inner.
func NewRectangularRegion(bottomLeft, topRight geometry.Translation2d, inner Constraint) *RectangularRegion {
	return &RectangularRegion{
		region: geometry.NewRectangle(bottomLeft, topRight),
		inner:  inner,
	}
}

// MaxVelocity delegates to the inner constraint inside the region and
// returns +Inf outside it.
func (r *RectangularRegion) MaxVelocity(pose geometry.Pose2d, curvature, velocity float64) float64 {
	if r.IsPoseInRegion(pose) {
		return r.inner.MaxVelocity(pose, curvature, velocity)
	}
	return math.Inf(1)
}

// MinMaxAcceleration delegates to the inner constraint inside the region and
// returns (-Inf, +Inf) outside it.
func (r *RectangularRegion) MinMaxAcceleration(pose geometry.Pose2d, curvature, velocity float64) MinMax {
	if r.IsPoseInRegion(pose) {
		return r.inner.MinMaxAcceleration(pose, curvature, velocity)
	}
	return Unconstrained()
}

// IsPoseInRegion reports whether the pose's position lies within the region,
// inclusive on all edges. Heading is ignored.
func (r *RectangularRegion) IsPoseInRegion(pose geometry.Pose2d) bool {
	return r.region.Contains(pose.Translation)
}

// Region returns the gating rectangle.
func (r *RectangularRegion) Region() geometry.Rectangle {
	return r.region
}

// Gate is implemented by constraints that apply only within a region.
type Gate interface {
	Constraint
	IsPoseInRegion(pose geometry.Pose2d) bool
}

var _ Gate = (*RectangularRegion)(nil)
