package geometry

import (
	"fmt"
	"math"
)

// Rotation2d is a heading in radians, counter-clockwise from the +x axis.
type Rotation2d struct {
	Radians float64 `json:"radians" yaml:"radians"`
}

// NewRotation2d creates a rotation from radians.
func NewRotation2d(radians float64) Rotation2d {
	return Rotation2d{Radians: radians}
}

// Degrees returns the rotation in degrees.
func (r Rotation2d) Degrees() float64 {
	return r.Radians * 180 / math.Pi
}

func (r Rotation2d) String() string {
	return fmt.Sprintf("Rotation2d(rads=%g, deg=%g)", r.Radians, r.Degrees())
}
