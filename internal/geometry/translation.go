package geometry

import "fmt"

// Translation2d is a position on the field plane.
type Translation2d struct {
	XMeters float64 `json:"x" yaml:"x"`
	YMeters float64 `json:"y" yaml:"y"`
}

// NewTranslation2d creates a translation from x and y in metres.
func NewTranslation2d(x, y float64) Translation2d {
	return Translation2d{XMeters: x, YMeters: y}
}

// X returns the x component in metres.
func (t Translation2d) X() float64 { return t.XMeters }

// Y returns the y component in metres.
func (t Translation2d) Y() float64 { return t.YMeters }

func (t Translation2d) String() string {
	return fmt.Sprintf("Translation2d(x=%g, y=%g)", t.XMeters, t.YMeters)
}
