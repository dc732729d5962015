package geometry

import "fmt"

// Rectangle is an axis-aligned region given by its bottom-left and top-right
// corners. Corners are taken as given: an inverted rectangle contains nothing
// and a degenerate one contains only its edge.
type Rectangle struct {
	BottomLeft Translation2d `json:"bottom_left" yaml:"bottom_left"`
	TopRight   Translation2d `json:"top_right" yaml:"top_right"`
}

// NewRectangle creates a rectangle from two corners without reordering them.
func NewRectangle(bottomLeft, topRight Translation2d) Rectangle {
	return Rectangle{BottomLeft: bottomLeft, TopRight: topRight}
}

// Contains reports whether p lies within the rectangle, inclusive on all
// four edges. Any NaN operand makes the result false.
func (r Rectangle) Contains(p Translation2d) bool {
	return p.XMeters >= r.BottomLeft.XMeters &&
		p.XMeters <= r.TopRight.XMeters &&
		p.YMeters >= r.BottomLeft.YMeters &&
		p.YMeters <= r.TopRight.YMeters
}

// Inverted reports whether either axis has its corners out of order.
func (r Rectangle) Inverted() bool {
	return r.BottomLeft.XMeters > r.TopRight.XMeters || r.BottomLeft.YMeters > r.TopRight.YMeters
}

// Encloses reports whether other lies entirely within r.
func (r Rectangle) Encloses(other Rectangle) bool {
	return r.Contains(other.BottomLeft) && r.Contains(other.TopRight)
}

func (r Rectangle) String() string {
	return fmt.Sprintf("Rectangle(%s, %s)", r.BottomLeft, r.TopRight)
}
