package geometry

import "fmt"

// Pose2d is a position plus heading.
type Pose2d struct {
	Translation Translation2d `json:"translation" yaml:"translation"`
	Rotation    Rotation2d    `json:"rotation" yaml:"rotation"`
}

// NewPose2d creates a pose from x, y in metres and a heading.
func NewPose2d(x, y float64, heading Rotation2d) Pose2d {
	return Pose2d{
		Translation: NewTranslation2d(x, y),
		Rotation:    heading,
	}
}

// X returns the x component of the translation.
func (p Pose2d) X() float64 { return p.Translation.XMeters }

// Y returns the y component of the translation.
func (p Pose2d) Y() float64 { return p.Translation.YMeters }

// Heading returns the rotation component.
func (p Pose2d) Heading() Rotation2d { return p.Rotation }

func (p Pose2d) String() string {
	return fmt.Sprintf("Pose2d(%s, %s)", p.Translation, p.Rotation)
}
