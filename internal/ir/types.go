package ir

// Constraint kinds understood by the compiler and builder.
const (
	KindMaxVelocity             = "max_velocity"
	KindCentripetalAcceleration = "centripetal_acceleration"
	KindAccelerationLimit       = "acceleration_limit"
	KindRectangularRegion       = "rectangular_region"
	KindRef                     = "ref"
)

// ValidKinds lists every supported node kind.
var ValidKinds = []string{
	KindMaxVelocity,
	KindCentripetalAcceleration,
	KindAccelerationLimit,
	KindRectangularRegion,
	KindRef,
}

// ConstraintSpec is a compiled, named constraint definition.
type ConstraintSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Root        Node   `json:"root"`
}

// Node is one element of a constraint tree. Which parameter fields are set
// depends on Kind.
type Node struct {
	Kind string `json:"kind"`

	// max_velocity
	MaxVelocity *float64 `json:"max_velocity,omitempty"`

	// centripetal_acceleration
	MaxCentripetalAcceleration *float64 `json:"max_centripetal_acceleration,omitempty"`

	// acceleration_limit
	MinAcceleration *float64 `json:"min_acceleration,omitempty"`
	MaxAcceleration *float64 `json:"max_acceleration,omitempty"`

	// rectangular_region
	BottomLeft *Point `json:"bottom_left,omitempty"`
	TopRight   *Point `json:"top_right,omitempty"`
	Inner      *Node  `json:"inner,omitempty"`

	// ref
	Ref string `json:"ref,omitempty"`
}

// Point is a 2D coordinate in metres.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Refs returns every ref target reachable from n, in tree order.
func (n *Node) Refs() []string {
	if n == nil {
		return nil
	}
	var refs []string
	if n.Kind == KindRef && n.Ref != "" {
		refs = append(refs, n.Ref)
	}
	return append(refs, n.Inner.Refs()...)
}

// Float returns a pointer to f, for building nodes by hand.
func Float(f float64) *float64 {
	return &f
}
