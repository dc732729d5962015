package compiler

import (
	"fmt"

	"github.com/roach88/trajcon/internal/constraint"
	"github.com/roach88/trajcon/internal/geometry"
	"github.com/roach88/trajcon/internal/ir"
)

// Builder constructs runtime constraints from compiled specs.
// Each named constraint is built at most once and shared by every ref to it.
type Builder struct {
	specs    map[string]ir.ConstraintSpec
	built    map[string]constraint.Constraint
	building map[string]bool
}

// NewBuilder creates a builder over a set of specs.
func NewBuilder(specs []ir.ConstraintSpec) *Builder {
	b := &Builder{
		specs:    make(map[string]ir.ConstraintSpec, len(specs)),
		built:    make(map[string]constraint.Constraint),
		building: make(map[string]bool),
	}
	for _, spec := range specs {
		b.specs[spec.Name] = spec
	}
	return b
}

// Build is shorthand for NewBuilder(specs).Build(name).
func Build(specs []ir.ConstraintSpec, name string) (constraint.Constraint, error) {
	return NewBuilder(specs).Build(name)
}

// Build returns the runtime constraint for the named spec.
func (b *Builder) Build(name string) (constraint.Constraint, error) {
	if c, ok := b.built[name]; ok {
		return c, nil
	}
	spec, ok := b.specs[name]
	if !ok {
		return nil, fmt.Errorf("build %q: %w", name, ErrConstraintNotFound)
	}
	if b.building[name] {
		return nil, fmt.Errorf("build %q: %w", name, ErrCyclicRef)
	}

	b.building[name] = true
	defer delete(b.building, name)

	c, err := b.buildNode(&spec.Root, name)
	if err != nil {
		return nil, err
	}
	b.built[name] = c
	return c, nil
}

func (b *Builder) buildNode(n *ir.Node, path string) (constraint.Constraint, error) {
	switch n.Kind {
	case ir.KindMaxVelocity:
		if n.MaxVelocity == nil {
			return nil, incomplete(path, "max_velocity")
		}
		return constraint.MaxVelocity{Limit: *n.MaxVelocity}, nil

	case ir.KindCentripetalAcceleration:
		if n.MaxCentripetalAcceleration == nil {
			return nil, incomplete(path, "max_centripetal_acceleration")
		}
		return constraint.CentripetalAcceleration{Limit: *n.MaxCentripetalAcceleration}, nil

	case ir.KindAccelerationLimit:
		if n.MinAcceleration == nil || n.MaxAcceleration == nil {
			return nil, incomplete(path, "min_acceleration and max_acceleration")
		}
		return constraint.AccelerationLimit{Min: *n.MinAcceleration, Max: *n.MaxAcceleration}, nil

	case ir.KindRectangularRegion:
		if n.BottomLeft == nil || n.TopRight == nil || n.Inner == nil {
			return nil, incomplete(path, "bottom_left, top_right and inner")
		}
		inner, err := b.buildNode(n.Inner, path+".inner")
		if err != nil {
			return nil, err
		}
		return constraint.NewRectangularRegion(
			geometry.NewTranslation2d(n.BottomLeft.X, n.BottomLeft.Y),
			geometry.NewTranslation2d(n.TopRight.X, n.TopRight.Y),
			inner,
		), nil

	case ir.KindRef:
		if n.Ref == "" {
			return nil, incomplete(path, "ref")
		}
		return b.Build(n.Ref)

	default:
		return nil, fmt.Errorf("build %s: %w: %q", path, ErrUnsupportedKind, n.Kind)
	}
}

func incomplete(path, params string) error {
	return fmt.Errorf("build %s: %w: requires %s", path, ErrIncompleteNode, params)
}

// BuildWithHash builds the named constraint and returns the hash of the specs
// it was built from (the spec and its ref closure).
func BuildWithHash(specs []ir.ConstraintSpec, name string) (constraint.Constraint, string, error) {
	c, err := Build(specs, name)
	if err != nil {
		return nil, "", err
	}
	hash, err := ir.SpecSetHash(RefClosure(specs, name))
	if err != nil {
		return nil, "", fmt.Errorf("build %q: %w", name, err)
	}
	return c, hash, nil
}
