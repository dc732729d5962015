package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/trajcon/internal/ir"
)

// numericFields maps CUE labels to the Node field they populate.
var numericFields = []struct {
	label string
	set   func(n *ir.Node, f float64)
}{
	{"max_velocity", func(n *ir.Node, f float64) { n.MaxVelocity = ir.Float(f) }},
	{"max_centripetal_acceleration", func(n *ir.Node, f float64) { n.MaxCentripetalAcceleration = ir.Float(f) }},
	{"min_acceleration", func(n *ir.Node, f float64) { n.MinAcceleration = ir.Float(f) }},
	{"max_acceleration", func(n *ir.Node, f float64) { n.MaxAcceleration = ir.Float(f) }},
}

// knownLabels is every label a node may carry.
var knownLabels = map[string]bool{
	"description":                  true,
	"kind":                         true,
	"max_velocity":                 true,
	"max_centripetal_acceleration": true,
	"min_acceleration":             true,
	"max_acceleration":             true,
	"bottom_left":                  true,
	"top_right":                    true,
	"inner":                        true,
	"ref":                          true,
}

// CompileConstraint parses a CUE value into a ConstraintSpec.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The CUE value should be the named constraint struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`constraint: cap: {kind: "max_velocity", max_velocity: 3}`)
//	spec, err := CompileConstraint(v.LookupPath(cue.ParsePath("constraint.cap")))
//
// Only structure and types are checked here; schema rules are left to Validate.
func CompileConstraint(v cue.Value) (*ir.ConstraintSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, "cue")
	}

	spec := &ir.ConstraintSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	descVal := v.LookupPath(cue.ParsePath("description"))
	if descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return nil, formatCUEError(err, "description")
		}
		spec.Description = desc
	}

	root, err := compileNode(v, spec.Name)
	if err != nil {
		return nil, err
	}
	spec.Root = *root

	return spec, nil
}

// compileNode parses one node and, recursively, its inner node.
// path is used in error fields, e.g. "slowZone.inner".
func compileNode(v cue.Value, path string) (*ir.Node, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   path,
			Message: fmt.Sprintf("constraint must be a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	node := &ir.Node{}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return nil, &CompileError{
			Field:   path + ".kind",
			Message: "kind is required",
			Pos:     v.Pos(),
		}
	}
	kind, err := kindVal.String()
	if err != nil {
		return nil, formatCUEError(err, path+".kind")
	}
	node.Kind = kind

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err, path)
	}
	for iter.Next() {
		if label := iter.Label(); !knownLabels[label] {
			return nil, &CompileError{
				Field:   path + "." + label,
				Message: fmt.Sprintf("unknown field %q", label),
				Pos:     iter.Value().Pos(),
			}
		}
	}

	for _, f := range numericFields {
		fv := v.LookupPath(cue.ParsePath(f.label))
		if !fv.Exists() {
			continue
		}
		num, err := compileNumber(fv, path+"."+f.label)
		if err != nil {
			return nil, err
		}
		f.set(node, num)
	}

	for _, corner := range []struct {
		label string
		dst   **ir.Point
	}{
		{"bottom_left", &node.BottomLeft},
		{"top_right", &node.TopRight},
	} {
		cv := v.LookupPath(cue.ParsePath(corner.label))
		if !cv.Exists() {
			continue
		}
		p, err := compilePoint(cv, path+"."+corner.label)
		if err != nil {
			return nil, err
		}
		*corner.dst = p
	}

	innerVal := v.LookupPath(cue.ParsePath("inner"))
	if innerVal.Exists() {
		inner, err := compileNode(innerVal, path+".inner")
		if err != nil {
			return nil, err
		}
		node.Inner = inner
	}

	refVal := v.LookupPath(cue.ParsePath("ref"))
	if refVal.Exists() {
		ref, err := refVal.String()
		if err != nil {
			return nil, formatCUEError(err, path+".ref")
		}
		node.Ref = ref
	}

	return node, nil
}

// compileNumber accepts CUE int or float values.
func compileNumber(v cue.Value, field string) (float64, error) {
	switch v.IncompleteKind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
	default:
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be a number, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	f, err := v.Float64()
	if err != nil {
		return 0, formatCUEError(err, field)
	}
	return f, nil
}

func compilePoint(v cue.Value, field string) (*ir.Point, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   field,
			Message: "point must be a struct with x and y",
			Pos:     v.Pos(),
		}
	}
	p := &ir.Point{}
	for _, axis := range []struct {
		label string
		dst   *float64
	}{
		{"x", &p.X},
		{"y", &p.Y},
	} {
		av := v.LookupPath(cue.ParsePath(axis.label))
		if !av.Exists() {
			return nil, &CompileError{
				Field:   field + "." + axis.label,
				Message: fmt.Sprintf("%s is required", axis.label),
				Pos:     v.Pos(),
			}
		}
		f, err := compileNumber(av, field+"."+axis.label)
		if err != nil {
			return nil, err
		}
		*axis.dst = f
	}
	return p, nil
}
