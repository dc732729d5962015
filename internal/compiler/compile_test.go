package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trajcon/internal/ir"
)

func compileString(t *testing.T, src, name string) (*ir.ConstraintSpec, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileConstraint(v.LookupPath(cue.ParsePath("constraint." + name)))
}

func TestCompileConstraint_Region(t *testing.T) {
	src := `
constraint: slowZone: {
	description: "Crawl"
	kind: "rectangular_region"
	bottom_left: {x: 0, y: 0.5}
	top_right: {x: 10, y: 10}
	inner: {kind: "max_velocity", max_velocity: 3}
}
`
	spec, err := compileString(t, src, "slowZone")
	require.NoError(t, err)

	assert.Equal(t, "slowZone", spec.Name)
	assert.Equal(t, "Crawl", spec.Description)
	assert.Equal(t, ir.KindRectangularRegion, spec.Root.Kind)
	assert.Equal(t, &ir.Point{X: 0, Y: 0.5}, spec.Root.BottomLeft)
	assert.Equal(t, &ir.Point{X: 10, Y: 10}, spec.Root.TopRight)
	require.NotNil(t, spec.Root.Inner)
	assert.Equal(t, ir.KindMaxVelocity, spec.Root.Inner.Kind)
	assert.Equal(t, 3.0, *spec.Root.Inner.MaxVelocity)
}

func TestCompileConstraint_AccelerationLimit(t *testing.T) {
	src := `constraint: a: {kind: "acceleration_limit", min_acceleration: -2.5, max_acceleration: 2}`

	spec, err := compileString(t, src, "a")
	require.NoError(t, err)

	assert.Equal(t, -2.5, *spec.Root.MinAcceleration)
	assert.Equal(t, 2.0, *spec.Root.MaxAcceleration)
}

func TestCompileConstraint_Ref(t *testing.T) {
	src := `constraint: r: {kind: "ref", ref: "turns"}`

	spec, err := compileString(t, src, "r")
	require.NoError(t, err)
	assert.Equal(t, "turns", spec.Root.Ref)
}

func TestCompileConstraint_MissingKind(t *testing.T) {
	src := `constraint: bad: {max_velocity: 3}`

	_, err := compileString(t, src, "bad")
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "bad.kind", compileErr.Field)
	assert.Contains(t, compileErr.Message, "kind is required")
}

func TestCompileConstraint_WrongParameterType(t *testing.T) {
	src := `constraint: bad: {kind: "max_velocity", max_velocity: "fast"}`

	_, err := compileString(t, src, "bad")
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "bad.max_velocity", compileErr.Field)
	assert.Contains(t, compileErr.Message, "must be a number")
}

func TestCompileConstraint_UnknownField(t *testing.T) {
	src := `constraint: bad: {kind: "max_velocity", max_velocty: 3}`

	_, err := compileString(t, src, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "max_velocty"`)
}

func TestCompileConstraint_PointMissingAxis(t *testing.T) {
	src := `
constraint: bad: {
	kind: "rectangular_region"
	bottom_left: {x: 0}
	top_right: {x: 1, y: 1}
	inner: {kind: "max_velocity", max_velocity: 1}
}
`
	_, err := compileString(t, src, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.bottom_left.y")
}

func TestCompileConstraint_NestedInnerError(t *testing.T) {
	src := `
constraint: bad: {
	kind: "rectangular_region"
	bottom_left: {x: 0, y: 0}
	top_right: {x: 1, y: 1}
	inner: {max_velocity: 1}
}
`
	_, err := compileString(t, src, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.inner.kind")
}

func TestCompileConstraint_NotAStruct(t *testing.T) {
	src := `constraint: bad: 3`

	_, err := compileString(t, src, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a struct")
}
