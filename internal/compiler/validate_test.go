package compiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trajcon/internal/ir"
)

func region(bl, tr ir.Point, inner *ir.Node) ir.Node {
	return ir.Node{Kind: ir.KindRectangularRegion, BottomLeft: &bl, TopRight: &tr, Inner: inner}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	spec := ir.ConstraintSpec{
		Name: "slowZone",
		Root: region(ir.Point{X: 0, Y: 0}, ir.Point{X: 10, Y: 10},
			&ir.Node{Kind: ir.KindMaxVelocity, MaxVelocity: ir.Float(3)}),
	}

	assert.Empty(t, Validate(&spec))
	assert.Empty(t, Validate(spec))
}

func TestValidate_UnknownKindSuggestion(t *testing.T) {
	spec := ir.ConstraintSpec{Name: "cap", Root: ir.Node{Kind: "max_velocty", MaxVelocity: ir.Float(3)}}

	errs := Validate(&spec)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrKindUnknown, errs[0].Code)
	assert.Equal(t, "cap.kind", errs[0].Field)
	assert.Contains(t, errs[0].Message, `did you mean "max_velocity"?`)
}

func TestValidate_UnknownKindNoSuggestion(t *testing.T) {
	spec := ir.ConstraintSpec{Name: "cap", Root: ir.Node{Kind: "teleport"}}

	errs := Validate(&spec)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrKindUnknown, errs[0].Code)
	assert.NotContains(t, errs[0].Message, "did you mean")
}

func TestValidate_MissingParameters(t *testing.T) {
	tests := []struct {
		name string
		node ir.Node
		want []string
	}{
		{"max velocity", ir.Node{Kind: ir.KindMaxVelocity}, []string{ErrParameterMissing}},
		{"centripetal", ir.Node{Kind: ir.KindCentripetalAcceleration}, []string{ErrParameterMissing}},
		{"acceleration", ir.Node{Kind: ir.KindAccelerationLimit, MinAcceleration: ir.Float(-1)}, []string{ErrParameterMissing}},
		{"region inner", region(ir.Point{}, ir.Point{X: 1, Y: 1}, nil), []string{ErrRegionMissingInner}},
		{"ref target", ir.Node{Kind: ir.KindRef}, []string{ErrInvalidRef}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&ir.ConstraintSpec{Name: "c", Root: tt.node})
			assert.Equal(t, tt.want, codes(errs))
			assert.True(t, HasErrors(errs))
		})
	}
}

func TestValidate_InvalidLimits(t *testing.T) {
	tests := []struct {
		name  string
		limit float64
	}{
		{"negative", -1},
		{"nan", math.NaN()},
		{"infinite", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := ir.ConstraintSpec{Name: "c", Root: ir.Node{Kind: ir.KindMaxVelocity, MaxVelocity: ir.Float(tt.limit)}}
			errs := Validate(&spec)
			require.Len(t, errs, 1)
			assert.Equal(t, ErrInvalidParameter, errs[0].Code)
			assert.Equal(t, "c.max_velocity", errs[0].Field)
		})
	}
}

func TestValidate_NegativeAccelerationIsAllowed(t *testing.T) {
	spec := ir.ConstraintSpec{Name: "c", Root: ir.Node{
		Kind:            ir.KindAccelerationLimit,
		MinAcceleration: ir.Float(-3),
		MaxAcceleration: ir.Float(-1),
	}}

	assert.Empty(t, Validate(&spec))
}

func TestValidate_AccelerationInverted(t *testing.T) {
	spec := ir.ConstraintSpec{Name: "c", Root: ir.Node{
		Kind:            ir.KindAccelerationLimit,
		MinAcceleration: ir.Float(2),
		MaxAcceleration: ir.Float(-2),
	}}

	errs := Validate(&spec)
	assert.Equal(t, []string{ErrAccelerationInverted}, codes(errs))
}

func TestValidate_InvertedRegionIsWarning(t *testing.T) {
	spec := ir.ConstraintSpec{
		Name: "backwards",
		Root: region(ir.Point{X: 10, Y: 10}, ir.Point{X: 0, Y: 0},
			&ir.Node{Kind: ir.KindMaxVelocity, MaxVelocity: ir.Float(1)}),
	}

	errs := Validate(&spec)
	require.Len(t, errs, 1)
	assert.Equal(t, WarnRegionInverted, errs[0].Code)
	assert.True(t, errs[0].IsWarning())
	assert.False(t, HasErrors(errs))
}

func TestValidate_NestedRegionEscapes(t *testing.T) {
	limit := &ir.Node{Kind: ir.KindMaxVelocity, MaxVelocity: ir.Float(1)}

	tests := []struct {
		name  string
		inner ir.Node
		want  []string
	}{
		{"enclosed", region(ir.Point{X: 2, Y: 2}, ir.Point{X: 8, Y: 8}, limit), nil},
		{"shared edge", region(ir.Point{X: 0, Y: 0}, ir.Point{X: 10, Y: 5}, limit), nil},
		{"escapes right", region(ir.Point{X: 5, Y: 5}, ir.Point{X: 15, Y: 8}, limit), []string{WarnRegionEscapes}},
		{"inverted inner", region(ir.Point{X: 20, Y: 20}, ir.Point{X: 15, Y: 15}, limit), []string{WarnRegionInverted}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := tt.inner
			spec := ir.ConstraintSpec{Name: "outer", Root: region(ir.Point{}, ir.Point{X: 10, Y: 10}, &inner)}

			errs := Validate(&spec)
			if tt.want == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, codes(errs))
			assert.False(t, HasErrors(errs))
		})
	}
}

func TestValidate_NestedRegionEscapesField(t *testing.T) {
	inner := region(ir.Point{X: -1, Y: 0}, ir.Point{X: 5, Y: 5},
		&ir.Node{Kind: ir.KindMaxVelocity, MaxVelocity: ir.Float(1)})
	spec := ir.ConstraintSpec{Name: "outer", Root: region(ir.Point{}, ir.Point{X: 10, Y: 10}, &inner)}

	errs := Validate(&spec)
	require.Len(t, errs, 1)
	assert.Equal(t, "outer.inner", errs[0].Field)
	assert.Contains(t, errs[0].Message, "never constrained")
}

func TestValidate_UnusedParameterWarning(t *testing.T) {
	spec := ir.ConstraintSpec{Name: "c", Root: ir.Node{
		Kind:            ir.KindMaxVelocity,
		MaxVelocity:     ir.Float(3),
		MaxAcceleration: ir.Float(1),
	}}

	errs := Validate(&spec)
	require.Len(t, errs, 1)
	assert.Equal(t, WarnUnusedParameter, errs[0].Code)
	assert.Equal(t, "c.max_acceleration", errs[0].Field)
	assert.False(t, HasErrors(errs))
}

func TestValidate_NestedInner(t *testing.T) {
	spec := ir.ConstraintSpec{
		Name: "outer",
		Root: region(ir.Point{}, ir.Point{X: 5, Y: 5},
			&ir.Node{Kind: ir.KindMaxVelocity, MaxVelocity: ir.Float(-3)}),
	}

	errs := Validate(&spec)
	require.Len(t, errs, 1)
	assert.Equal(t, "outer.inner.max_velocity", errs[0].Field)
}

func TestValidate_UnsupportedType(t *testing.T) {
	errs := Validate("not a spec")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedIRType, errs[0].Code)
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "c.kind", Message: "bad", Code: ErrKindUnknown}
	assert.Equal(t, "[E120] c.kind: bad", e.Error())

	e.Line = 4
	assert.Equal(t, "[E120] line 4: c.kind: bad", e.Error())
}

func TestValidateAll(t *testing.T) {
	specs := []ir.ConstraintSpec{
		{Name: "a", Root: ir.Node{Kind: ir.KindRef, Ref: "missing"}},
		{Name: "b", Root: ir.Node{Kind: ir.KindMaxVelocity}},
	}

	assert.Equal(t, []string{ErrParameterMissing, ErrUnresolvedRef}, codes(ValidateAll(specs)))
}
