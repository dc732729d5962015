package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/trajcon/internal/constraint"
	"github.com/roach88/trajcon/internal/geometry"
	"github.com/roach88/trajcon/internal/ir"
)

func bayAccel(lo, hi float64) constraint.Constraint {
	return constraint.NewRectangularRegion(
		geometry.NewTranslation2d(0, 0),
		geometry.NewTranslation2d(10, 10),
		constraint.AccelerationLimit{Min: lo, Max: hi},
	)
}

func TestCombine(t *testing.T) {
	constraints := []constraint.Constraint{
		slowZone(),
		constraint.CentripetalAcceleration{Limit: 2},
		bayAccel(-2, 2),
	}

	tests := []struct {
		name   string
		sample ir.Sample
		want   Limits
	}{
		{
			name:   "inside, gates bind",
			sample: ir.Sample{X: 5, Y: 5},
			want:   Limits{MaxVelocity: 3, MinAcceleration: -2, MaxAcceleration: 2, Feasible: true},
		},
		{
			name:   "inside, turn binds",
			sample: ir.Sample{X: 5, Y: 5, Curvature: 2},
			want:   Limits{MaxVelocity: 1, MinAcceleration: -2, MaxAcceleration: 2, Feasible: true},
		},
		{
			name:   "outside, gates drop out",
			sample: ir.Sample{X: 50, Y: 5, Curvature: 0.5},
			want: Limits{
				MaxVelocity:     2,
				MinAcceleration: ir.Bound(math.Inf(-1)),
				MaxAcceleration: ir.Bound(math.Inf(1)),
				Feasible:        true,
				Unconstrained:   true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Combine(constraints, tt.sample))
		})
	}
}

func TestCombine_Infeasible(t *testing.T) {
	got := Combine([]constraint.Constraint{bayAccel(1, 3), bayAccel(-3, -1)}, ir.Sample{X: 1, Y: 1})

	assert.False(t, got.Feasible)
	assert.Equal(t, ir.Bound(1), got.MinAcceleration)
	assert.Equal(t, ir.Bound(-1), got.MaxAcceleration)

	// Outside both regions neither window applies.
	assert.True(t, Combine([]constraint.Constraint{bayAccel(1, 3), bayAccel(-3, -1)}, ir.Sample{X: 20, Y: 1}).Feasible)
}

func TestCombine_Empty(t *testing.T) {
	got := Combine(nil, ir.Sample{})

	assert.True(t, got.MaxVelocity.Infinite())
	assert.True(t, got.Feasible)
	assert.True(t, got.Unconstrained)
}
