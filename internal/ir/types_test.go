package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posInf() float64 { return math.Inf(1) }

func TestJSONFieldNaming(t *testing.T) {
	data, err := json.Marshal(sampleSpec())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"bottom_left"`)
	assert.Contains(t, string(data), `"top_right"`)
	assert.Contains(t, string(data), `"max_velocity"`)
	assert.NotContains(t, string(data), `"bottomLeft"`)
	assert.NotContains(t, string(data), `"min_acceleration"`)
}

func TestNodeRefs(t *testing.T) {
	n := &Node{
		Kind: KindRectangularRegion,
		Inner: &Node{
			Kind:  KindRectangularRegion,
			Inner: &Node{Kind: KindRef, Ref: "turns"},
		},
	}

	assert.Equal(t, []string{"turns"}, n.Refs())

	var empty *Node
	assert.Nil(t, empty.Refs())
}

func TestBoundJSON(t *testing.T) {
	tests := []struct {
		in   Bound
		want string
	}{
		{Bound(math.Inf(1)), `"+Inf"`},
		{Bound(math.Inf(-1)), `"-Inf"`},
		{Bound(2.5), `2.5`},
		{Bound(-2), `-2`},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back Bound
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestBoundNaN(t *testing.T) {
	data, err := json.Marshal(Bound(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, `"NaN"`, string(data))
}

func TestParseBound(t *testing.T) {
	b, err := ParseBound("Inf")
	require.NoError(t, err)
	assert.True(t, b.Infinite())

	b, err = ParseBound("3.25")
	require.NoError(t, err)
	assert.Equal(t, Bound(3.25), b)

	_, err = ParseBound("fast")
	assert.Error(t, err)
}

func TestEvaluationJSON(t *testing.T) {
	ev := Evaluation{
		RunID:           "run-1",
		Seq:             2,
		Sample:          Sample{X: 20, Y: 20},
		InRegion:        Bool(false),
		Outcome:         OutcomeGated,
		MaxVelocity:     Bound(math.Inf(1)),
		MinAcceleration: Bound(math.Inf(-1)),
		MaxAcceleration: Bound(math.Inf(1)),
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"max_velocity":"+Inf"`)
	assert.Contains(t, string(data), `"in_region":false`)

	var back Evaluation
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, ev, back)
}

func TestFormatInRegion(t *testing.T) {
	assert.Equal(t, "n/a", FormatInRegion(nil))
	assert.Equal(t, "true", FormatInRegion(Bool(true)))
	assert.Equal(t, "false", FormatInRegion(Bool(false)))
}
