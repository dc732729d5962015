package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSpec() ConstraintSpec {
	return ConstraintSpec{
		Name:        "slowZone",
		Description: "Crawl through the loading bay",
		Root: Node{
			Kind:       KindRectangularRegion,
			BottomLeft: &Point{X: 0, Y: 0},
			TopRight:   &Point{X: 10, Y: 10},
			Inner:      &Node{Kind: KindMaxVelocity, MaxVelocity: Float(1.5)},
		},
	}
}

func TestSpecHash_Stable(t *testing.T) {
	h1, err := SpecHash(sampleSpec())
	require.NoError(t, err)
	h2, err := SpecHash(sampleSpec())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestSpecHash_ChangesWithParameters(t *testing.T) {
	a := sampleSpec()
	b := sampleSpec()
	b.Root.Inner.MaxVelocity = Float(2)

	ha, err := SpecHash(a)
	require.NoError(t, err)
	hb, err := SpecHash(b)
	require.NoError(t, err)

	assert.NotEqual(t, ha, hb)
}

func TestSpecSetHash_OrderIndependent(t *testing.T) {
	other := ConstraintSpec{Name: "cap", Root: Node{Kind: KindMaxVelocity, MaxVelocity: Float(3)}}

	h1, err := SpecSetHash([]ConstraintSpec{sampleSpec(), other})
	require.NoError(t, err)
	h2, err := SpecSetHash([]ConstraintSpec{other, sampleSpec()})
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestSpecHash_RejectsNonFiniteParameter(t *testing.T) {
	spec := ConstraintSpec{Name: "bad", Root: Node{Kind: KindMaxVelocity, MaxVelocity: Float(posInf())}}

	_, err := SpecHash(spec)
	assert.Error(t, err)
}
