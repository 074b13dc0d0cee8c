package point

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator_Absorb(t *testing.T) {
	a := NewAccumulator(2)
	require.NoError(t, a.Absorb(mustPoint(t, 1, 2)))
	require.NoError(t, a.Absorb(mustPoint(t, 3, 4)))

	assert.Equal(t, 2, a.Count())
	assert.Equal(t, []float64{4, 6}, a.Sum().Coords())
}

func TestAccumulator_MergeAssociativeCommutative(t *testing.T) {
	points := []Point{
		mustPoint(t, 1, 1),
		mustPoint(t, 2, 0),
		mustPoint(t, -1, 3),
		mustPoint(t, 0.5, 0.5),
	}

	// (p0 p1) + (p2 p3)
	left := NewAccumulator(2)
	require.NoError(t, left.Absorb(points[0]))
	require.NoError(t, left.Absorb(points[1]))
	right := NewAccumulator(2)
	require.NoError(t, right.Absorb(points[2]))
	require.NoError(t, right.Absorb(points[3]))
	require.NoError(t, left.Merge(right))

	// (p3) + (p2 p1 p0), merged the other way around
	a := NewAccumulator(2)
	require.NoError(t, a.Absorb(points[3]))
	b := NewAccumulator(2)
	require.NoError(t, b.Absorb(points[2]))
	require.NoError(t, b.Absorb(points[1]))
	require.NoError(t, b.Absorb(points[0]))
	require.NoError(t, b.Merge(a))

	assert.Equal(t, left.Count(), b.Count())
	assert.Equal(t, left.Sum().Coords(), b.Sum().Coords())
}

func TestAccumulator_Mean(t *testing.T) {
	a := NewAccumulator(2)
	require.NoError(t, a.Absorb(mustPoint(t, 0, 0)))
	require.NoError(t, a.Absorb(mustPoint(t, 0, 1)))

	mean, err := a.Mean()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5}, mean.Coords())
}

func TestAccumulator_MeanEmpty(t *testing.T) {
	_, err := NewAccumulator(2).Mean()
	assert.ErrorIs(t, err, ErrArithmetic)
}

func TestAccumulator_MergeDimensionMismatch(t *testing.T) {
	a := NewAccumulator(2)
	b := NewAccumulator(3)
	assert.ErrorIs(t, a.Merge(b), ErrDimensionMismatch)
}

func TestAccumulator_StringRoundTrip(t *testing.T) {
	a := NewAccumulator(2)
	require.NoError(t, a.Absorb(mustPoint(t, 1.5, -2)))
	require.NoError(t, a.Absorb(mustPoint(t, 0.5, 1)))

	b, err := ParseAccumulator(a.String())
	require.NoError(t, err)
	assert.Equal(t, a.Count(), b.Count())
	assert.Equal(t, a.Sum().Coords(), b.Sum().Coords())
}

func TestParseAccumulator_Malformed(t *testing.T) {
	for _, s := range []string{"", "1,2", "1,2 x", "1,2 -1", "a,b 2"} {
		_, err := ParseAccumulator(s)
		assert.ErrorIs(t, err, ErrSerialization, "input %q", s)
	}
}
