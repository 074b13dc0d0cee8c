package kmeans

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmr/mapreduce"
	"github.com/hupe1980/kmr/point"
)

func expectedObjective(t *testing.T, points, centroids []string) float64 {
	t.Helper()
	var sum float64
	for _, ps := range points {
		p, err := point.Parse(ps)
		require.NoError(t, err)

		best := -1.0
		for _, cs := range centroids {
			c, err := point.Parse(cs)
			require.NoError(t, err)
			d, err := p.Distance(c)
			require.NoError(t, err)
			if best < 0 || d < best {
				best = d
			}
		}
		sum += best
	}
	return sum
}

func runConvergence(t *testing.T, points, centroids []string, mapTasks int) float64 {
	t.Helper()
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.txt")
	writeLines(t, in, points)
	bc := writeBroadcast(t, tmp, centroids)
	out := filepath.Join(tmp, "convergence")

	job := ConvergenceJob(in, bc, out, 2, mapTasks)
	require.NoError(t, mapreduce.Run(context.Background(), job))

	lines := readLines(t, out)
	require.Len(t, lines, 1, "exactly one objective record")

	j, err := strconv.ParseFloat(lines[0], 64)
	require.NoError(t, err)
	return j
}

func TestConvergence_ObjectiveIsSumOfMinDistances(t *testing.T) {
	points := []string{"0,0", "0,1", "10,0", "10,1"}
	centroids := []string{"0,0.5", "10,0.5"}

	j := runConvergence(t, points, centroids, 2)
	assert.InDelta(t, expectedObjective(t, points, centroids), j, 1e-9)
	assert.GreaterOrEqual(t, j, 0.0)
}

func TestConvergence_PartitionCountDoesNotChangeJ(t *testing.T) {
	points := []string{"1,2", "3,4", "-1,0.5", "7,7", "2,9"}
	centroids := []string{"0,0", "5,5"}

	j1 := runConvergence(t, points, centroids, 1)
	j3 := runConvergence(t, points, centroids, 3)
	assert.InDelta(t, j1, j3, 1e-9)
}

func TestConvergence_ZeroForPerfectCentroids(t *testing.T) {
	points := []string{"1,1", "2,2"}
	centroids := []string{"1,1", "2,2"}
	assert.Zero(t, runConvergence(t, points, centroids, 1))
}

func TestConvergence_MissingBroadcastFails(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.txt")
	writeLines(t, in, []string{"0,0"})

	job := ConvergenceJob(in, filepath.Join(tmp, "nope"), filepath.Join(tmp, "out"), 2, 1)
	err := mapreduce.Run(context.Background(), job)
	assert.ErrorIs(t, err, mapreduce.ErrBroadcastLoad)
}

func TestConvergenceMapper_EmitsSinglePartialSum(t *testing.T) {
	ctx := context.Background()
	m := newConvergenceMapper(2)
	require.NoError(t, m.Setup(ctx, mapreduce.NewBroadcast([]string{"0,0"})))

	em := &testEmitter{}
	require.NoError(t, m.Map(ctx, "3,4", em))
	require.NoError(t, m.Map(ctx, "0,0", em))
	require.NoError(t, m.Cleanup(ctx, em))

	require.Len(t, em.pairs, 1)
	assert.Equal(t, distanceSumKey, em.pairs[0].Key)
}
