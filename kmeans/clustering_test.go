package kmeans

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmr/mapreduce"
	"github.com/hupe1980/kmr/point"
)

// testEmitter collects pairs for direct mapper/reducer tests.
type testEmitter struct {
	pairs []mapreduce.KeyValue
}

func (e *testEmitter) Emit(key, value string) {
	e.pairs = append(e.pairs, mapreduce.KeyValue{Key: key, Value: value})
}

func writeBroadcast(t *testing.T, dir string, centroids []string) string {
	t.Helper()
	bc := filepath.Join(dir, "intermediate-means")
	require.NoError(t, os.Mkdir(bc, 0o755))
	writeLines(t, filepath.Join(bc, "part-r-00000"), centroids)
	return bc
}

func runClustering(t *testing.T, points, centroids []string, d, k int) []string {
	t.Helper()
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.txt")
	writeLines(t, in, points)
	bc := writeBroadcast(t, tmp, centroids)
	out := filepath.Join(tmp, "final-means")

	job := ClusteringJob(in, bc, out, d, k, 4, 2)
	require.NoError(t, mapreduce.Run(context.Background(), job))

	got := readLines(t, out)
	sort.Strings(got)
	return got
}

func TestClustering_RecomputesMeans(t *testing.T) {
	got := runClustering(t,
		[]string{"0,0", "0,1", "10,0", "10,1"},
		[]string{"0,0", "10,1"},
		2, 2,
	)
	assert.Equal(t, []string{"0,0.5", "10,0.5"}, got)
}

func TestClustering_DropsEmptyCentroid(t *testing.T) {
	// The third centroid attracts nothing and must vanish, not reseed.
	got := runClustering(t,
		[]string{"0,0", "0,1", "10,0", "10,1"},
		[]string{"0,0", "10,1", "1000,1000"},
		2, 3,
	)
	assert.Equal(t, []string{"0,0.5", "10,0.5"}, got)
}

func TestClustering_SingleCluster(t *testing.T) {
	got := runClustering(t,
		[]string{"1,1", "3,3", "5,5"},
		[]string{"0,0"},
		2, 1,
	)
	assert.Equal(t, []string{"3,3"}, got)
}

func TestClustering_MissingBroadcastFails(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.txt")
	writeLines(t, in, []string{"0,0"})

	job := ClusteringJob(in, filepath.Join(tmp, "nope"), filepath.Join(tmp, "out"), 2, 1, 1, 1)
	err := mapreduce.Run(context.Background(), job)
	assert.ErrorIs(t, err, mapreduce.ErrBroadcastLoad)
}

func TestClustering_EmptyCentroidSetFails(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.txt")
	writeLines(t, in, []string{"0,0"})
	bc := filepath.Join(tmp, "intermediate-means")
	require.NoError(t, os.Mkdir(bc, 0o755))

	job := ClusteringJob(in, bc, filepath.Join(tmp, "out"), 2, 1, 1, 1)
	err := mapreduce.Run(context.Background(), job)
	assert.ErrorIs(t, err, mapreduce.ErrBroadcastLoad)
}

func TestClustering_WrongDimensionRecordFails(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.txt")
	writeLines(t, in, []string{"0,0,0"})
	bc := writeBroadcast(t, tmp, []string{"0,0"})

	job := ClusteringJob(in, bc, filepath.Join(tmp, "out"), 2, 1, 1, 1)
	err := mapreduce.Run(context.Background(), job)
	assert.ErrorIs(t, err, point.ErrSerialization)
}

func TestClustering_TieBreakFirstCentroidWins(t *testing.T) {
	// (1,0) is exactly equidistant from both centroids; the first in
	// broadcast order takes it, the second empties out and is dropped.
	got := runClustering(t,
		[]string{"1,0"},
		[]string{"0,0", "2,0"},
		2, 2,
	)
	assert.Equal(t, []string{"1,0"}, got)
}

func TestNearest_Order(t *testing.T) {
	p, err := point.Parse("1,0")
	require.NoError(t, err)
	a, err := point.Parse("0,0")
	require.NoError(t, err)
	b, err := point.Parse("2,0")
	require.NoError(t, err)

	// Equidistant: index 0 wins.
	got, err := nearest(p, []point.Point{a, b})
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	// Reversed order: still index 0 (the other centroid).
	got, err = nearest(p, []point.Point{b, a})
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestClusteringMapper_LocalCombining(t *testing.T) {
	// Drive the mapper directly: two centroids, three points near the
	// first, and only one combined record may cross the shuffle.
	bc := mapreduce.NewBroadcast([]string{"0,0", "10,10"})

	ctx := context.Background()
	m := newClusteringMapper(2)
	require.NoError(t, m.Setup(ctx, bc))

	em := &testEmitter{}
	for _, rec := range []string{"0,1", "1,0", "0,0"} {
		require.NoError(t, m.Map(ctx, rec, em))
	}
	require.NoError(t, m.Cleanup(ctx, em))

	require.Len(t, em.pairs, 1, "one combined record per non-empty centroid")
	assert.Equal(t, "0,0", em.pairs[0].Key)

	acc, err := point.ParseAccumulator(em.pairs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, 3, acc.Count())
	assert.Equal(t, []float64{1, 1}, acc.Sum().Coords())
}
