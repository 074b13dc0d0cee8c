package kmeans

import (
	"context"
	"fmt"

	"github.com/hupe1980/kmr/mapreduce"
	"github.com/hupe1980/kmr/point"
)

// ClusteringJob builds one Lloyd assignment/update iteration. Map tasks
// broadcast-load the current centroid set, assign every point to its
// nearest centroid with local combining, and emit one accumulator per
// centroid that attracted points. Reduce tasks merge the partial sums by
// centroid value and average. Reduce parallelism is bounded by
// min(k, maxReduceTasks) since there are at most k groups.
func ClusteringJob(input, broadcast, output string, d, k, maxReduceTasks, mapTasks int) mapreduce.Job {
	reduceTasks := k
	if maxReduceTasks < reduceTasks {
		reduceTasks = maxReduceTasks
	}
	return mapreduce.Job{
		Name:          "clustering",
		NewMapper:     func(int) mapreduce.Mapper { return newClusteringMapper(d) },
		NewReducer:    func() mapreduce.Reducer { return &clusteringReducer{} },
		MapTasks:      mapTasks,
		ReduceTasks:   reduceTasks,
		InputPath:     input,
		OutputPath:    output,
		BroadcastPath: broadcast,
	}
}

// loadCentroids parses the broadcast centroid set, preserving line order.
// A nil or empty broadcast is a load failure: running with zero centroids
// would make every distance undefined and corrupt output without signal.
func loadCentroids(bc *mapreduce.Broadcast, d int) ([]point.Point, error) {
	if bc.Len() == 0 {
		return nil, fmt.Errorf("%w: empty centroid set", mapreduce.ErrBroadcastLoad)
	}
	centroids := make([]point.Point, 0, bc.Len())
	for _, line := range bc.Lines() {
		c, err := point.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("%w: centroid %q: %v", mapreduce.ErrBroadcastLoad, line, err)
		}
		if c.Dim() != d {
			return nil, fmt.Errorf("%w: centroid has %d coordinates, want %d", mapreduce.ErrBroadcastLoad, c.Dim(), d)
		}
		centroids = append(centroids, c)
	}
	return centroids, nil
}

// clusteringMapper owns one partition's centroid→accumulator table. The
// table is indexed by centroid position so the nearest-centroid scan and
// the tie-break (first in iteration order wins) are deterministic for a
// fixed broadcast order.
type clusteringMapper struct {
	d         int
	centroids []point.Point
	accs      []*point.Accumulator
}

func newClusteringMapper(d int) *clusteringMapper {
	return &clusteringMapper{d: d}
}

func (m *clusteringMapper) Setup(ctx context.Context, bc *mapreduce.Broadcast) error {
	centroids, err := loadCentroids(bc, m.d)
	if err != nil {
		return err
	}
	m.centroids = centroids
	m.accs = make([]*point.Accumulator, len(centroids))
	for i := range m.accs {
		m.accs[i] = point.NewAccumulator(m.d)
	}
	return nil
}

func (m *clusteringMapper) Map(ctx context.Context, record string, emit mapreduce.Emitter) error {
	p, err := point.Parse(record)
	if err != nil {
		return err
	}
	if p.Dim() != m.d {
		return fmt.Errorf("%w: record has %d coordinates, want %d", point.ErrSerialization, p.Dim(), m.d)
	}

	best, err := nearest(p, m.centroids)
	if err != nil {
		return err
	}
	return m.accs[best].Absorb(p)
}

func (m *clusteringMapper) Cleanup(ctx context.Context, emit mapreduce.Emitter) error {
	// One record per centroid that received at least one point. The
	// shuffle key is the centroid's exact text form, so grouping is by
	// coordinate value no matter which worker materialized the centroid.
	for i, acc := range m.accs {
		if acc.Count() > 0 {
			emit.Emit(m.centroids[i].String(), acc.String())
		}
	}
	return nil
}

// nearest returns the index of the closest centroid by linear scan.
// Exact ties keep the earliest index.
func nearest(p point.Point, centroids []point.Point) (int, error) {
	best := 0
	bestDist, err := p.Distance(centroids[0])
	if err != nil {
		return 0, err
	}
	for i := 1; i < len(centroids); i++ {
		d, err := p.Distance(centroids[i])
		if err != nil {
			return 0, err
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// clusteringReducer merges the partial sums for one centroid value and
// emits the averaged replacement. A centroid that attracted no point
// anywhere has no group here and is thereby dropped from the output set:
// the centroid count may shrink across iterations, it is never reseeded.
type clusteringReducer struct{}

func (clusteringReducer) Reduce(ctx context.Context, key string, values []string, emit mapreduce.Emitter) error {
	var merged *point.Accumulator
	for _, v := range values {
		acc, err := point.ParseAccumulator(v)
		if err != nil {
			return err
		}
		if merged == nil {
			merged = acc
			continue
		}
		if err := merged.Merge(acc); err != nil {
			return err
		}
	}
	if merged == nil || merged.Count() == 0 {
		return nil
	}

	mean, err := merged.Mean()
	if err != nil {
		return err
	}
	emit.Emit("", mean.String())
	return nil
}
