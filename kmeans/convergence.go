package kmeans

import (
	"context"
	"strconv"

	"github.com/hupe1980/kmr/mapreduce"
	"github.com/hupe1980/kmr/point"
)

// distanceSumKey funnels every partition's partial sum into a single
// aggregation group.
const distanceSumKey = "distance_sum"

// ConvergenceJob builds the objective evaluation stage: each map task
// broadcast-loads the newly produced centroid set, sums the distance
// from every point to its nearest centroid, and emits the partial sum
// under one constant key. The single reduce task totals the partials
// into the scalar objective J.
func ConvergenceJob(input, broadcast, output string, d, mapTasks int) mapreduce.Job {
	return mapreduce.Job{
		Name:          "convergence",
		NewMapper:     func(int) mapreduce.Mapper { return newConvergenceMapper(d) },
		NewReducer:    func() mapreduce.Reducer { return convergenceReducer{} },
		MapTasks:      mapTasks,
		ReduceTasks:   1,
		InputPath:     input,
		OutputPath:    output,
		BroadcastPath: broadcast,
	}
}

type convergenceMapper struct {
	d         int
	centroids []point.Point
	sum       float64
}

func newConvergenceMapper(d int) *convergenceMapper {
	return &convergenceMapper{d: d}
}

func (m *convergenceMapper) Setup(ctx context.Context, bc *mapreduce.Broadcast) error {
	centroids, err := loadCentroids(bc, m.d)
	if err != nil {
		return err
	}
	m.centroids = centroids
	return nil
}

func (m *convergenceMapper) Map(ctx context.Context, record string, emit mapreduce.Emitter) error {
	p, err := point.Parse(record)
	if err != nil {
		return err
	}

	// Same metric and same scan as the clustering stage; J is a sum of
	// distances, not squared distances.
	best, err := nearest(p, m.centroids)
	if err != nil {
		return err
	}
	d, err := p.Distance(m.centroids[best])
	if err != nil {
		return err
	}
	m.sum += d
	return nil
}

func (m *convergenceMapper) Cleanup(ctx context.Context, emit mapreduce.Emitter) error {
	emit.Emit(distanceSumKey, strconv.FormatFloat(m.sum, 'g', -1, 64))
	return nil
}

type convergenceReducer struct{}

func (convergenceReducer) Reduce(ctx context.Context, key string, values []string, emit mapreduce.Emitter) error {
	var total float64
	for _, v := range values {
		partial, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		total += partial
	}
	emit.Emit("", strconv.FormatFloat(total, 'g', -1, 64))
	return nil
}
