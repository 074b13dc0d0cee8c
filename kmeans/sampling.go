package kmeans

import (
	"container/heap"
	"context"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/hupe1980/kmr/mapreduce"
	"github.com/hupe1980/kmr/point"
)

// SamplingJob builds the centroid initialization stage: every map task
// keeps a bounded reservoir of k candidates under random priority keys,
// and a single reduce task caps the merged candidates at min(k, N) for
// the whole job. The reduce parallelism is fixed at one; running this
// aggregation with multiple tasks would emit up to k centroids per task.
// Each map task seeds its priority stream with the configured seed
// offset by the task index, so the streams are distinct across
// partitions yet the whole run stays reproducible.
func SamplingJob(input, output string, k int, seed int64, mapTasks int) mapreduce.Job {
	return mapreduce.Job{
		Name:        "sampling",
		NewMapper:   func(task int) mapreduce.Mapper { return newSamplingMapper(k, seed+int64(task)) },
		NewReducer:  func() mapreduce.Reducer { return newSamplingReducer(k) },
		MapTasks:    mapTasks,
		ReduceTasks: 1,
		InputPath:   input,
		OutputPath:  output,
	}
}

// candidate pairs an input point with the random priority key drawn for
// it. Candidates exist only inside the sampling stage.
type candidate struct {
	pri int
	p   point.Point
}

// candidateHeap is a max-heap on priority, so the candidate with the
// numerically highest key is always the one evicted.
type candidateHeap []candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return h[i].pri > h[j].pri }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// samplingMapper holds one partition's reservoir. Because the priority
// keys are i.i.d. uniform, the k candidates that survive are a uniform
// random subsample of the partition.
type samplingMapper struct {
	k         int
	rng       *rand.Rand
	reservoir candidateHeap
}

func newSamplingMapper(k int, seed int64) *samplingMapper {
	return &samplingMapper{
		k:   k,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (m *samplingMapper) Setup(ctx context.Context, bc *mapreduce.Broadcast) error {
	if m.k <= 0 {
		return fmt.Errorf("%w: cluster count must be positive, got %d", mapreduce.ErrInvalidJob, m.k)
	}
	return nil
}

func (m *samplingMapper) Map(ctx context.Context, record string, emit mapreduce.Emitter) error {
	p, err := point.Parse(record)
	if err != nil {
		return err
	}

	heap.Push(&m.reservoir, candidate{pri: m.rng.Int(), p: p})
	if m.reservoir.Len() > m.k {
		heap.Pop(&m.reservoir)
	}
	return nil
}

func (m *samplingMapper) Cleanup(ctx context.Context, emit mapreduce.Emitter) error {
	// The priority key only steers the shuffle; it carries no meaning
	// downstream.
	for _, c := range m.reservoir {
		emit.Emit(strconv.Itoa(c.pri), c.p.String())
	}
	return nil
}

// samplingReducer keeps the first k candidates it sees and drops the
// rest. With the stage's single reduce task this is the global
// min(k, N) cap.
type samplingReducer struct {
	k       int
	emitted int
}

func newSamplingReducer(k int) *samplingReducer {
	return &samplingReducer{k: k}
}

func (r *samplingReducer) Reduce(ctx context.Context, key string, values []string, emit mapreduce.Emitter) error {
	for _, v := range values {
		if r.emitted >= r.k {
			return nil
		}
		if _, err := point.Parse(v); err != nil {
			return err
		}
		emit.Emit("", v)
		r.emitted++
	}
	return nil
}
