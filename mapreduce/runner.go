package mapreduce

import (
	"bufio"
	"context"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Run executes a job to completion: map phase, shuffle, reduce phase,
// output. The first task error cancels the remaining tasks and fails the
// run; partial output may be left behind and is the caller's to clean.
func Run(ctx context.Context, job Job) error {
	if err := job.validate(); err != nil {
		return err
	}
	fsys := job.fsys()
	logger := job.logger()

	var bc *Broadcast
	if job.BroadcastPath != "" {
		var err error
		if bc, err = loadBroadcast(fsys, job.BroadcastPath); err != nil {
			return err
		}
	}

	lines, err := readInput(fsys, job.InputPath)
	if err != nil {
		return fmt.Errorf("%s: reading input: %w", job.Name, err)
	}

	partitions := partition(lines, job.MapTasks)
	logger.Debug("stage started",
		"job", job.Name,
		"records", len(lines),
		"map_tasks", len(partitions),
		"broadcast_records", bc.Len(),
	)

	mapped, err := runMapPhase(ctx, job, bc, partitions)
	if err != nil {
		return err
	}

	groups, keys := shuffle(mapped)

	outputs, err := runReducePhase(ctx, job, groups, keys)
	if err != nil {
		return err
	}

	if err := writeOutput(job, outputs); err != nil {
		return fmt.Errorf("%s: writing output: %w", job.Name, err)
	}

	logger.Debug("stage completed", "job", job.Name, "groups", len(keys))
	return nil
}

// partition splits records round-robin into n map partitions. n <= 0
// means one partition per available CPU. There is always at least one
// partition, so Setup/Cleanup run even on empty input.
func partition(lines []string, n int) [][]string {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > len(lines) {
		n = len(lines)
	}
	if n < 1 {
		n = 1
	}
	parts := make([][]string, n)
	for i, line := range lines {
		parts[i%n] = append(parts[i%n], line)
	}
	return parts
}

func runMapPhase(ctx context.Context, job Job, bc *Broadcast, partitions [][]string) ([][]KeyValue, error) {
	mapped := make([][]KeyValue, len(partitions))

	g, gctx := errgroup.WithContext(ctx)
	for i, part := range partitions {
		i, part := i, part
		g.Go(func() error {
			m := job.NewMapper(i)
			c := &collector{}

			if err := m.Setup(gctx, bc); err != nil {
				return fmt.Errorf("%s: map task %d setup: %w", job.Name, i, err)
			}
			for _, rec := range part {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := m.Map(gctx, rec, c); err != nil {
					return fmt.Errorf("%s: map task %d: %w", job.Name, i, err)
				}
			}
			if err := m.Cleanup(gctx, c); err != nil {
				return fmt.Errorf("%s: map task %d cleanup: %w", job.Name, i, err)
			}

			mapped[i] = c.pairs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mapped, nil
}

// shuffle groups emitted records by key. Keys come back sorted and
// values keep map-partition order, so a given input always reduces the
// same way.
func shuffle(mapped [][]KeyValue) (map[string][]string, []string) {
	groups := make(map[string][]string)
	for _, pairs := range mapped {
		for _, kv := range pairs {
			groups[kv.Key] = append(groups[kv.Key], kv.Value)
		}
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return groups, keys
}

func runReducePhase(ctx context.Context, job Job, groups map[string][]string, keys []string) ([][]KeyValue, error) {
	tasks := job.ReduceTasks
	if tasks < 1 {
		tasks = 1
	}

	buckets := make([][]string, tasks)
	for _, k := range keys {
		t := partitionKey(k, tasks)
		buckets[t] = append(buckets[t], k)
	}

	outputs := make([][]KeyValue, tasks)
	g, gctx := errgroup.WithContext(ctx)
	for t, bucket := range buckets {
		t, bucket := t, bucket
		g.Go(func() error {
			r := job.NewReducer()
			c := &collector{}
			for _, k := range bucket {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := r.Reduce(gctx, k, groups[k], c); err != nil {
					return fmt.Errorf("%s: reduce task %d key %q: %w", job.Name, t, k, err)
				}
			}
			outputs[t] = c.pairs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func partitionKey(key string, tasks int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(tasks))
}

// writeOutput writes one part file per reduce task, empty tasks
// included, then a _SUCCESS marker. Records with an empty key are
// written bare; keyed records as "key\tvalue".
func writeOutput(job Job, outputs [][]KeyValue) error {
	fsys := job.fsys()
	if err := fsys.MkdirAll(job.OutputPath, 0o755); err != nil {
		return err
	}

	for t, pairs := range outputs {
		name := filepath.Join(job.OutputPath, fmt.Sprintf("part-r-%05d", t))
		wc, err := fsys.Create(name)
		if err != nil {
			return err
		}
		w := bufio.NewWriter(wc)
		for _, kv := range pairs {
			if kv.Key != "" {
				w.WriteString(kv.Key)
				w.WriteByte('\t')
			}
			w.WriteString(kv.Value)
			w.WriteByte('\n')
		}
		if err := w.Flush(); err != nil {
			wc.Close()
			return err
		}
		if err := wc.Close(); err != nil {
			return err
		}
	}

	marker, err := fsys.Create(filepath.Join(job.OutputPath, "_SUCCESS"))
	if err != nil {
		return err
	}
	return marker.Close()
}
