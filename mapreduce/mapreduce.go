package mapreduce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/kmr/internal/fs"
)

var (
	// ErrInvalidJob is returned when a job is missing a factory or a path.
	ErrInvalidJob = errors.New("invalid job")

	// ErrBroadcastLoad is returned when a job's broadcast directory cannot
	// be read at setup. The job never falls back to an empty broadcast.
	ErrBroadcastLoad = errors.New("broadcast load failed")
)

// KeyValue is one record crossing the shuffle boundary.
type KeyValue struct {
	Key   string
	Value string
}

// Emitter receives the records a task produces.
type Emitter interface {
	Emit(key, value string)
}

// Mapper is the per-partition half of a stage. Setup runs once before
// any record, Map once per input record, Cleanup once after the last
// record. One instance serves exactly one partition.
type Mapper interface {
	Setup(ctx context.Context, bc *Broadcast) error
	Map(ctx context.Context, record string, emit Emitter) error
	Cleanup(ctx context.Context, emit Emitter) error
}

// Reducer is the aggregation half of a stage. Reduce is called once per
// distinct key with every value emitted under that key. One instance
// serves exactly one reduce task.
type Reducer interface {
	Reduce(ctx context.Context, key string, values []string, emit Emitter) error
}

// Job describes one stage run.
type Job struct {
	// Name tags log records.
	Name string

	// NewMapper and NewReducer construct a fresh task instance per
	// partition and per reduce task respectively. Both are required.
	// NewMapper receives the zero-based task index so stages that draw
	// randomness can derive a distinct stream per partition.
	NewMapper  func(task int) Mapper
	NewReducer func() Reducer

	// MapTasks is the number of input partitions. Zero means one task
	// per available CPU.
	MapTasks int

	// ReduceTasks is the number of aggregation tasks. Zero means one.
	// Stages whose aggregation must be global (a single group) run with
	// exactly one.
	ReduceTasks int

	// InputPath is a record file or a directory of part files.
	// OutputPath is a directory receiving one part-r-NNNNN file per
	// reduce task plus a _SUCCESS marker.
	InputPath  string
	OutputPath string

	// BroadcastPath, when set, names a directory whose visible files are
	// loaded once and handed to every map task's Setup.
	BroadcastPath string

	// FS defaults to the local file system. Logger defaults to discard.
	FS     fs.FileSystem
	Logger *slog.Logger
}

func (j *Job) validate() error {
	switch {
	case j.NewMapper == nil:
		return fmt.Errorf("%w: nil mapper factory", ErrInvalidJob)
	case j.NewReducer == nil:
		return fmt.Errorf("%w: nil reducer factory", ErrInvalidJob)
	case j.InputPath == "":
		return fmt.Errorf("%w: empty input path", ErrInvalidJob)
	case j.OutputPath == "":
		return fmt.Errorf("%w: empty output path", ErrInvalidJob)
	}
	return nil
}

func (j *Job) fsys() fs.FileSystem {
	if j.FS != nil {
		return j.FS
	}
	return fs.Default
}

func (j *Job) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collector buffers one task's emissions. Not safe for concurrent use;
// every task owns its own.
type collector struct {
	pairs []KeyValue
}

func (c *collector) Emit(key, value string) {
	c.pairs = append(c.pairs, KeyValue{Key: key, Value: value})
}
