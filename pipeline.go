package kmr

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/kmr/config"
	"github.com/hupe1980/kmr/internal/fs"
	"github.com/hupe1980/kmr/kmeans"
	"github.com/hupe1980/kmr/mapreduce"
)

// Pipeline sequences the sampling, clustering and convergence stages and
// decides when to stop iterating. Any stage failure aborts the run; the
// pipeline performs no retries.
type Pipeline struct {
	cfg    *config.Config
	fsys   fs.FileSystem
	logger *Logger
}

// Result summarizes a completed run.
type Result struct {
	// Steps is the number of clustering iterations executed.
	Steps int
	// Objective is the final value of J.
	Objective float64
	// Centroids is the size of the final centroid set. It may be
	// smaller than the configured cluster count: centroids that attract
	// no points are dropped, not reseeded.
	Centroids int
	// CentroidsPath is the directory holding the final centroid set.
	CentroidsPath string
}

// New validates the configuration and builds a Pipeline.
func New(cfg *config.Config, optFns ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := options{
		logger: NewLogger(nil),
		fsys:   fs.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Pipeline{cfg: cfg, fsys: opts.fsys, logger: opts.logger}, nil
}

// workspace paths, laid out under the configured output directory.
func (p *Pipeline) sampledDir() string {
	return filepath.Join(p.cfg.Dataset.OutputPath, "sampled-means")
}

func (p *Pipeline) intermediateDir() string {
	return filepath.Join(p.cfg.Dataset.OutputPath, "intermediate-means")
}

func (p *Pipeline) finalDir() string {
	return filepath.Join(p.cfg.Dataset.OutputPath, "final-means")
}

func (p *Pipeline) convergenceDir() string {
	return filepath.Join(p.cfg.Dataset.OutputPath, "convergence")
}

// Run executes the whole pipeline: one sampling pass, then clustering
// and convergence per iteration until the objective's improvement falls
// to the threshold or the iteration cap is reached. The first iteration
// always runs regardless of threshold.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cfg := p.cfg
	p.logger.LogConfig(
		cfg.Dataset.Dimensions,
		cfg.Dataset.Clusters,
		cfg.KMeans.RandomSeed,
		cfg.KMeans.ConvergenceThreshold,
		cfg.KMeans.MaxIterations,
	)

	if err := p.fsys.RemoveAll(cfg.Dataset.OutputPath); err != nil {
		return nil, fmt.Errorf("cleaning workspace: %w", err)
	}
	if err := p.fsys.MkdirAll(cfg.Dataset.OutputPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}

	if err := p.runStage(ctx, kmeans.SamplingJob(
		cfg.Dataset.InputPath,
		p.sampledDir(),
		cfg.Dataset.Clusters,
		cfg.KMeans.RandomSeed,
		cfg.KMeans.MapTasks,
	)); err != nil {
		return nil, err
	}

	jPrev := math.Inf(1)
	step := 0

	for {
		if err := p.stageCentroids(step); err != nil {
			return nil, err
		}

		if err := p.runStage(ctx, kmeans.ClusteringJob(
			cfg.Dataset.InputPath,
			p.intermediateDir(),
			p.finalDir(),
			cfg.Dataset.Dimensions,
			cfg.Dataset.Clusters,
			cfg.KMeans.MaxReduceTasks,
			cfg.KMeans.MapTasks,
		)); err != nil {
			return nil, err
		}

		if err := p.runStage(ctx, kmeans.ConvergenceJob(
			cfg.Dataset.InputPath,
			p.finalDir(),
			p.convergenceDir(),
			cfg.Dataset.Dimensions,
			cfg.KMeans.MapTasks,
		)); err != nil {
			return nil, err
		}

		jNew, err := p.readObjective()
		if err != nil {
			return nil, err
		}

		v := variation(jPrev, jNew)
		p.logger.LogStep(step, jPrev, jNew, v)

		jPrev = jNew
		step++

		if !shouldContinue(v, cfg.KMeans.ConvergenceThreshold, step, cfg.KMeans.MaxIterations) {
			break
		}
	}

	centroids, err := p.countCentroids()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Steps:         step,
		Objective:     jPrev,
		Centroids:     centroids,
		CentroidsPath: p.finalDir(),
	}
	p.logger.Info("run completed",
		"steps", res.Steps,
		"objective", res.Objective,
		"centroids", res.Centroids,
	)
	return res, nil
}

// variation returns the percentage improvement of the objective from
// prev to current. An infinite prev (no completed iteration yet) yields
// an infinite variation, which forces at least one refinement pass.
func variation(prev, current float64) float64 {
	if math.IsInf(prev, 1) {
		return math.Inf(1)
	}
	return (prev - current) / prev * 100
}

// shouldContinue implements the stopping rule: iterate while the
// variation is infinite, or while it exceeds the threshold with the
// iteration cap not yet reached.
func shouldContinue(v, threshold float64, step, maxIterations int) bool {
	return math.IsInf(v, 1) || (v > threshold && step < maxIterations)
}

func (p *Pipeline) runStage(ctx context.Context, job mapreduce.Job) error {
	job.FS = p.fsys
	job.Logger = p.logger.Logger
	if err := mapreduce.Run(ctx, job); err != nil {
		return fmt.Errorf("stage %s: %w", job.Name, err)
	}
	return nil
}

// stageCentroids copies the current centroid set into the broadcast
// location and clears the prior step's stage outputs. On step 0 the
// current set is the sampling output, afterwards the previous clustering
// output.
func (p *Pipeline) stageCentroids(step int) error {
	src := p.finalDir()
	if step == 0 {
		src = p.sampledDir()
	}

	if err := p.fsys.RemoveAll(p.intermediateDir()); err != nil {
		return fmt.Errorf("clearing broadcast staging: %w", err)
	}
	if err := fs.CopyDir(p.fsys, src, p.intermediateDir()); err != nil {
		return fmt.Errorf("staging centroids: %w", err)
	}

	if err := p.fsys.RemoveAll(p.finalDir()); err != nil {
		return fmt.Errorf("clearing stale output: %w", err)
	}
	if err := p.fsys.RemoveAll(p.convergenceDir()); err != nil {
		return fmt.Errorf("clearing stale output: %w", err)
	}
	return nil
}

// readObjective extracts J from the convergence stage output.
func (p *Pipeline) readObjective() (float64, error) {
	lines, err := p.readOutputLines(p.convergenceDir())
	if err != nil {
		return 0, fmt.Errorf("reading objective: %w", err)
	}
	if len(lines) != 1 {
		return 0, fmt.Errorf("reading objective: want one record, got %d", len(lines))
	}
	j, err := strconv.ParseFloat(lines[0], 64)
	if err != nil {
		return 0, fmt.Errorf("reading objective: %w", err)
	}
	return j, nil
}

func (p *Pipeline) countCentroids() (int, error) {
	lines, err := p.readOutputLines(p.finalDir())
	if err != nil {
		return 0, fmt.Errorf("reading centroids: %w", err)
	}
	return len(lines), nil
}

func (p *Pipeline) readOutputLines(dir string) ([]string, error) {
	files, err := fs.ListFiles(p.fsys, dir)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, f := range files {
		rc, err := p.fsys.Open(f)
		if err != nil {
			return nil, err
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(string(b), "\n") {
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}
