// Package config loads and validates the run parameters of a clustering
// job from a YAML file. Validation happens before any stage runs; a bad
// parameter never reaches the pipeline.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// ErrConfiguration is returned for missing or out-of-range run
// parameters.
var ErrConfiguration = errors.New("invalid configuration")

// Dataset describes the input data and the output workspace.
type Dataset struct {
	// Dimensions is the coordinate count D every record must have.
	Dimensions int `yaml:"dimensions"`
	// Clusters is the target cluster count k.
	Clusters int `yaml:"clusters"`
	// InputPath is a record file or directory; OutputPath is the
	// workspace root the pipeline stages write under.
	InputPath  string `yaml:"inputPath"`
	OutputPath string `yaml:"outputPath"`
}

// KMeans holds the iteration and parallelism knobs.
type KMeans struct {
	RandomSeed int64 `yaml:"randomSeed"`
	// MapTasks is the input partition count; zero means one per CPU.
	MapTasks int `yaml:"mapTasks"`
	// MaxReduceTasks bounds aggregation parallelism for the clustering
	// stage (effective parallelism is min(clusters, maxReduceTasks)).
	MaxReduceTasks int `yaml:"maxReduceTasks"`
	// ConvergenceThreshold is the percentage improvement in the
	// objective below which iteration stops.
	ConvergenceThreshold float64 `yaml:"convergenceThreshold"`
	MaxIterations        int     `yaml:"maxIterations"`
}

// Config is the full run configuration.
type Config struct {
	Dataset Dataset `yaml:"dataset"`
	KMeans  KMeans  `yaml:"kmeans"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every parameter's range.
func (c *Config) Validate() error {
	switch {
	case c.Dataset.Dimensions <= 0:
		return fmt.Errorf("%w: dimensions must be positive, got %d", ErrConfiguration, c.Dataset.Dimensions)
	case c.Dataset.Clusters <= 0:
		return fmt.Errorf("%w: clusters must be positive, got %d", ErrConfiguration, c.Dataset.Clusters)
	case c.Dataset.InputPath == "":
		return fmt.Errorf("%w: inputPath is required", ErrConfiguration)
	case c.Dataset.OutputPath == "":
		return fmt.Errorf("%w: outputPath is required", ErrConfiguration)
	case c.KMeans.MapTasks < 0:
		return fmt.Errorf("%w: mapTasks must not be negative, got %d", ErrConfiguration, c.KMeans.MapTasks)
	case c.KMeans.MaxReduceTasks <= 0:
		return fmt.Errorf("%w: maxReduceTasks must be positive, got %d", ErrConfiguration, c.KMeans.MaxReduceTasks)
	case c.KMeans.ConvergenceThreshold < 0:
		return fmt.Errorf("%w: convergenceThreshold must not be negative, got %g", ErrConfiguration, c.KMeans.ConvergenceThreshold)
	case c.KMeans.MaxIterations <= 0:
		return fmt.Errorf("%w: maxIterations must be positive, got %d", ErrConfiguration, c.KMeans.MaxIterations)
	}
	return nil
}
