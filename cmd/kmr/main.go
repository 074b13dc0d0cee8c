// Command kmr runs the k-means clustering pipeline described by a YAML
// configuration file.
//
//	kmr -config config.yaml [-v]
//
// The process exits non-zero if the configuration is invalid or any
// stage fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hupe1980/kmr"
	"github.com/hupe1980/kmr/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the run configuration")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := kmr.NewTextLogger(level)

	if err := run(*configPath, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *kmr.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	p, err := kmr.New(cfg, kmr.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("converged after %d iterations: J=%g, %d centroids in %s\n",
		res.Steps, res.Objective, res.Centroids, res.CentroidsPath)
	return nil
}
