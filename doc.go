// Package kmr runs distributed-style k-means clustering as an iterative
// map/reduce pipeline: randomized centroid initialization, repeated
// nearest-centroid assignment with partial-sum combining, and an
// objective-based convergence test.
//
// The Pipeline sequences the stages of the kmeans package over a staged
// workspace on disk and decides when to stop. Stage execution itself is
// delegated to the mapreduce package.
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil { ... }
//	p, err := kmr.New(cfg)
//	if err != nil { ... }
//	res, err := p.Run(ctx)
package kmr
