// Package kmeans implements the three map/reduce stages of the
// clustering pipeline: sampling (randomized centroid initialization),
// clustering (one Lloyd assignment/update iteration with in-mapper
// combining), and convergence (global objective evaluation).
//
// Each stage is a Mapper/Reducer pair plus a Job constructor wiring the
// pair to its input, output and broadcast locations. Stage sequencing
// and the stopping decision live in the parent kmr package.
package kmeans
