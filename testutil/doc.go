// Package testutil provides seeded random data generation for tests:
// a thread-safe RNG and a Gaussian-blob dataset generator producing the
// CSV point records the pipeline consumes.
package testutil
