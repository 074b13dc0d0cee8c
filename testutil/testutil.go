package testutil

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// NormFloat64 returns a normally distributed pseudo-random number.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// UniformRange returns a pseudo-random number in [minVal, maxVal).
func (r *RNG) UniformRange(minVal, maxVal float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return minVal + r.rand.Float64()*(maxVal-minVal)
}

// Blobs generates n points scattered around the given centers with the
// given Gaussian spread, as CSV records. Points cycle through the
// centers round-robin so every blob ends up with roughly n/len(centers)
// members.
func (r *RNG) Blobs(n int, centers [][]float64, stddev float64) []string {
	lines := make([]string, n)
	for i := range lines {
		center := centers[i%len(centers)]
		fields := make([]string, len(center))
		for j, c := range center {
			v := c + r.NormFloat64()*stddev
			fields[j] = strconv.FormatFloat(v, 'f', 4, 64)
		}
		lines[i] = strings.Join(fields, ",")
	}
	return lines
}
