// Package point provides the vector types the clustering pipeline operates
// on: Point, a fixed-dimension real vector with a coordinate-weighted
// distance metric, and Accumulator, a partial vector sum awaiting averaging.
//
// Points travel between stages in two encodings: a CSV text form (one
// record per line) and a length-prefixed binary form. Both reject NaN and
// infinite coordinates on decode.
package point
