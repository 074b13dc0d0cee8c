package point

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrDimensionMismatch is returned when two points of different
	// dimension are compared or combined.
	ErrDimensionMismatch = errors.New("point dimension mismatch")

	// ErrArithmetic is returned when averaging hits a non-finite operand
	// or produces a NaN result.
	ErrArithmetic = errors.New("arithmetic error")

	// ErrSerialization is returned when a record cannot be decoded:
	// wrong field count, malformed number, NaN/infinite coordinate, or a
	// corrupt binary frame.
	ErrSerialization = errors.New("serialization error")
)

// Point is a real vector of fixed dimension. The dimension is set at
// construction and never changes; coordinates are mutated in place by Sum.
type Point struct {
	coords []float64
}

// Zero returns the d-dimensional zero point.
func Zero(d int) Point {
	return Point{coords: make([]float64, d)}
}

// New builds a Point from the given coordinates, rejecting NaN and
// infinite values.
func New(coords ...float64) (Point, error) {
	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return Point{}, fmt.Errorf("%w: non-finite coordinate %v", ErrSerialization, c)
		}
	}
	p := Point{coords: make([]float64, len(coords))}
	copy(p.coords, coords)
	return p, nil
}

// Parse decodes a comma-separated list of real numbers into a Point.
func Parse(s string) (Point, error) {
	fields := strings.Split(s, ",")
	coords := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Point{}, fmt.Errorf("%w: field %d: %v", ErrSerialization, i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Point{}, fmt.Errorf("%w: field %d is non-finite", ErrSerialization, i)
		}
		coords[i] = v
	}
	return Point{coords: coords}, nil
}

// Dim returns the point's dimension.
func (p Point) Dim() int { return len(p.coords) }

// At returns the i-th coordinate.
func (p Point) At(i int) float64 { return p.coords[i] }

// Coords returns the backing coordinate slice. Callers must not hold on
// to it across mutations.
func (p Point) Coords() []float64 { return p.coords }

// Clone returns a deep copy of p.
func (p Point) Clone() Point {
	q := Point{coords: make([]float64, len(p.coords))}
	copy(q.coords, p.coords)
	return q
}

// Distance computes the weighted Euclidean distance between p and q:
//
//	sqrt(Σ_i (i+1)·(p_i−q_i)²)
//
// Later coordinates weigh more heavily; the weighting is part of the
// metric definition, not an implementation detail.
func (p Point) Distance(q Point) (float64, error) {
	if len(p.coords) != len(q.coords) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(p.coords), len(q.coords))
	}
	var sum float64
	for i := range p.coords {
		diff := p.coords[i] - q.coords[i]
		sum += diff * diff * float64(i+1)
	}
	return math.Sqrt(sum), nil
}

// Sum adds q into p coordinate-wise, mutating p.
func (p Point) Sum(q Point) error {
	if len(p.coords) != len(q.coords) {
		return fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(p.coords), len(q.coords))
	}
	for i := range p.coords {
		p.coords[i] += q.coords[i]
	}
	return nil
}

// DivideBy divides every coordinate by n. It fails if n is not positive,
// if a coordinate is infinite before dividing, or if a result is NaN.
func (p Point) DivideBy(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: divisor must be positive, got %d", ErrArithmetic, n)
	}
	for i, c := range p.coords {
		if math.IsInf(c, 0) {
			return fmt.Errorf("%w: infinite coordinate %d before division", ErrArithmetic, i)
		}
		r := c / float64(n)
		if math.IsNaN(r) {
			return fmt.Errorf("%w: coordinate %d divided to NaN", ErrArithmetic, i)
		}
		p.coords[i] = r
	}
	return nil
}

// Compare orders points lexicographically by coordinate. It is used only
// for deterministic external sorting and grouping, never for clustering
// semantics. Both points must have the same dimension.
func (p Point) Compare(q Point) (int, error) {
	if len(p.coords) != len(q.coords) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(p.coords), len(q.coords))
	}
	for i := range p.coords {
		if c := compareFloat(p.coords[i], q.coords[i]); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String renders the point as comma-separated coordinates. The output
// round-trips through Parse bit-exactly.
func (p Point) String() string {
	var sb strings.Builder
	for i, c := range p.coords {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
	}
	return sb.String()
}

// WriteTo encodes p as a little-endian binary frame: an int32 coordinate
// count followed by the coordinates as float64 bits.
func (p Point) WriteTo(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(p.coords))); err != nil {
		return err
	}
	for i, c := range p.coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: coordinate %d is non-finite", ErrSerialization, i)
		}
		if err := binary.Write(w, binary.LittleEndian, c); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrom decodes a binary frame written by WriteTo. Decoding fails on a
// negative length prefix and on NaN or infinite coordinates.
func ReadFrom(r io.Reader) (Point, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return Point{}, fmt.Errorf("%w: length prefix: %v", ErrSerialization, err)
	}
	if n < 0 {
		return Point{}, fmt.Errorf("%w: negative coordinate count %d", ErrSerialization, n)
	}
	coords := make([]float64, n)
	for i := range coords {
		if err := binary.Read(r, binary.LittleEndian, &coords[i]); err != nil {
			return Point{}, fmt.Errorf("%w: coordinate %d: %v", ErrSerialization, i, err)
		}
		if math.IsNaN(coords[i]) || math.IsInf(coords[i], 0) {
			return Point{}, fmt.Errorf("%w: coordinate %d is non-finite", ErrSerialization, i)
		}
	}
	return Point{coords: coords}, nil
}
