package point

import (
	"fmt"
	"strconv"
	"strings"
)

// Accumulator is a running coordinate-wise sum plus the number of source
// points merged into it. It is the unit of partial aggregation carried
// across the shuffle boundary: workers combine locally, reducers merge.
type Accumulator struct {
	sum   Point
	count int
}

// NewAccumulator returns an empty d-dimensional accumulator.
func NewAccumulator(d int) *Accumulator {
	return &Accumulator{sum: Zero(d)}
}

// Absorb adds a single point into the accumulator and bumps the count.
func (a *Accumulator) Absorb(p Point) error {
	if err := a.sum.Sum(p); err != nil {
		return err
	}
	a.count++
	return nil
}

// Merge folds another accumulator into this one. Merge is associative and
// commutative, so partial sums may be combined in any order and grouping.
func (a *Accumulator) Merge(other *Accumulator) error {
	if err := a.sum.Sum(other.sum); err != nil {
		return err
	}
	a.count += other.count
	return nil
}

// Count returns the number of points absorbed so far.
func (a *Accumulator) Count() int { return a.count }

// Sum returns the running vector sum. The returned point shares storage
// with the accumulator.
func (a *Accumulator) Sum() Point { return a.sum }

// Mean consumes the accumulator and returns the coordinate-wise mean of
// the absorbed points. It fails with ErrArithmetic when count is zero.
func (a *Accumulator) Mean() (Point, error) {
	mean := a.sum.Clone()
	if err := mean.DivideBy(a.count); err != nil {
		return Point{}, err
	}
	return mean, nil
}

// String renders the accumulator as "<coords> <count>".
func (a *Accumulator) String() string {
	return a.sum.String() + " " + strconv.Itoa(a.count)
}

// ParseAccumulator decodes the String form back into an accumulator.
func ParseAccumulator(s string) (*Accumulator, error) {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return nil, fmt.Errorf("%w: accumulator record missing count", ErrSerialization)
	}
	sum, err := Parse(s[:i])
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(s[i+1:])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: bad accumulator count %q", ErrSerialization, s[i+1:])
	}
	return &Accumulator{sum: sum, count: count}, nil
}
