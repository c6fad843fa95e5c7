package stats

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrEmptyDistribution is returned by metrics given no values at all
	ErrEmptyDistribution = errors.New("empty distribution")
	// ErrUndefined is returned when a metric has no meaningful value for its input
	ErrUndefined = errors.New("metric undefined for input")
)

// giniEpsilon keeps the denominator positive for all-zero input
const giniEpsilon = 1e-7

// Gini computes the Gini coefficient of a frequency distribution.
// Negative inputs are shifted so the minimum becomes zero. The input slice is
// not modified.
func Gini(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyDistribution
	}

	a := make([]float64, len(values))
	copy(a, values)

	if m := floats.Min(a); m < 0 {
		floats.AddConst(-m, a)
	}
	floats.AddConst(giniEpsilon, a)
	sort.Float64s(a)

	n := float64(len(a))
	var weighted float64
	for i, v := range a {
		weighted += (2*float64(i+1) - n - 1) * v
	}

	return weighted / (n * floats.Sum(a)), nil
}

// GiniCounts is Gini over integer counts
func GiniCounts(counts []int64) (float64, error) {
	values := make([]float64, len(counts))
	for i, c := range counts {
		values[i] = float64(c)
	}
	return Gini(values)
}
