package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NormalizedEntropy turns positive magnitudes into a probability
// distribution and returns its Shannon entropy divided by ln(count), the
// entropy of a uniform distribution of the same size. Zero, negative and
// non-finite values are dropped first.
func NormalizedEntropy(values []float64) (float64, error) {
	p := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 && !math.IsInf(v, 0) {
			p = append(p, v)
		}
	}

	if len(p) <= 1 {
		return 0, fmt.Errorf("entropy of %d positive values: %w", len(p), ErrUndefined)
	}

	floats.Scale(1/floats.Sum(p), p)
	return stat.Entropy(p) / math.Log(float64(len(p))), nil
}
