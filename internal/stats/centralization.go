package stats

import (
	"fmt"
)

// Guard selects how Centralization treats populations whose normalizing
// denominator (|P|-1)(max-1) is not positive.
type Guard int

const (
	// GuardReference divides the numerator by 1 instead
	GuardReference Guard = iota
	// GuardUndefined reports ErrUndefined
	GuardUndefined
)

// ParseGuard maps a configuration value to a Guard
func ParseGuard(s string) (Guard, error) {
	switch s {
	case "", "reference":
		return GuardReference, nil
	case "undefined":
		return GuardUndefined, nil
	}
	return GuardReference, fmt.Errorf("unknown centralization guard %q", s)
}

// String returns the configuration value of the guard
func (g Guard) String() string {
	if g == GuardUndefined {
		return "undefined"
	}
	return "reference"
}

// Centralization computes Freeman degree centralization:
//
//	C = sum(max - d) / ((n-1) * (max-1))
func Centralization(degrees []int, guard Guard) (float64, error) {
	if len(degrees) == 0 {
		return 0, ErrEmptyDistribution
	}

	maxDegree := degrees[0]
	for _, d := range degrees[1:] {
		if d > maxDegree {
			maxDegree = d
		}
	}

	var numerator float64
	for _, d := range degrees {
		numerator += float64(maxDegree - d)
	}

	n := len(degrees)
	if n <= 1 || maxDegree <= 1 {
		if guard == GuardUndefined {
			return 0, fmt.Errorf("centralization of %d peers with max degree %d: %w", n, maxDegree, ErrUndefined)
		}
		return numerator, nil
	}

	return numerator / (float64(n-1) * float64(maxDegree-1)), nil
}
