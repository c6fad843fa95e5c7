package stats

import (
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Optional is a metric value that may be absent. The zero value is absent.
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps a present value
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// String formats the value, or returns "" when absent
func (o Optional) String() string {
	if !o.Valid {
		return ""
	}
	return strconv.FormatFloat(o.Value, 'g', -1, 64)
}

// MeanOptional averages the present values. Absent values are skipped and do
// not count toward the divisor; if none are present the result is absent.
func MeanOptional(values []Optional) Optional {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			present = append(present, v.Value)
		}
	}

	if len(present) == 0 {
		return Optional{}
	}
	return Some(stat.Mean(present, nil))
}
