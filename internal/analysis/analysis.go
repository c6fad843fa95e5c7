package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alvmarrod/peer-metrics/internal/metrics"
	"github.com/alvmarrod/peer-metrics/internal/stats"
	"github.com/alvmarrod/peer-metrics/internal/storage"
)

// Analysis computes one or more per-network metric columns from a source
type Analysis interface {
	Name() string
	Columns() []string
	Run(ctx context.Context, src storage.Source) (map[string]stats.Optional, error)
}

// Options are shared by all analyses
type Options struct {
	// SampleSize is the number of crawls (lowest ids first) averaged per network
	SampleSize int
	// BinWidth groups degree values for the degree distribution
	BinWidth int
	Guard    stats.Guard
	Tracker  *metrics.Tracker
}

// Reason classifies the outcome of an analysis on one network
type Reason int

const (
	ReasonOK Reason = iota
	// ReasonNoData means the source answered but had nothing usable
	ReasonNoData
	// ReasonDataAccess means the source could not be opened or queried
	ReasonDataAccess
)

// String returns the reason code written to logs and status columns
func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonNoData:
		return "no_data"
	case ReasonDataAccess:
		return "data_access"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Result is the outcome of one analysis on one network
type Result struct {
	Database string
	Analysis string
	Reason   Reason
	Err      error
	Metrics  map[string]stats.Optional
}

// Report collects the results of all analyses for one network
type Report struct {
	Database string
	Results  []Result
}

// Metric looks a column up across the report's results. Missing columns and
// failed analyses yield an absent value.
func (r Report) Metric(column string) stats.Optional {
	for _, res := range r.Results {
		if v, ok := res.Metrics[column]; ok {
			return v
		}
	}
	return stats.Optional{}
}

// Status summarizes the report as "ok" or a list of failing analyses
func (r Report) Status() string {
	var failed []string
	for _, res := range r.Results {
		if res.Reason != ReasonOK {
			failed = append(failed, res.Analysis+":"+res.Reason.String())
		}
	}
	if len(failed) == 0 {
		return "ok"
	}
	return strings.Join(failed, ",")
}

// Columns concatenates the columns of the given analyses in order
func Columns(analyses []Analysis) []string {
	var columns []string
	for _, a := range analyses {
		columns = append(columns, a.Columns()...)
	}
	return columns
}

// AcrossNetworks averages a column over the networks where it is present
func AcrossNetworks(reports []Report, column string) stats.Optional {
	values := make([]stats.Optional, 0, len(reports))
	for _, r := range reports {
		values = append(values, r.Metric(column))
	}
	return stats.MeanOptional(values)
}

// classify maps an analysis error to a reason code
func classify(err error) Reason {
	switch {
	case err == nil:
		return ReasonOK
	case errors.Is(err, storage.ErrNoData),
		errors.Is(err, stats.ErrEmptyDistribution),
		errors.Is(err, stats.ErrUndefined):
		return ReasonNoData
	}
	return ReasonDataAccess
}

// nullMetrics returns absent values for every column
func nullMetrics(columns []string) map[string]stats.Optional {
	m := make(map[string]stats.Optional, len(columns))
	for _, c := range columns {
		m[c] = stats.Optional{}
	}
	return m
}
