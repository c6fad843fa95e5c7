package analysis

import (
	"context"
	"fmt"

	"github.com/alvmarrod/peer-metrics/internal/stats"
	"github.com/alvmarrod/peer-metrics/internal/storage"
)

// ColDialEntropy is the column written by DialEntropy
const ColDialEntropy = "dial_duration_entropy"

// DialEntropy is the normalized entropy of per-peer average dial durations
type DialEntropy struct{}

// NewDialEntropy creates the dial-duration entropy analysis
func NewDialEntropy() *DialEntropy {
	return &DialEntropy{}
}

// Name identifies the analysis on the command line and in file names
func (e *DialEntropy) Name() string { return "dial-entropy" }

// Columns lists the single entropy column
func (e *DialEntropy) Columns() []string { return []string{ColDialEntropy} }

// Run computes the entropy over peers with a known average dial duration
func (e *DialEntropy) Run(ctx context.Context, src storage.Source) (map[string]stats.Optional, error) {
	durations, err := src.AvgDialDurations(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(durations))
	for _, d := range durations {
		if d.Valid {
			values = append(values, d.AvgSeconds)
		}
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("no dial durations: %w", storage.ErrNoData)
	}

	h, err := stats.NormalizedEntropy(values)
	if err != nil {
		return nil, err
	}
	return map[string]stats.Optional{ColDialEntropy: stats.Some(h)}, nil
}
