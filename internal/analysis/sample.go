package analysis

import (
	"context"
	"fmt"

	"github.com/alvmarrod/peer-metrics/internal/graph"
	"github.com/alvmarrod/peer-metrics/internal/metrics"
	"github.com/alvmarrod/peer-metrics/internal/stats"
	"github.com/alvmarrod/peer-metrics/internal/storage"
	"github.com/sirupsen/logrus"
)

// sampleCrawls returns the ids of the first n crawls of a network
func sampleCrawls(ctx context.Context, src storage.Source, n int) ([]int64, error) {
	ids, err := src.CrawlIDs(ctx, n)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no crawl ids found: %w", storage.ErrNoData)
	}
	return ids, nil
}

// sampleSnapshots loads the observation graphs of the sampled crawls
func sampleSnapshots(ctx context.Context, src storage.Source, opts Options) ([]int64, map[int64]*graph.Snapshot, error) {
	ids, err := sampleCrawls(ctx, src, opts.SampleSize)
	if err != nil {
		return nil, nil, err
	}

	rows, err := src.NeighborRows(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	opts.Tracker.AddRowsLoaded(len(rows))

	return ids, graph.Load(rows), nil
}

// eachSnapshot calls fn for every sampled crawl that has at least one peer
// and returns how many crawls were used. Empty crawls are logged and skipped.
func eachSnapshot(ids []int64, snapshots map[int64]*graph.Snapshot, tracker *metrics.Tracker, fn func(s *graph.Snapshot)) int {
	used := 0
	for _, id := range ids {
		s, ok := snapshots[id]
		if !ok || s.Len() == 0 {
			logrus.Warnf("No neighbor rows returned for crawl_id %d", id)
			tracker.IncrementCrawlsSkipped()
			continue
		}
		fn(s)
		tracker.IncrementCrawlsAnalyzed()
		used++
	}
	return used
}

// noUsableData wraps ErrNoData when none of the values is present
func noUsableData(values map[string]stats.Optional, ids []int64) error {
	for _, v := range values {
		if v.Valid {
			return nil
		}
	}
	return fmt.Errorf("no usable data in crawls %v: %w", ids, storage.ErrNoData)
}
