package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/alvmarrod/peer-metrics/internal/graph"
	"github.com/alvmarrod/peer-metrics/internal/storage"
	"github.com/sirupsen/logrus"
)

// DegreeDistribution bins the combined-degree histograms of the sampled
// crawls and averages the bucket frequencies per bin
func DegreeDistribution(ctx context.Context, src storage.Source, opts Options) ([]graph.Bin, error) {
	ids, snapshots, err := sampleSnapshots(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	var histograms []graph.Histogram
	eachSnapshot(ids, snapshots, opts.Tracker, func(s *graph.Snapshot) {
		d := graph.ComputeDegrees(s, s.Reverse())
		histograms = append(histograms, graph.Frequencies(d.Combined))
	})

	if len(histograms) == 0 {
		return nil, fmt.Errorf("no usable crawls in %v: %w", ids, storage.ErrNoData)
	}

	return graph.BinAverages(histograms, opts.BinWidth)
}

// UnreachableDistribution returns the reverse-degree histogram of the peers
// a crawl referenced but never recorded. crawlID <= 0 selects the first crawl.
func UnreachableDistribution(ctx context.Context, src storage.Source, crawlID int64, opts Options) (graph.Histogram, error) {
	s, err := loadCrawl(ctx, src, crawlID, opts)
	if err != nil {
		return nil, err
	}

	u := graph.FindUnreachable(s)
	logrus.Infof("Crawl %d: %d peers crawled, %d unreachable neighbors", s.CrawlID, s.Len(), len(u))
	return graph.Frequencies(u), nil
}

// NeighborRatios groups a crawl's peers by combined degree and reports the
// mean share of relations each peer reported itself. crawlID <= 0 selects
// the first crawl.
func NeighborRatios(ctx context.Context, src storage.Source, crawlID int64, opts Options) ([]graph.RatioPoint, error) {
	s, err := loadCrawl(ctx, src, crawlID, opts)
	if err != nil {
		return nil, err
	}

	return graph.RatioByDegree(graph.ComputeDegrees(s, s.Reverse())), nil
}

func loadCrawl(ctx context.Context, src storage.Source, crawlID int64, opts Options) (*graph.Snapshot, error) {
	if crawlID <= 0 {
		ids, err := sampleCrawls(ctx, src, 1)
		if err != nil {
			return nil, err
		}
		crawlID = ids[0]
	}

	rows, err := src.NeighborRows(ctx, []int64{crawlID})
	if err != nil {
		return nil, err
	}
	opts.Tracker.AddRowsLoaded(len(rows))

	s, ok := graph.Load(rows)[crawlID]
	if !ok || s.Len() == 0 {
		opts.Tracker.IncrementCrawlsSkipped()
		return nil, fmt.Errorf("crawl %d has no neighbor rows: %w", crawlID, storage.ErrNoData)
	}
	opts.Tracker.IncrementCrawlsAnalyzed()
	return s, nil
}

// New returns the per-network analyses with the given names, in the given
// order. An empty list selects all of them.
func New(names []string, opts Options) ([]Analysis, error) {
	all := []Analysis{
		NewCentralization(opts),
		NewAddressGini(opts),
		NewCountryGini(),
		NewDialEntropy(),
		NewDegreeGini(opts),
	}
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]Analysis, len(all))
	for _, a := range all {
		byName[a.Name()] = a
	}

	selected := make([]Analysis, 0, len(names))
	for _, name := range names {
		a, ok := byName[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown analysis %q", name)
		}
		selected = append(selected, a)
	}
	return selected, nil
}
