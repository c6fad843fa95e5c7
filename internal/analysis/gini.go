package analysis

import (
	"context"
	"fmt"

	"github.com/alvmarrod/peer-metrics/internal/addr"
	"github.com/alvmarrod/peer-metrics/internal/graph"
	"github.com/alvmarrod/peer-metrics/internal/stats"
	"github.com/alvmarrod/peer-metrics/internal/storage"
	"github.com/sirupsen/logrus"
)

// Columns written by the Gini analyses
const (
	ColAvgGini       = "avg_gini_coefficient"
	ColAvgNodes      = "avg_number_of_nodes"
	ColCountryGini   = "country_frequency_gini"
	ColAvgDegreeGini = "avg_degree_gini"
)

// AddressGini measures how concentrated the peers of a crawl are in address
// prefixes, averaged over the sampled crawls
type AddressGini struct {
	opts Options
}

// NewAddressGini creates the address-prefix Gini analysis
func NewAddressGini(opts Options) *AddressGini {
	return &AddressGini{opts: opts}
}

// Name identifies the analysis on the command line and in file names
func (a *AddressGini) Name() string { return "address-gini" }

// Columns lists the mean Gini and the mean number of addressed peers
func (a *AddressGini) Columns() []string { return []string{ColAvgGini, ColAvgNodes} }

// Run computes the prefix Gini per sampled crawl. Crawls that fail to load or
// have no valid prefix are skipped; the network fails only when every crawl
// failed to load.
func (a *AddressGini) Run(ctx context.Context, src storage.Source) (map[string]stats.Optional, error) {
	ids, err := sampleCrawls(ctx, src, a.opts.SampleSize)
	if err != nil {
		return nil, err
	}

	var ginis, nodes []stats.Optional
	var lastErr error
	failed := 0
	for _, crawlID := range ids {
		addrs, err := src.Addresses(ctx, crawlID)
		if err != nil {
			logrus.Warnf("Failed to load addresses for crawl_id %d: %v", crawlID, err)
			a.opts.Tracker.IncrementCrawlsSkipped()
			lastErr = fmt.Errorf("crawl %d: %w", crawlID, err)
			failed++
			continue
		}
		a.opts.Tracker.AddRowsLoaded(len(addrs))

		if len(addrs) == 0 {
			logrus.Warnf("No addresses returned for crawl_id %d", crawlID)
			a.opts.Tracker.IncrementCrawlsSkipped()
			continue
		}

		prefixes := make(map[string]int64)
		invalid := 0
		for _, raw := range addrs {
			p, ok := addr.Prefix(raw)
			if !ok {
				invalid++
				continue
			}
			prefixes[p]++
		}
		if invalid > 0 {
			logrus.Debugf("Crawl %d: skipped %d unparseable addresses", crawlID, invalid)
		}

		if len(prefixes) == 0 {
			logrus.Warnf("No valid prefixes found for crawl_id %d", crawlID)
			a.opts.Tracker.IncrementCrawlsSkipped()
			continue
		}

		counts := make([]int64, 0, len(prefixes))
		var total int64
		for _, c := range prefixes {
			counts = append(counts, c)
			total += c
		}

		g, err := stats.GiniCounts(counts)
		if err != nil {
			return nil, fmt.Errorf("crawl %d: %w", crawlID, err)
		}

		logrus.Infof("Crawl ID: %d, Gini Coefficient: %g, Number of Nodes: %d", crawlID, g, total)
		ginis = append(ginis, stats.Some(g))
		nodes = append(nodes, stats.Some(float64(total)))
		a.opts.Tracker.IncrementCrawlsAnalyzed()
	}

	if failed == len(ids) {
		return nil, lastErr
	}

	values := map[string]stats.Optional{
		ColAvgGini:  stats.MeanOptional(ginis),
		ColAvgNodes: stats.MeanOptional(nodes),
	}
	return values, noUsableData(values, ids)
}

// CountryGini measures how concentrated multi addresses are across countries.
// Addresses without a country are excluded.
type CountryGini struct{}

// NewCountryGini creates the country Gini analysis
func NewCountryGini() *CountryGini {
	return &CountryGini{}
}

// Name identifies the analysis on the command line and in file names
func (c *CountryGini) Name() string { return "country-gini" }

// Columns lists the single country Gini column
func (c *CountryGini) Columns() []string { return []string{ColCountryGini} }

// Run computes the Gini of address counts per country
func (c *CountryGini) Run(ctx context.Context, src storage.Source) (map[string]stats.Optional, error) {
	freqs, err := src.CountryFrequencies(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]int64, 0, len(freqs))
	for _, f := range freqs {
		if f.Country == "" {
			logrus.Debugf("Excluding %d addresses without country", f.Frequency)
			continue
		}
		counts = append(counts, f.Frequency)
	}

	if len(counts) == 0 {
		return nil, fmt.Errorf("no country frequencies: %w", storage.ErrNoData)
	}

	g, err := stats.GiniCounts(counts)
	if err != nil {
		return nil, err
	}
	return map[string]stats.Optional{ColCountryGini: stats.Some(g)}, nil
}

// DegreeGini measures inequality of the combined-degree frequency histogram,
// averaged over the sampled crawls
type DegreeGini struct {
	opts Options
}

// NewDegreeGini creates the degree Gini analysis
func NewDegreeGini(opts Options) *DegreeGini {
	return &DegreeGini{opts: opts}
}

// Name identifies the analysis on the command line and in file names
func (d *DegreeGini) Name() string { return "degree-gini" }

// Columns lists the single degree Gini column
func (d *DegreeGini) Columns() []string { return []string{ColAvgDegreeGini} }

// Run computes the degree-histogram Gini per sampled crawl and averages it
func (d *DegreeGini) Run(ctx context.Context, src storage.Source) (map[string]stats.Optional, error) {
	ids, snapshots, err := sampleSnapshots(ctx, src, d.opts)
	if err != nil {
		return nil, err
	}

	var ginis []stats.Optional
	eachSnapshot(ids, snapshots, d.opts.Tracker, func(s *graph.Snapshot) {
		degrees := graph.ComputeDegrees(s, s.Reverse())
		g, err := stats.Gini(graph.Frequencies(degrees.Combined).Counts())
		if err != nil {
			ginis = append(ginis, stats.Optional{})
			return
		}
		logrus.Infof("Crawl ID: %d, degree Gini: %g", s.CrawlID, g)
		ginis = append(ginis, stats.Some(g))
	})

	values := map[string]stats.Optional{ColAvgDegreeGini: stats.MeanOptional(ginis)}
	return values, noUsableData(values, ids)
}
