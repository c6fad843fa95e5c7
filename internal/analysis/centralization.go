package analysis

import (
	"context"

	"github.com/alvmarrod/peer-metrics/internal/graph"
	"github.com/alvmarrod/peer-metrics/internal/stats"
	"github.com/alvmarrod/peer-metrics/internal/storage"
	"github.com/sirupsen/logrus"
)

// Columns written by Centralization
const (
	ColOutdegreeCentralization = "average_outdegree_centralization"
	ColIndegreeCentralization  = "average_indegree_centralization"
	ColCombinedCentralization  = "average_combined_centralization"
)

// Centralization averages the degree centralization of each degree variant
// over the sampled crawls
type Centralization struct {
	opts Options
}

// NewCentralization creates the centralization analysis
func NewCentralization(opts Options) *Centralization {
	return &Centralization{opts: opts}
}

// Name identifies the analysis on the command line and in file names
func (c *Centralization) Name() string { return "centralization" }

// Columns lists the out, in and combined centralization averages
func (c *Centralization) Columns() []string {
	return []string{ColOutdegreeCentralization, ColIndegreeCentralization, ColCombinedCentralization}
}

// Run averages the centralization of every variant over the sampled crawls.
// A crawl whose value is undefined under the guard is left out of the mean.
func (c *Centralization) Run(ctx context.Context, src storage.Source) (map[string]stats.Optional, error) {
	ids, snapshots, err := sampleSnapshots(ctx, src, c.opts)
	if err != nil {
		return nil, err
	}

	var out, in, combined []stats.Optional
	eachSnapshot(ids, snapshots, c.opts.Tracker, func(s *graph.Snapshot) {
		d := graph.ComputeDegrees(s, s.Reverse())

		o := c.centralize(s.CrawlID, "outdegree", d.Out)
		i := c.centralize(s.CrawlID, "indegree", d.In)
		cb := c.centralize(s.CrawlID, "combined", d.Combined)
		out, in, combined = append(out, o), append(in, i), append(combined, cb)

		logrus.Infof("Crawl ID: %d, peers: %d, centralization out=%s in=%s combined=%s",
			s.CrawlID, s.Len(), o, i, cb)
	})

	values := map[string]stats.Optional{
		ColOutdegreeCentralization: stats.MeanOptional(out),
		ColIndegreeCentralization:  stats.MeanOptional(in),
		ColCombinedCentralization:  stats.MeanOptional(combined),
	}
	return values, noUsableData(values, ids)
}

func (c *Centralization) centralize(crawlID int64, variant string, degrees map[string]int) stats.Optional {
	v, err := stats.Centralization(graph.Values(degrees), c.opts.Guard)
	if err != nil {
		logrus.Debugf("Crawl %d: %s centralization undefined: %v", crawlID, variant, err)
		return stats.Optional{}
	}
	return stats.Some(v)
}
