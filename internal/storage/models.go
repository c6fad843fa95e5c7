package storage

import (
	"context"
	"errors"
)

// ErrNoData is returned when a query succeeds but yields nothing usable
var ErrNoData = errors.New("no data")

// NeighborRow is one crawled peer and the neighbors it reported in a crawl.
// A nil NeighborIDs slice represents a NULL column.
type NeighborRow struct {
	CrawlID     int64
	PeerID      string
	NeighborIDs []string
}

// DialDuration is the average dial duration of a peer across all its visits
type DialDuration struct {
	PeerID     string
	AvgSeconds float64
	Valid      bool
}

// CountryCount is the number of multi addresses located in a country.
// An empty Country represents a NULL column.
type CountryCount struct {
	Country   string
	Frequency int64
}

// Source is the read side of one network's crawl database
type Source interface {
	// CrawlIDs returns up to limit distinct crawl ids in ascending order
	CrawlIDs(ctx context.Context, limit int) ([]int64, error)
	// NeighborRows returns all neighbor rows belonging to the given crawls
	NeighborRows(ctx context.Context, crawlIDs []int64) ([]NeighborRow, error)
	// Addresses returns the IP addresses of the peers seen in a crawl
	Addresses(ctx context.Context, crawlID int64) ([]string, error)
	// CountryFrequencies counts multi addresses per country
	CountryFrequencies(ctx context.Context) ([]CountryCount, error)
	// AvgDialDurations returns the per-peer average of non-null dial durations
	AvgDialDurations(ctx context.Context) ([]DialDuration, error)
	Close() error
}

// Opener connects to the crawl database of a named network
type Opener func(ctx context.Context, database string) (Source, error)
