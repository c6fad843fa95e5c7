package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// RunStats is the run report exported on exit
type RunStats struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	NetworksProcessed int       `json:"networks_processed"`
	NetworksFailed    int       `json:"networks_failed"`
	CrawlsAnalyzed    int       `json:"crawls_analyzed"`
	CrawlsSkipped     int       `json:"crawls_skipped"`
	RowsLoaded        int64     `json:"rows_loaded"`
	TerminationReason string    `json:"termination_reason"`
}

// Tracker holds and manages run counters. A nil Tracker ignores all updates,
// reports zero counters and refuses to write a report.
type Tracker struct {
	mu   sync.Mutex
	data RunStats
}

// NewTracker creates a new run tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: RunStats{
			StartTime: time.Now(),
		},
	}
}

func (t *Tracker) update(fn func(d *RunStats)) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.data)
}

// IncrementNetworksProcessed counts a network whose source could be opened
func (t *Tracker) IncrementNetworksProcessed() {
	t.update(func(d *RunStats) { d.NetworksProcessed++ })
}

// IncrementNetworksFailed counts a network that could not be read
func (t *Tracker) IncrementNetworksFailed() {
	t.update(func(d *RunStats) { d.NetworksFailed++ })
}

// IncrementCrawlsAnalyzed counts a crawl that contributed to an average
func (t *Tracker) IncrementCrawlsAnalyzed() {
	t.update(func(d *RunStats) { d.CrawlsAnalyzed++ })
}

// IncrementCrawlsSkipped counts a crawl without usable data
func (t *Tracker) IncrementCrawlsSkipped() {
	t.update(func(d *RunStats) { d.CrawlsSkipped++ })
}

// AddRowsLoaded adds to the number of feed rows read
func (t *Tracker) AddRowsLoaded(n int) {
	t.update(func(d *RunStats) { d.RowsLoaded += int64(n) })
}

// GetSnapshot returns a copy of current counters
func (t *Tracker) GetSnapshot() RunStats {
	if t == nil {
		return RunStats{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// WriteToFile exports the run report to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	if t == nil {
		return fmt.Errorf("no tracker to write")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress formats current counters for periodic log lines
func (t *Tracker) LogProgress() string {
	d := t.GetSnapshot()

	return fmt.Sprintf("Networks: %d processed, %d failed | Crawls: %d analyzed, %d skipped | Rows: %d",
		d.NetworksProcessed,
		d.NetworksFailed,
		d.CrawlsAnalyzed,
		d.CrawlsSkipped,
		d.RowsLoaded,
	)
}
