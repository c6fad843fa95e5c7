package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCounts(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.IncrementCrawlsAnalyzed()
			tracker.AddRowsLoaded(3)
		}()
	}
	wg.Wait()

	tracker.IncrementNetworksProcessed()
	tracker.IncrementNetworksFailed()
	tracker.IncrementCrawlsSkipped()

	snap := tracker.GetSnapshot()
	assert.Equal(t, 10, snap.CrawlsAnalyzed)
	assert.Equal(t, int64(30), snap.RowsLoaded)
	assert.Equal(t, 1, snap.NetworksProcessed)
	assert.Equal(t, 1, snap.NetworksFailed)
	assert.Equal(t, 1, snap.CrawlsSkipped)

	assert.Equal(t, "Networks: 1 processed, 1 failed | Crawls: 10 analyzed, 1 skipped | Rows: 30", tracker.LogProgress())
}

func TestNilTrackerIgnoresUpdates(t *testing.T) {
	var tracker *Tracker
	assert.NotPanics(t, func() {
		tracker.IncrementCrawlsSkipped()
		tracker.AddRowsLoaded(5)
	})

	assert.Equal(t, RunStats{}, tracker.GetSnapshot())
	assert.Equal(t, "Networks: 0 processed, 0 failed | Crawls: 0 analyzed, 0 skipped | Rows: 0", tracker.LogProgress())

	path := filepath.Join(t.TempDir(), "run.json")
	assert.Error(t, tracker.WriteToFile(path, "completed"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteToFile(t *testing.T) {
	tracker := NewTracker()
	tracker.IncrementNetworksProcessed()

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, tracker.WriteToFile(path, "completed"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var stats RunStats
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, "completed", stats.TerminationReason)
	assert.Equal(t, 1, stats.NetworksProcessed)
	assert.False(t, stats.EndTime.Before(stats.StartTime))
}
