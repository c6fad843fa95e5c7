package graph

import (
	"sort"

	"github.com/alvmarrod/peer-metrics/internal/storage"
	"github.com/sirupsen/logrus"
)

// Load groups feed rows by crawl and builds one snapshot per crawl
func Load(rows []storage.NeighborRow) map[int64]*Snapshot {
	snapshots := make(map[int64]*Snapshot)

	for _, row := range rows {
		s, exists := snapshots[row.CrawlID]
		if !exists {
			s = NewSnapshot(row.CrawlID)
			snapshots[row.CrawlID] = s
		}
		s.AddPeer(row.PeerID, row.NeighborIDs)
	}

	for _, crawlID := range CrawlIDs(snapshots) {
		nodes, edges := snapshots[crawlID].Stats()
		logrus.Debugf("Loaded crawl %d: %d peers, %d observation edges", crawlID, nodes, edges)
	}

	return snapshots
}

// CrawlIDs returns the crawl ids of the loaded snapshots in ascending order
func CrawlIDs(snapshots map[int64]*Snapshot) []int64 {
	ids := make([]int64, 0, len(snapshots))
	for id := range snapshots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
