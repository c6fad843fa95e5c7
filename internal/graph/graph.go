package graph

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Snapshot holds the observation graph of a single crawl: every crawled peer
// and the set of neighbors it reported. The keys of Neighbors are the crawl's
// population.
type Snapshot struct {
	CrawlID   int64
	Neighbors map[string]mapset.Set[string]
}

// NewSnapshot creates an empty snapshot for a crawl
func NewSnapshot(crawlID int64) *Snapshot {
	return &Snapshot{
		CrawlID:   crawlID,
		Neighbors: make(map[string]mapset.Set[string]),
	}
}

// AddPeer inserts a crawled peer, merging neighbors if the peer already exists.
// A nil neighbor list is stored as the empty set.
func (s *Snapshot) AddPeer(peerID string, neighborIDs []string) {
	set, exists := s.Neighbors[peerID]
	if !exists {
		set = mapset.NewThreadUnsafeSet[string]()
		s.Neighbors[peerID] = set
	}

	for _, id := range neighborIDs {
		set.Add(id)
	}
}

// Contains reports whether the peer was crawled in this snapshot
func (s *Snapshot) Contains(peerID string) bool {
	_, ok := s.Neighbors[peerID]
	return ok
}

// Len returns the size of the population
func (s *Snapshot) Len() int {
	return len(s.Neighbors)
}

// Stats returns the number of crawled peers and observation edges
func (s *Snapshot) Stats() (nodeCount, edgeCount int) {
	for _, set := range s.Neighbors {
		edgeCount += set.Cardinality()
	}
	return len(s.Neighbors), edgeCount
}
