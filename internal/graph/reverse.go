package graph

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Reverse returns, for every crawled peer n, the set of crawled peers that
// listed n as a neighbor. It builds an inverted index in one pass over the
// observation edges. Neighbors outside the population are ignored.
func (s *Snapshot) Reverse() map[string]mapset.Set[string] {
	reverse := make(map[string]mapset.Set[string], len(s.Neighbors))
	for peerID := range s.Neighbors {
		reverse[peerID] = mapset.NewThreadUnsafeSet[string]()
	}

	for source, neighbors := range s.Neighbors {
		neighbors.Each(func(target string) bool {
			if set, ok := reverse[target]; ok {
				set.Add(source)
			}
			return false
		})
	}

	return reverse
}

// ReverseScan computes the same sets as Reverse by testing every peer against
// every neighbor set. It is quadratic in the population size.
func ReverseScan(s *Snapshot) map[string]mapset.Set[string] {
	reverse := make(map[string]mapset.Set[string], len(s.Neighbors))

	for candidate := range s.Neighbors {
		set := mapset.NewThreadUnsafeSet[string]()
		for source, neighbors := range s.Neighbors {
			if neighbors.Contains(candidate) {
				set.Add(source)
			}
		}
		reverse[candidate] = set
	}

	return reverse
}
