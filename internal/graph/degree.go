package graph

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Degrees holds the per-peer degree variants of one crawl
type Degrees struct {
	Out      map[string]int
	In       map[string]int
	Combined map[string]int
}

// ComputeDegrees derives outdegree, indegree and combined degree for every
// peer of the snapshot. Combined degree is the size of the union of a peer's
// neighbor and reverse-neighbor sets.
func ComputeDegrees(s *Snapshot, reverse map[string]mapset.Set[string]) Degrees {
	d := Degrees{
		Out:      make(map[string]int, len(s.Neighbors)),
		In:       make(map[string]int, len(s.Neighbors)),
		Combined: make(map[string]int, len(s.Neighbors)),
	}

	for peerID, neighbors := range s.Neighbors {
		in, ok := reverse[peerID]
		if !ok {
			in = mapset.NewThreadUnsafeSet[string]()
		}

		d.Out[peerID] = neighbors.Cardinality()
		d.In[peerID] = in.Cardinality()
		d.Combined[peerID] = neighbors.Union(in).Cardinality()
	}

	return d
}

// Ratio returns the fraction of a peer's known relations it reported itself.
// It is undefined (false) for peers with no relations at all.
func (d Degrees) Ratio(peerID string) (float64, bool) {
	combined := d.Combined[peerID]
	if combined == 0 {
		return 0, false
	}
	return float64(d.Out[peerID]) / float64(combined), true
}

// Values flattens a degree map; order is unspecified
func Values(degrees map[string]int) []int {
	values := make([]int, 0, len(degrees))
	for _, v := range degrees {
		values = append(values, v)
	}
	return values
}

// Unreachable maps peers that were referenced as neighbors but never crawled
// to the number of distinct crawled peers referencing them
type Unreachable map[string]int

// FindUnreachable collects the neighbors of a snapshot that are not part of
// its population, along with their reverse degree.
func FindUnreachable(s *Snapshot) Unreachable {
	referrers := make(map[string]mapset.Set[string])

	for source, neighbors := range s.Neighbors {
		neighbors.Each(func(target string) bool {
			if s.Contains(target) {
				return false
			}
			set, ok := referrers[target]
			if !ok {
				set = mapset.NewThreadUnsafeSet[string]()
				referrers[target] = set
			}
			set.Add(source)
			return false
		})
	}

	u := make(Unreachable, len(referrers))
	for target, set := range referrers {
		u[target] = set.Cardinality()
	}
	return u
}
