package graph

import (
	"fmt"
	"sort"
)

// Bucket is the number of peers sharing a degree value
type Bucket struct {
	Value     int
	Frequency int
}

// Histogram is a degree-frequency table sorted by degree value
type Histogram []Bucket

// Frequencies counts how many peers have each distinct degree value
func Frequencies(degrees map[string]int) Histogram {
	counts := make(map[int]int)
	for _, v := range degrees {
		counts[v]++
	}

	h := make(Histogram, 0, len(counts))
	for value, freq := range counts {
		h = append(h, Bucket{Value: value, Frequency: freq})
	}
	sort.Slice(h, func(i, j int) bool { return h[i].Value < h[j].Value })
	return h
}

// Counts returns the frequencies as a vector suitable for inequality metrics
func (h Histogram) Counts() []float64 {
	counts := make([]float64, len(h))
	for i, b := range h {
		counts[i] = float64(b.Frequency)
	}
	return counts
}

// Bin groups degree values of fixed width. Start is the lowest degree in the
// bin and AvgFrequency the mean frequency of the degree buckets it holds.
type Bin struct {
	Start        int
	AvgFrequency float64
}

// BinAverages assigns every bucket of every histogram to the bin
// floor(degree/width)*width and averages the bucket frequencies per bin
// across all histograms.
func BinAverages(histograms []Histogram, width int) ([]Bin, error) {
	if width <= 0 {
		return nil, fmt.Errorf("bin width must be positive, got %d", width)
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, h := range histograms {
		for _, b := range h {
			start := (b.Value / width) * width
			sums[start] += float64(b.Frequency)
			counts[start]++
		}
	}

	bins := make([]Bin, 0, len(sums))
	for start, sum := range sums {
		bins = append(bins, Bin{Start: start, AvgFrequency: sum / float64(counts[start])})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Start < bins[j].Start })
	return bins, nil
}

// RatioPoint summarizes the peers of one combined degree: how many there are
// and their mean direct-neighbor ratio. HasRatio is false when no peer of the
// degree has a defined ratio.
type RatioPoint struct {
	Degree    int
	Frequency int
	AvgRatio  float64
	HasRatio  bool
}

// RatioByDegree groups peers by combined degree and averages Degrees.Ratio
// over the peers for which it is defined.
func RatioByDegree(d Degrees) []RatioPoint {
	type acc struct {
		freq   int
		sum    float64
		ratios int
	}
	groups := make(map[int]*acc)

	for peerID, degree := range d.Combined {
		g, ok := groups[degree]
		if !ok {
			g = &acc{}
			groups[degree] = g
		}
		g.freq++
		if r, ok := d.Ratio(peerID); ok {
			g.sum += r
			g.ratios++
		}
	}

	points := make([]RatioPoint, 0, len(groups))
	for degree, g := range groups {
		p := RatioPoint{Degree: degree, Frequency: g.freq}
		if g.ratios > 0 {
			p.AvgRatio = g.sum / float64(g.ratios)
			p.HasRatio = true
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Degree < points[j].Degree })
	return points
}
