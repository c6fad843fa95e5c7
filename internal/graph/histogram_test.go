package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencies(t *testing.T) {
	h := Frequencies(map[string]int{"a": 2, "b": 5, "c": 2, "d": 0})
	assert.Equal(t, Histogram{{Value: 0, Frequency: 1}, {Value: 2, Frequency: 2}, {Value: 5, Frequency: 1}}, h)
	assert.Equal(t, []float64{1, 2, 1}, h.Counts())
}

func TestBinAverages(t *testing.T) {
	crawl1 := Histogram{{Value: 3, Frequency: 10}, {Value: 19, Frequency: 2}, {Value: 20, Frequency: 4}}
	crawl2 := Histogram{{Value: 5, Frequency: 6}, {Value: 41, Frequency: 1}}

	bins, err := BinAverages([]Histogram{crawl1, crawl2}, 20)
	require.NoError(t, err)
	assert.Equal(t, []Bin{
		{Start: 0, AvgFrequency: 6},
		{Start: 20, AvgFrequency: 4},
		{Start: 40, AvgFrequency: 1},
	}, bins)
}

func TestBinAveragesRejectsWidth(t *testing.T) {
	_, err := BinAverages(nil, 0)
	assert.Error(t, err)
}

func TestRatioByDegree(t *testing.T) {
	s := snapshotOf(map[string][]string{
		"A": {"B"},
		"B": {"A", "C"},
		"C": {},
		"D": nil,
	})

	points := RatioByDegree(ComputeDegrees(s, s.Reverse()))
	require.Len(t, points, 3)

	assert.Equal(t, RatioPoint{Degree: 0, Frequency: 1}, points[0])

	assert.Equal(t, 1, points[1].Degree)
	assert.Equal(t, 2, points[1].Frequency)
	assert.True(t, points[1].HasRatio)
	assert.InDelta(t, 0.5, points[1].AvgRatio, 1e-12)

	assert.Equal(t, 2, points[2].Degree)
	assert.InDelta(t, 1.0, points[2].AvgRatio, 1e-12)
}
