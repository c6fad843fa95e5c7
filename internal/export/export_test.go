package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alvmarrod/peer-metrics/internal/analysis"
	"github.com/alvmarrod/peer-metrics/internal/graph"
	"github.com/alvmarrod/peer-metrics/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReports() []analysis.Report {
	return []analysis.Report{
		{
			Database: "nebula_ipfs",
			Results: []analysis.Result{{
				Analysis: "dial-entropy",
				Metrics:  map[string]stats.Optional{"dial_duration_entropy": stats.Some(0.25)},
			}},
		},
		{
			Database: "nebula_filecoin",
			Results: []analysis.Result{{
				Analysis: "dial-entropy",
				Reason:   analysis.ReasonDataAccess,
				Metrics:  map[string]stats.Optional{"dial_duration_entropy": {}},
			}},
		},
		{
			Database: "nebula_polkadot",
			Results: []analysis.Result{{
				Analysis: "dial-entropy",
				Metrics:  map[string]stats.Optional{"dial_duration_entropy": stats.Some(0.75)},
			}},
		},
	}
}

func TestWriteResultsKeepsNullRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, []string{"dial_duration_entropy"}, sampleReports()))

	want := "database,dial_duration_entropy\n" +
		"nebula_ipfs,0.25\n" +
		"nebula_filecoin,\n" +
		"nebula_polkadot,0.75\n"
	assert.Equal(t, want, buf.String())
}

func TestReadResultsRoundTripsAbsentValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, []string{"dial_duration_entropy"}, sampleReports()))

	table, err := ReadResults(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"nebula_ipfs", "nebula_filecoin", "nebula_polkadot"}, table.Networks)
	assert.Equal(t, stats.Some(0.25), table.Get("nebula_ipfs", "dial_duration_entropy"))
	assert.False(t, table.Get("nebula_filecoin", "dial_duration_entropy").Valid)
}

func TestReadResultsRejectsForeignFiles(t *testing.T) {
	_, err := ReadResults(strings.NewReader("degree,frequency\n1,2\n"))
	assert.Error(t, err)

	_, err = ReadResults(strings.NewReader("database,x\nnebula_ipfs,abc\n"))
	assert.Error(t, err)

	_, err = ReadResults(strings.NewReader(""))
	assert.Error(t, err)
}

func TestWriteRadarTransposes(t *testing.T) {
	a := NewTable()
	a.Set("nebula_ipfs", "avg_gini_coefficient", stats.Some(0.5))
	a.Set("nebula_avail_mainnet", "avg_gini_coefficient", stats.Some(0.1))

	b := NewTable()
	b.Set("nebula_ipfs", "dial_duration_entropy", stats.Some(0.9))
	b.Set("nebula_avail_mainnet", "dial_duration_entropy", stats.Optional{})
	a.Merge(b)

	var buf bytes.Buffer
	require.NoError(t, WriteRadar(&buf, a))

	want := "metric,nebula_ipfs,nebula_avail_mainnet\n" +
		"avg_gini_coefficient,0.5,0.1\n" +
		"dial_duration_entropy,0.9,\n"
	assert.Equal(t, want, buf.String())
}

func TestFromReports(t *testing.T) {
	table := FromReports([]string{"dial_duration_entropy", "avg_degree_gini"}, sampleReports())
	assert.Equal(t, []string{"dial_duration_entropy", "avg_degree_gini"}, table.Columns)
	assert.Len(t, table.Networks, 3)
	assert.False(t, table.Get("nebula_polkadot", "avg_degree_gini").Valid)
}

func TestDetailWriters(t *testing.T) {
	var bins bytes.Buffer
	require.NoError(t, WriteBins(&bins, []graph.Bin{{Start: 0, AvgFrequency: 4.5}, {Start: 20, AvgFrequency: 1}}))
	assert.Equal(t, "bin_start,avg_frequency\n0,4.5\n20,1\n", bins.String())

	var hist bytes.Buffer
	require.NoError(t, WriteHistogram(&hist, graph.Histogram{{Value: 1, Frequency: 3}}))
	assert.Equal(t, "degree,frequency\n1,3\n", hist.String())

	var ratios bytes.Buffer
	points := []graph.RatioPoint{
		{Degree: 0, Frequency: 2},
		{Degree: 1, Frequency: 2, AvgRatio: 0.5, HasRatio: true},
	}
	require.NoError(t, WriteRatios(&ratios, points))
	assert.Equal(t, "degree,frequency,avg_ratio\n0,2,\n1,2,0.5\n", ratios.String())
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, []string{"dial_duration_entropy"}, sampleReports())

	out := buf.String()
	assert.Contains(t, out, "nebula_filecoin")
	assert.Contains(t, out, "dial-entropy:data_access")
	assert.Contains(t, out, "0.2500")
	// mean of 0.25 and 0.75, the failed network is skipped
	assert.Contains(t, out, "0.5000")
}
