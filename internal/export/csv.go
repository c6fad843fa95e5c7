package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/alvmarrod/peer-metrics/internal/analysis"
	"github.com/alvmarrod/peer-metrics/internal/graph"
	"github.com/alvmarrod/peer-metrics/internal/stats"
)

const networkHeader = "database"

// WriteResults writes one row per report in report order. Absent metrics are
// written as empty cells.
func WriteResults(w io.Writer, columns []string, reports []analysis.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{networkHeader}, columns...)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range reports {
		record := make([]string, 0, len(columns)+1)
		record = append(record, r.Database)
		for _, c := range columns {
			record = append(record, r.Metric(c).String())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", r.Database, err)
		}
	}

	return flush(cw)
}

// ReadResults parses a file written by WriteResults. Empty cells are read
// back as absent values.
func ReadResults(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("results file has no header")
	}

	header := records[0]
	if header[0] != networkHeader {
		return nil, fmt.Errorf("unexpected first column %q, want %q", header[0], networkHeader)
	}

	t := NewTable()
	for _, c := range header[1:] {
		t.addColumn(c)
	}

	for i, record := range records[1:] {
		network := record[0]
		for j, c := range header[1:] {
			cell := record[j+1]
			if cell == "" {
				t.Set(network, c, stats.Optional{})
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+2, c, err)
			}
			t.Set(network, c, stats.Some(v))
		}
	}

	return t, nil
}

// WriteRadar writes the table transposed: one row per metric and one column
// per network.
func WriteRadar(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{"metric"}, t.Networks...)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, c := range t.Columns {
		record := make([]string, 0, len(t.Networks)+1)
		record = append(record, c)
		for _, n := range t.Networks {
			record = append(record, t.Get(n, c).String())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", c, err)
		}
	}

	return flush(cw)
}

// WriteBins writes the binned degree distribution
func WriteBins(w io.Writer, bins []graph.Bin) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"bin_start", "avg_frequency"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, b := range bins {
		record := []string{strconv.Itoa(b.Start), formatFloat(b.AvgFrequency)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write bin %d: %w", b.Start, err)
		}
	}
	return flush(cw)
}

// WriteHistogram writes a degree-frequency histogram
func WriteHistogram(w io.Writer, h graph.Histogram) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"degree", "frequency"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, b := range h {
		if err := cw.Write([]string{strconv.Itoa(b.Value), strconv.Itoa(b.Frequency)}); err != nil {
			return fmt.Errorf("failed to write degree %d: %w", b.Value, err)
		}
	}
	return flush(cw)
}

// WriteRatios writes the direct-neighbor ratio per degree. Degrees without a
// defined ratio get an empty cell.
func WriteRatios(w io.Writer, points []graph.RatioPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"degree", "frequency", "avg_ratio"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range points {
		ratio := ""
		if p.HasRatio {
			ratio = formatFloat(p.AvgRatio)
		}
		record := []string{strconv.Itoa(p.Degree), strconv.Itoa(p.Frequency), ratio}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write degree %d: %w", p.Degree, err)
		}
	}
	return flush(cw)
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
