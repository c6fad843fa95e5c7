package export

import (
	"io"
	"strconv"

	"github.com/alvmarrod/peer-metrics/internal/analysis"
	"github.com/olekukonko/tablewriter"
)

// RenderSummary prints the per-network metrics as a console table with a
// status column and a footer holding the mean of each column across the
// networks where it is present.
func RenderSummary(w io.Writer, columns []string, reports []analysis.Report) {
	table := tablewriter.NewWriter(w)

	header := make([]string, 0, len(columns)+2)
	header = append(header, "Database")
	header = append(header, columns...)
	header = append(header, "Status")
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)

	for _, r := range reports {
		row := make([]string, 0, len(header))
		row = append(row, r.Database)
		for _, c := range columns {
			row = append(row, displayValue(r.Metric(c).Valid, r.Metric(c).Value))
		}
		row = append(row, r.Status())
		table.Append(row)
	}

	footer := make([]string, 0, len(header))
	footer = append(footer, "mean")
	for _, c := range columns {
		m := analysis.AcrossNetworks(reports, c)
		footer = append(footer, displayValue(m.Valid, m.Value))
	}
	footer = append(footer, "")
	table.SetFooter(footer)

	table.Render()
}

func displayValue(valid bool, v float64) string {
	if !valid {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
