package export

import (
	"github.com/alvmarrod/peer-metrics/internal/analysis"
	"github.com/alvmarrod/peer-metrics/internal/stats"
)

// Table holds per-network metric values keyed by network then column.
// Networks and Columns keep insertion order.
type Table struct {
	Columns  []string
	Networks []string
	Values   map[string]map[string]stats.Optional
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{Values: make(map[string]map[string]stats.Optional)}
}

// FromReports builds a table from the reports of a run
func FromReports(columns []string, reports []analysis.Report) *Table {
	t := NewTable()
	for _, r := range reports {
		for _, c := range columns {
			t.Set(r.Database, c, r.Metric(c))
		}
	}
	// keep the requested column order even if there were no reports
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

// Set stores a value, registering the network and column on first use
func (t *Table) Set(network, column string, v stats.Optional) {
	row, ok := t.Values[network]
	if !ok {
		row = make(map[string]stats.Optional)
		t.Values[network] = row
		t.Networks = append(t.Networks, network)
	}
	row[column] = v
	t.addColumn(column)
}

// Get returns the value of a cell; missing cells are absent
func (t *Table) Get(network, column string) stats.Optional {
	return t.Values[network][column]
}

// Merge copies every cell of other into t. Cells of other win on conflict.
func (t *Table) Merge(other *Table) {
	for _, n := range other.Networks {
		for _, c := range other.Columns {
			if v, ok := other.Values[n][c]; ok {
				t.Set(n, c, v)
			}
		}
	}
}

func (t *Table) addColumn(column string) {
	for _, c := range t.Columns {
		if c == column {
			return
		}
	}
	t.Columns = append(t.Columns, column)
}
