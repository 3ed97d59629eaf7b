// Package query executes caller-supplied SQL through a connection dialer and
// normalizes the tabular result into JSON-safe rows.
package query

import (
	"github.com/nnnkkk7/snowflake-bridge/pkg/types"
)

// Column describes one column of a result set.
type Column struct {
	Name string
	// DatabaseType is the type name reported by the driver.
	DatabaseType string
	Kind         types.CellKind
	Precision    int64
	Scale        int64
	Nullable     bool
}

// ResultSet is the tabular output of a statement. Every row has one cell per column.
type ResultSet struct {
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the column names in declaration order.
func (r *ResultSet) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, col := range r.Columns {
		names[i] = col.Name
	}
	return names
}

// NormalizedResult is a ResultSet converted to JSON-representable values.
type NormalizedResult struct {
	// Columns keeps declaration order; Rows are keyed by column name.
	Columns []string
	Rows    []map[string]any
}

// ProbeResult is the outcome of a connection test.
type ProbeResult struct {
	Version   string
	Warehouse string
	Database  string
	Schema    string
}
