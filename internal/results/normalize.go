// Package results turns a query result set into a table and renders it as text.
//
// Result items are sparse: an item may omit any column. Normalize aligns every item to a
// single header so renderers never see ragged rows.
package results

import (
	"xdrquery/cli/internal/model"
)

// Table is a normalized result set. Every row has len(Header) cells; a nil cell means the
// item did not carry that column.
type Table struct {
	Header []string
	Rows   [][]any
}

// Normalize builds a Table from rs. The header is the metadata column order filtered to
// columns present in at least one item. Item keys missing from the metadata are dropped.
func Normalize(rs model.ResultSet) Table {
	seen := make(map[string]bool)
	for _, item := range rs.Items {
		for k := range item {
			seen[k] = true
		}
	}

	names := rs.ColumnNames()
	header := make([]string, 0, len(names))
	added := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] && !added[name] {
			header = append(header, name)
			added[name] = true
		}
	}

	rows := make([][]any, 0, len(rs.Items))
	for _, item := range rs.Items {
		row := make([]any, len(header))
		for i, name := range header {
			if v, ok := item[name]; ok {
				row[i] = v
			}
		}
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}
