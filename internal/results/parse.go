package results

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	xerrors "xdrquery/cli/internal/errors"
)

// ParsePSQL reads a grid produced by RenderPSQL back into header and cell text.
// Cells are trimmed.
//
// The grid has no row separators, so a row holding a multi-line cell comes back as one
// row per physical line. Header and row count round-trip only for single-line cells.
func ParsePSQL(text string) ([]string, [][]string, error) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, nil, nil
	}
	if !strings.HasPrefix(lines[0], "+") {
		return nil, nil, xerrors.New(xerrors.Decode, "not a psql table: missing top border")
	}

	// The border is ASCII, so byte offsets of '+' are display columns.
	stops := make(map[int]bool)
	count := 0
	for i, r := range lines[0] {
		if r == '+' {
			stops[i] = true
			count++
		}
	}
	cols := count - 1

	var header []string
	var rows [][]string
	for n, line := range lines {
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "|-") {
			continue
		}
		if !strings.HasPrefix(line, "|") {
			return nil, nil, xerrors.Newf(xerrors.Decode, "not a psql table: line %d", n+1)
		}
		cells := splitAt(line, stops)
		if len(cells) != cols {
			return nil, nil, xerrors.Newf(xerrors.Decode, "line %d has %d cells, want %d", n+1, len(cells), cols)
		}
		if header == nil {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	return header, rows, nil
}

// splitAt cuts line at the given display columns and trims each cell. Columns advance
// per grapheme cluster, measured as RenderPSQL pads them.
func splitAt(line string, stops map[int]bool) []string {
	var cells []string
	var cur strings.Builder
	started := false
	col := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		cluster := g.Str()
		if stops[col] && cluster == "|" {
			if started {
				cells = append(cells, strings.TrimSpace(cur.String()))
				cur.Reset()
			}
			started = true
		} else {
			cur.WriteString(cluster)
		}
		col += runewidth.StringWidth(cluster)
	}
	return cells
}
