package results

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// headerPadding is the minimum space a header keeps beyond its own width.
const headerPadding = 2

type align int

const (
	alignLeft align = iota
	alignRight
)

// RenderPSQL renders t as a psql-style grid:
//
//	+-----+-------+
//	|   a | b     |
//	|-----+-------|
//	|   1 | x     |
//	+-----+-------+
//
// Columns whose non-nil values are all numbers are right-aligned, the rest left-aligned.
// Widths are measured in terminal cells. Cells containing newlines span several lines.
// The output has no trailing newline; a table without columns renders as "".
func (t Table) RenderPSQL() string {
	cols := len(t.Header)
	if cols == 0 {
		return ""
	}
	cells := make([][][]string, len(t.Rows))
	numeric := make([]bool, cols)
	for c := range numeric {
		numeric[c] = true
	}
	for r, row := range t.Rows {
		cells[r] = make([][]string, cols)
		for c := 0; c < cols; c++ {
			var v any
			if c < len(row) {
				v = row[c]
			}
			if v != nil && !isNumber(v) {
				numeric[c] = false
			}
			cells[r][c] = strings.Split(formatValue(v), "\n")
		}
	}

	widths := make([]int, cols)
	aligns := make([]align, cols)
	headers := make([][]string, cols)
	for c, h := range t.Header {
		headers[c] = strings.Split(h, "\n")
		widths[c] = maxWidth(headers[c]) + headerPadding
		if numeric[c] && hasValue(t.Rows, c) {
			aligns[c] = alignRight
		}
	}
	for _, row := range cells {
		for c, lines := range row {
			if w := maxWidth(lines); w > widths[c] {
				widths[c] = w
			}
		}
	}

	var b strings.Builder
	border := rule(widths, "+", "+", "+")
	b.WriteString(border)
	b.WriteByte('\n')
	writeRow(&b, headers, widths, aligns)
	b.WriteByte('\n')
	b.WriteString(rule(widths, "|", "+", "|"))
	for _, row := range cells {
		b.WriteByte('\n')
		writeRow(&b, row, widths, aligns)
	}
	b.WriteByte('\n')
	b.WriteString(border)
	return b.String()
}

func rule(widths []int, left, mid, right string) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return left + strings.Join(parts, mid) + right
}

// writeRow writes one logical row, which may span several physical lines, without a
// trailing newline.
func writeRow(b *strings.Builder, row [][]string, widths []int, aligns []align) {
	height := 1
	for _, lines := range row {
		if len(lines) > height {
			height = len(lines)
		}
	}
	for line := 0; line < height; line++ {
		if line > 0 {
			b.WriteByte('\n')
		}
		b.WriteByte('|')
		for c, lines := range row {
			text := ""
			if line < len(lines) {
				text = lines[line]
			}
			b.WriteByte(' ')
			b.WriteString(pad(text, widths[c], aligns[c]))
			b.WriteString(" |")
		}
	}
}

func pad(s string, width int, a align) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	if a == alignRight {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func maxWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		if n := runewidth.StringWidth(l); n > w {
			w = n
		}
	}
	return w
}

func hasValue(rows [][]any, c int) bool {
	for _, row := range rows {
		if c < len(row) && row[c] != nil {
			return true
		}
	}
	return false
}

func isNumber(v any) bool {
	switch x := v.(type) {
	case json.Number:
		_, err := x.Float64()
		return err == nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return err == nil
	}
	return false
}

// formatValue renders one cell. nil is empty, integral floats drop the decimal point,
// and composite values are shown as compact JSON.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		if !strings.ContainsAny(x.String(), ".eE") {
			return x.String()
		}
		if f, err := x.Float64(); err == nil {
			return formatFloat(f)
		}
		return x.String()
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case bool:
		return strconv.FormatBool(x)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
