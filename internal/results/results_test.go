package results

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/model"
)

func resultSet(t *testing.T, body string) model.ResultSet {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var rs model.ResultSet
	if err := dec.Decode(&rs); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	rs.Raw = json.RawMessage(body)
	return rs
}

func TestNormalizeSparseItems(t *testing.T) {
	rs := resultSet(t, `{"metadata":{"columns":[{"name":"a"},{"name":"b"},{"name":"c"}]},"items":[{"a":1,"b":2},{"a":3,"c":4}]}`)

	tbl := Normalize(rs)
	if !reflect.DeepEqual(tbl.Header, []string{"a", "b", "c"}) {
		t.Fatalf("header = %v", tbl.Header)
	}
	want := [][]any{
		{json.Number("1"), json.Number("2"), nil},
		{json.Number("3"), nil, json.Number("4")},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Fatalf("rows = %#v, want %#v", tbl.Rows, want)
	}
}

func TestNormalizeDropsUnobservedColumns(t *testing.T) {
	rs := resultSet(t, `{"metadata":{"columns":[{"name":"x"},{"name":"a"},{"name":"y"},{"name":"b"}]},"items":[{"b":1},{"a":2,"extra":3}]}`)

	tbl := Normalize(rs)
	if !reflect.DeepEqual(tbl.Header, []string{"a", "b"}) {
		t.Fatalf("header = %v, want metadata order [a b]", tbl.Header)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0][0] != nil || tbl.Rows[1][1] != nil {
		t.Fatalf("rows = %#v", tbl.Rows)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	rs := resultSet(t, `{"metadata":{"columns":[{"name":"a"}]},"items":[]}`)
	tbl := Normalize(rs)
	if len(tbl.Header) != 0 || len(tbl.Rows) != 0 {
		t.Fatalf("table = %+v, want empty", tbl)
	}
	if got := tbl.RenderPSQL(); got != "" {
		t.Fatalf("RenderPSQL() = %q, want empty", got)
	}
}

func TestRenderPSQLNumbers(t *testing.T) {
	rs := resultSet(t, `{"metadata":{"columns":[{"name":"a"},{"name":"b"},{"name":"c"}]},"items":[{"a":1,"b":2},{"a":3,"c":4}]}`)

	want := strings.Join([]string{
		"+-----+-----+-----+",
		"|   a |   b |   c |",
		"|-----+-----+-----|",
		"|   1 |   2 |     |",
		"|   3 |     |   4 |",
		"+-----+-----+-----+",
	}, "\n")
	if got := Normalize(rs).RenderPSQL(); got != want {
		t.Fatalf("RenderPSQL() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderPSQLMixedWidths(t *testing.T) {
	rs := resultSet(t, `{"metadata":{"columns":[{"name":"name"},{"name":"n"}]},"items":[{"name":"alpha","n":10},{"name":"日本","n":2.50}]}`)

	want := strings.Join([]string{
		"+--------+-----+",
		"| name   |   n |",
		"|--------+-----|",
		"| alpha  |  10 |",
		"| 日本   | 2.5 |",
		"+--------+-----+",
	}, "\n")
	if got := Normalize(rs).RenderPSQL(); got != want {
		t.Fatalf("RenderPSQL() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderPSQLNonNumericValues(t *testing.T) {
	tbl := Table{
		Header: []string{"ok", "tags"},
		Rows: [][]any{
			{true, []any{"x", "y"}},
			{nil, map[string]any{"k": "v"}},
		},
	}
	want := strings.Join([]string{
		"+------+-----------+",
		"| ok   | tags      |",
		"|------+-----------|",
		`| true | ["x","y"] |`,
		`|      | {"k":"v"} |`,
		"+------+-----------+",
	}, "\n")
	if got := tbl.RenderPSQL(); got != want {
		t.Fatalf("RenderPSQL() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderPSQLMultilineCell(t *testing.T) {
	tbl := Table{Header: []string{"msg"}, Rows: [][]any{{"one\ntwo"}}}
	want := strings.Join([]string{
		"+-------+",
		"| msg   |",
		"|-------|",
		"| one   |",
		"| two   |",
		"+-------+",
	}, "\n")
	if got := tbl.RenderPSQL(); got != want {
		t.Fatalf("RenderPSQL() =\n%s\nwant\n%s", got, want)
	}
}

func TestParsePSQLMultilineCellSplitsRows(t *testing.T) {
	tbl := Table{Header: []string{"msg", "n"}, Rows: [][]any{{"one\ntwo", 1}}}
	header, rows, err := ParsePSQL(tbl.RenderPSQL())
	if err != nil {
		t.Fatalf("ParsePSQL() error = %v", err)
	}
	if !reflect.DeepEqual(header, []string{"msg", "n"}) {
		t.Fatalf("header = %q", header)
	}
	want := [][]string{{"one", "1"}, {"two", ""}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %q, want %q", rows, want)
	}
}

func TestRenderPSQLDeterministic(t *testing.T) {
	rs := resultSet(t, `{"metadata":{"columns":[{"name":"a"},{"name":"b"}]},"items":[{"a":"x","b":1},{"b":2}]}`)
	first := Normalize(rs).RenderPSQL()
	for i := 0; i < 5; i++ {
		if got := Normalize(rs).RenderPSQL(); got != first {
			t.Fatalf("render %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestParsePSQLRoundTrip(t *testing.T) {
	rs := resultSet(t, `{"metadata":{"columns":[{"name":"host"},{"name":"count"},{"name":"note"}]},"items":[{"host":"srv-1","count":12},{"host":"端末","note":"a | b"}]}`)

	header, rows, err := ParsePSQL(Normalize(rs).RenderPSQL())
	if err != nil {
		t.Fatalf("ParsePSQL() error = %v", err)
	}
	if !reflect.DeepEqual(header, []string{"host", "count", "note"}) {
		t.Fatalf("header = %v", header)
	}
	want := [][]string{
		{"srv-1", "12", ""},
		{"端末", "", "a | b"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %q, want %q", rows, want)
	}
}

func TestParsePSQLRoundTripGraphemeClusters(t *testing.T) {
	tests := []struct {
		name string
		cell string
	}{
		{"emoji with variation selector", "❤️"},
		{"zwj family", "👨‍👩‍👧"},
		{"combining accent", "été"},
		{"flag", "🇯🇵 jp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, _ := json.Marshal([]map[string]string{{"a": tt.cell, "b": "x"}, {"a": "plain", "b": "q"}})
			rs := resultSet(t, `{"metadata":{"columns":[{"name":"a"},{"name":"b"}]},"items":`+string(items)+`}`)

			header, rows, err := ParsePSQL(Normalize(rs).RenderPSQL())
			if err != nil {
				t.Fatalf("ParsePSQL() error = %v", err)
			}
			if !reflect.DeepEqual(header, []string{"a", "b"}) {
				t.Fatalf("header = %q", header)
			}
			want := [][]string{{tt.cell, "x"}, {"plain", "q"}}
			if !reflect.DeepEqual(rows, want) {
				t.Fatalf("rows = %q, want %q", rows, want)
			}
		})
	}
}

func TestParsePSQLRejectsGarbage(t *testing.T) {
	if _, _, err := ParsePSQL("hello\nworld"); !xerrors.Is(err, xerrors.Decode) {
		t.Fatalf("error = %v, want decode error", err)
	}
}

func TestRenderJSONKeepsFieldOrder(t *testing.T) {
	got, err := RenderJSON(json.RawMessage(`{"b":1,"a":[1,2]}`))
	if err != nil {
		t.Fatalf("RenderJSON() error = %v", err)
	}
	want := "{\n    \"b\": 1,\n    \"a\": [\n        1,\n        2\n    ]\n}"
	if got != want {
		t.Fatalf("RenderJSON() =\n%s\nwant\n%s", got, want)
	}

	if _, err := RenderJSON(json.RawMessage(`{`)); !xerrors.Is(err, xerrors.Decode) {
		t.Fatalf("error = %v, want decode error", err)
	}
}

func TestRender(t *testing.T) {
	rs := resultSet(t, `{"metadata":{"columns":[{"name":"a"}]},"items":[{"a":1}]}`)

	table, err := Render(rs, FormatTable)
	if err != nil || !strings.HasPrefix(table, "+-----+") {
		t.Fatalf("Render(table) = %q, %v", table, err)
	}
	js, err := Render(rs, FormatJSON)
	if err != nil || !strings.Contains(js, `    "items": [`) {
		t.Fatalf("Render(json) = %q, %v", js, err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
