package results

import (
	"bytes"
	"encoding/json"
	"strings"

	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/model"
)

// Format selects how results are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat accepts "table" or "json" in any case. The empty string means table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", xerrors.Newf(xerrors.Config, "unknown output format %q (want table or json)", s)
}

// RenderJSON re-indents a raw results body with four spaces, keeping the server's field order.
func RenderJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "    "); err != nil {
		return "", xerrors.Wrap(xerrors.Decode, "results are not valid JSON", err)
	}
	return buf.String(), nil
}

// Render formats rs. JSON output uses the raw body when present.
func Render(rs model.ResultSet, f Format) (string, error) {
	switch f {
	case FormatTable, "":
		return Normalize(rs).RenderPSQL(), nil
	case FormatJSON:
		raw := rs.Raw
		if len(raw) == 0 {
			b, err := json.Marshal(rs)
			if err != nil {
				return "", xerrors.Wrap(xerrors.Decode, "encode results", err)
			}
			raw = b
		}
		return RenderJSON(raw)
	}
	return "", xerrors.Newf(xerrors.Config, "unknown output format %q", f)
}
