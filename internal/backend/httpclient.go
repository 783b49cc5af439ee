package backend

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/logging"
	"xdrquery/cli/internal/transport"
)

// HTTP implements API over the REST endpoints.
type HTTP struct {
	// sender performs the round trips; it owns timeout and TLS behaviour.
	sender transport.Sender
	log    *slog.Logger
}

// New creates a backend API implementation on top of sender.
func New(sender transport.Sender, log *slog.Logger) *HTTP {
	if log == nil {
		log = logging.Discard()
	}
	return &HTTP{sender: sender, log: log}
}

var _ API = (*HTTP)(nil)

// setBearer adds the Authorization header used by every authenticated call.
func setBearer(h http.Header, token string) {
	h.Set("Authorization", "Bearer "+token)
}

// queryHeaders returns the header set shared by all query service calls.
func queryHeaders(t Target) http.Header {
	h := make(http.Header)
	setBearer(h, t.Token)
	h.Set("X-Tenant-Id", t.TenantID)
	h.Set("Content-Type", "application/json")
	return h
}

// joinURL appends path segments to base with single slashes.
func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}

// decodeJSON unmarshals body into v, preserving numbers as json.Number.
func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()
	return dec.Decode(v)
}

// bodyExcerpt trims a response body for log and error output.
func bodyExcerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		s = s[:512] + "..."
	}
	return logging.Mask(s)
}

// requireStatus returns a kind error when resp does not carry want.
func requireStatus(resp *transport.Response, want int, kind xerrors.Kind, msg string) error {
	if resp.StatusCode == want {
		return nil
	}
	return xerrors.HTTP(kind, msg, resp.StatusCode, resp.Body)
}
