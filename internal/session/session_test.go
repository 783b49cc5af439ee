package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"xdrquery/cli/internal/environment"
	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/model"
	"xdrquery/cli/internal/results"
)

type fakeService struct {
	srv      *httptest.Server
	idType   string
	runs     atomic.Int32
	statuses atomic.Int32
}

func newFakeService(t *testing.T, idType string) *fakeService {
	t.Helper()
	f := &fakeService{idType: idType}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	})
	mux.HandleFunc("GET /whoami", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"id":"t-1","idType":%q,"apiHosts":{"global":"%s","dataRegion":"%s/region"}}`, f.idType, f.srv.URL, f.srv.URL)
	})
	mux.HandleFunc("POST /region/xdr-query/v1/queries/runs", func(w http.ResponseWriter, _ *http.Request) {
		f.runs.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"exec-1"}`))
	})
	mux.HandleFunc("GET /region/xdr-query/v1/queries/runs/exec-1", func(w http.ResponseWriter, _ *http.Request) {
		f.statuses.Add(1)
		_, _ = w.Write([]byte(`{"id":"exec-1","status":"finished","result":"succeeded"}`))
	})
	mux.HandleFunc("GET /region/xdr-query/v1/queries/runs/exec-1/results", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"metadata":{"columns":[{"name":"a"},{"name":"b"},{"name":"c"}]},"items":[{"a":1,"b":2},{"a":3,"c":4}]}`))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeService) environments(t *testing.T) *environment.Config {
	t.Helper()
	cfg, err := environment.Parse([]byte(fmt.Sprintf(`{"test":{"whoamiURL":"%s/whoami","tokenURL":"%s/token"}}`, f.srv.URL, f.srv.URL)))
	if err != nil {
		t.Fatalf("environment.Parse: %v", err)
	}
	return cfg
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestRunQueryRendersTable(t *testing.T) {
	f := newFakeService(t, model.IDTypeTenant)
	s, err := New(Options{
		Environments: f.environments(t),
		EnvName:      "test",
		Credentials:  model.Credentials{ClientID: "cid", ClientSecret: "secret"},
		Sleep:        noSleep,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	res, err := s.RunQuery(context.Background(), "select a, b, c", "", results.FormatTable)
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	want := strings.Join([]string{
		"+-----+-----+-----+",
		"|   a |   b |   c |",
		"|-----+-----+-----|",
		"|   1 |   2 |     |",
		"|   3 |     |   4 |",
		"+-----+-----+-----+",
	}, "\n")
	if res.Output != want || !res.Succeeded || res.ExecutionID != "exec-1" {
		t.Fatalf("result = %+v\nwant output\n%s", res, want)
	}
}

func TestRunQueryTenantMismatchSendsNoQuery(t *testing.T) {
	f := newFakeService(t, model.IDTypeTenant)
	s, err := New(Options{
		Environments: f.environments(t),
		EnvName:      "test",
		Credentials:  model.Credentials{ClientID: "cid", ClientSecret: "secret"},
		Sleep:        noSleep,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = s.RunQuery(context.Background(), "select 1", "someone-else", results.FormatTable)
	if !xerrors.Is(err, xerrors.Tenant) {
		t.Fatalf("error = %v, want tenant error", err)
	}
	if f.runs.Load() != 0 || f.statuses.Load() != 0 {
		t.Fatalf("runs=%d statuses=%d, want no query requests", f.runs.Load(), f.statuses.Load())
	}
}

func TestRunQueryPartnerRequiresTenant(t *testing.T) {
	f := newFakeService(t, "partner")
	s, err := New(Options{
		Environments: f.environments(t),
		EnvName:      "test",
		Credentials:  model.Credentials{ClientID: "cid", ClientSecret: "secret"},
		Sleep:        noSleep,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := s.RunQuery(context.Background(), "select 1", "", results.FormatJSON); !xerrors.Is(err, xerrors.Tenant) {
		t.Fatalf("error = %v, want tenant error", err)
	}
	res, err := s.RunQuery(context.Background(), "select 1", "t-7", results.FormatJSON)
	if err != nil {
		t.Fatalf("RunQuery() error = %v", err)
	}
	if !strings.HasPrefix(res.Output, "{\n    \"metadata\": {") {
		t.Fatalf("json output = %q", res.Output)
	}
}

func TestNewRejectsUnknownEnvironment(t *testing.T) {
	_, err := New(Options{EnvName: "staging"})
	if !xerrors.Is(err, xerrors.Config) {
		t.Fatalf("error = %v, want config error", err)
	}

	s, err := New(Options{})
	if err != nil {
		t.Fatalf("New() with default environment error = %v", err)
	}
	if s.URLs() != environment.Production {
		t.Fatalf("urls = %+v, want production", s.URLs())
	}
}

func TestRunQueryRejectsEmptyText(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := s.RunQuery(context.Background(), "", "", results.FormatTable); !xerrors.Is(err, xerrors.Query) {
		t.Fatalf("error = %v, want query error", err)
	}
}
