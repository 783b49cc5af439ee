package cmd

import (
	"context"
	"strings"
	"testing"

	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/results"
	"xdrquery/cli/internal/session"
)

type recordingRunner struct {
	queries []string
	tenants []string
	formats []results.Format
	err     error
}

func (r *recordingRunner) RunQuery(_ context.Context, text, tenantID string, format results.Format) (session.Result, error) {
	r.queries = append(r.queries, text)
	r.tenants = append(r.tenants, tenantID)
	r.formats = append(r.formats, format)
	if r.err != nil {
		return session.Result{}, r.err
	}
	return session.Result{Output: "OUT:" + text, Succeeded: true, ExecutionID: "exec-1"}, nil
}

func newTestShell(r *recordingRunner) (*shell, *strings.Builder) {
	var out strings.Builder
	sh := newShell(nil, results.FormatTable, "", &out)
	sh.run = r
	return sh, &out
}

func TestShellFeedMultiLine(t *testing.T) {
	sh, _ := newTestShell(&recordingRunner{})

	if stmt, _ := sh.feed("SELECT meta_hostname"); stmt != "" {
		t.Fatalf("premature statement %q", stmt)
	}
	if p, _ := sh.prefix(); p != "   ...> " {
		t.Fatalf("prefix = %q, want continuation", p)
	}
	stmt, _ := sh.feed("  FROM xdr_data;  ")
	if stmt != "SELECT meta_hostname\nFROM xdr_data" {
		t.Fatalf("statement = %q", stmt)
	}
	if p, _ := sh.prefix(); p != "xdrq> " {
		t.Fatalf("prefix = %q after statement", p)
	}
}

func TestShellDotCommands(t *testing.T) {
	r := &recordingRunner{}
	sh, out := newTestShell(r)

	if _, cmd := sh.feed(".format json"); !cmd {
		t.Fatal(".format not treated as a command")
	}
	if sh.format != results.FormatJSON {
		t.Fatalf("format = %q", sh.format)
	}
	sh.feed(".tenant t-42")
	if sh.tenant != "t-42" {
		t.Fatalf("tenant = %q", sh.tenant)
	}
	sh.feed(".format xml")
	if !strings.Contains(out.String(), "Usage: .format") || sh.format != results.FormatJSON {
		t.Fatalf("bad format accepted; out=%q format=%q", out.String(), sh.format)
	}

	sh.execute(context.Background(), "select 1;")
	if len(r.queries) != 1 || r.queries[0] != "select 1" || r.tenants[0] != "t-42" || r.formats[0] != results.FormatJSON {
		t.Fatalf("runner saw %v %v %v", r.queries, r.tenants, r.formats)
	}
	if !strings.Contains(out.String(), "OUT:select 1") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestShellErrorsDoNotStopTheShell(t *testing.T) {
	r := &recordingRunner{err: xerrors.New(xerrors.Tenant, "tenant id required")}
	sh, _ := newTestShell(r)

	sh.execute(context.Background(), "select 1;")
	sh.execute(context.Background(), "select 2;")
	if len(r.queries) != 2 {
		t.Fatalf("queries = %v", r.queries)
	}
	if len(sh.history) != 2 || sh.history[1] != "select 2;" {
		t.Fatalf("history = %v", sh.history)
	}
}

func TestShellRunPiped(t *testing.T) {
	r := &recordingRunner{}
	sh, _ := newTestShell(r)

	in := "select a\nfrom t;\n\n.format json\nselect b;\nexit\nselect c;\n"
	if err := sh.runPiped(context.Background(), strings.NewReader(in)); err != nil {
		t.Fatalf("runPiped() error = %v", err)
	}
	want := []string{"select a\nfrom t", "select b"}
	if strings.Join(r.queries, "|") != strings.Join(want, "|") {
		t.Fatalf("queries = %q, want %q", r.queries, want)
	}
	if r.formats[1] != results.FormatJSON {
		t.Fatalf("formats = %v", r.formats)
	}
}

func TestIsExitCommand(t *testing.T) {
	for _, in := range []string{"exit", " QUIT ", `\q`, ".exit"} {
		if !isExitCommand(in) {
			t.Errorf("isExitCommand(%q) = false", in)
		}
	}
	if isExitCommand("select exit") {
		t.Error("statement treated as exit")
	}
}
