package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{New(Config, "environment not found: dev"), "config: environment not found: dev"},
		{Newf(Tenant, "tenant id required for identity type %q", "partner"), `tenant: tenant id required for identity type "partner"`},
		{Wrap(Transport, "query polling interrupted", context.Canceled), "transport: query polling interrupted: context canceled"},
		{HTTP(Query, "failed to run query", 400, []byte("bad")), "query: failed to run query"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestKindOfFollowsChain(t *testing.T) {
	inner := Wrap(RetryExhausted, "query did not finish", New(Decode, "status response missing status"))
	outer := fmt.Errorf("running the query: %w", inner)

	if got := KindOf(outer); got != RetryExhausted {
		t.Fatalf("KindOf() = %q, want %q", got, RetryExhausted)
	}
	if !Is(outer, RetryExhausted) || Is(outer, Auth) {
		t.Fatal("Is() did not match the outermost kind")
	}
	if KindOf(stderrors.New("plain")) != "" || Is(nil, Auth) {
		t.Fatal("plain and nil errors must have no kind")
	}
	var e *E
	if !stderrors.As(outer, &e) || e.Message != "query did not finish" {
		t.Fatalf("errors.As() = %v", e)
	}
	if !stderrors.Is(Wrap(Transport, "x", context.DeadlineExceeded), context.DeadlineExceeded) {
		t.Fatal("Unwrap() lost the cause")
	}
}
