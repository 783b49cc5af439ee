// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure raised by the query client is an *E carrying a machine-readable Kind
// and a human-readable message, so callers that only want text can call Error() while
// diagnostics can branch on the kind.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Transport indicates a network-level failure (DNS, reset, timeout, TLS).
	Transport Kind = "transport"
	// Config indicates an invalid or missing environment configuration.
	Config Kind = "config"
	// Auth indicates a failed token exchange or identity lookup.
	Auth Kind = "auth"
	// Tenant indicates the requested tenant cannot be used with the authenticated identity.
	Tenant Kind = "tenant"
	// Query indicates the query service rejected a submission or result request.
	Query Kind = "query"
	// Decode indicates a response body that is not the expected shape.
	Decode Kind = "decode"
	// RetryExhausted indicates the execution did not finish within the polling budget.
	RetryExhausted Kind = "retry_exhausted"
	// IO indicates a local file could not be read or written.
	IO Kind = "io"
)

// E wraps an error with kind and human-friendly message.
// Status and Body are set when the failure came from an HTTP response.
type E struct {
	Kind    Kind
	Message string
	Status  int
	Body    []byte
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Newf is New with a format string.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// HTTP builds an error for an unexpected response status.
func HTTP(kind Kind, msg string, status int, body []byte) *E {
	return &E{Kind: kind, Message: msg, Status: status, Body: body}
}

// KindOf returns the kind of the first *E in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
