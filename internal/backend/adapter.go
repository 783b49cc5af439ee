// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the
// identity service and the XDR query service.
// It defines the API contract for token exchange, identity lookup and query execution.
// Every response is decoded into a typed value; a missing required field is reported
// as an errors.Decode or errors.Auth error naming the field.
package backend

import (
	"context"

	"xdrquery/cli/internal/model"
)

// Target addresses the query service for one tenant.
type Target struct {
	// BaseURL is the identity's data region, e.g. "https://api-eu01.central.sophos.com".
	BaseURL  string
	Token    string
	TenantID string
}

// API defines backend operations the query client depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	// IssueToken exchanges client credentials for a bearer token at tokenURL.
	IssueToken(ctx context.Context, tokenURL string, creds model.Credentials) (string, error)
	// WhoAmI resolves the identity behind token at whoamiURL.
	WhoAmI(ctx context.Context, whoamiURL, token string) (model.Identity, error)
	// StartRun submits a query and returns the execution id.
	StartRun(ctx context.Context, t Target, sub model.Submission) (string, error)
	// GetExecution reads the current state of an execution.
	GetExecution(ctx context.Context, t Target, id string) (model.Execution, error)
	// GetResults reads the result set of a finished execution.
	GetResults(ctx context.Context, t Target, id string) (model.ResultSet, error)
}
