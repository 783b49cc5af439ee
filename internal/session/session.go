// Package session ties the query pipeline together for one set of credentials:
// authenticate once, then run any number of queries against the identity's data region.
//
// A Session keeps its token and identity in memory only. It is meant for one goroutine;
// run concurrent queries on separate sessions.
package session

import (
	"context"
	"log/slog"
	"time"

	"xdrquery/cli/internal/auth"
	"xdrquery/cli/internal/backend"
	"xdrquery/cli/internal/environment"
	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/logging"
	"xdrquery/cli/internal/model"
	"xdrquery/cli/internal/query"
	"xdrquery/cli/internal/results"
	"xdrquery/cli/internal/transport"
)

// Options configures a Session.
type Options struct {
	// Environments is the optional environment configuration; nil selects production only.
	Environments *environment.Config
	EnvName      string
	Credentials  model.Credentials
	// Transport defaults to transport.New with its default timeout.
	Transport transport.Sender
	Logger    *slog.Logger
	// Sleep and Policy tune polling; zero values keep query defaults.
	Sleep  query.SleepFunc
	Policy query.Policy
}

// Result is a rendered query outcome.
type Result struct {
	Output      string
	Succeeded   bool
	ExecutionID string
}

// Session holds the state of one authenticated client.
type Session struct {
	opts Options
	urls environment.URLs
	api  backend.API
	auth *auth.Service
	log  *slog.Logger

	token    string
	identity model.Identity
	opened   bool
}

// New validates the environment name and prepares a session. No request is made until Open.
func New(opts Options) (*Session, error) {
	urls, err := environment.Resolve(opts.Environments, opts.EnvName)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	sender := opts.Transport
	if sender == nil {
		sender = transport.New(transport.WithLogger(log))
	}
	api := backend.New(sender, log)
	return &Session{
		opts: opts,
		urls: urls,
		api:  api,
		auth: auth.NewService(api, urls, log),
		log:  log,
	}, nil
}

// URLs returns the resolved identity service URLs.
func (s *Session) URLs() environment.URLs { return s.urls }

// Open obtains a token and resolves the identity behind it.
func (s *Session) Open(ctx context.Context) error {
	token, id, err := s.auth.Authenticate(ctx, s.opts.Credentials)
	if err != nil {
		return err
	}
	s.token, s.identity, s.opened = token, id, true
	return nil
}

// Identity returns the identity resolved by Open.
func (s *Session) Identity() (model.Identity, bool) {
	return s.identity, s.opened
}

// Execute resolves the tenant and runs text, returning the raw outcome.
// The tenant check happens before any query request is sent.
func (s *Session) Execute(ctx context.Context, text, tenantID string) (query.Outcome, error) {
	if !s.opened {
		if err := s.Open(ctx); err != nil {
			return query.Outcome{}, err
		}
	}
	tenant, err := auth.ResolveTenant(s.identity, tenantID)
	if err != nil {
		return query.Outcome{}, err
	}

	opts := []query.Option{query.WithLogger(s.log), query.WithPolicy(s.opts.Policy)}
	if s.opts.Sleep != nil {
		opts = append(opts, query.WithSleep(s.opts.Sleep))
	}
	qc := query.New(s.api, backend.Target{
		BaseURL:  s.identity.APIHosts.DataRegion,
		Token:    s.token,
		TenantID: tenant,
	}, opts...)

	started := time.Now()
	out, err := qc.Run(ctx, text)
	if err != nil {
		return out, err
	}
	s.log.Debug("query completed", "execution_id", out.ExecutionID, "elapsed", time.Since(started))
	return out, nil
}

// RunQuery executes text for tenantID and renders the results in format.
func (s *Session) RunQuery(ctx context.Context, text, tenantID string, format results.Format) (Result, error) {
	if text == "" {
		return Result{}, xerrors.New(xerrors.Query, "query text is empty")
	}
	out, err := s.Execute(ctx, text, tenantID)
	if err != nil {
		return Result{ExecutionID: out.ExecutionID}, err
	}
	rendered, err := results.Render(out.Results, format)
	if err != nil {
		return Result{ExecutionID: out.ExecutionID, Succeeded: out.Succeeded}, err
	}
	return Result{Output: rendered, Succeeded: out.Succeeded, ExecutionID: out.ExecutionID}, nil
}
