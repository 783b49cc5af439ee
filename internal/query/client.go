// Package query runs ad-hoc queries against the XDR query service: submit, poll until the
// execution finishes, then fetch the result set.
//
// Polling uses a fixed attempt budget with a fixed interval. Every failed attempt is retried,
// whether the execution is still running or the status call itself failed; only exhausting
// the budget is terminal.
package query

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"xdrquery/cli/internal/backend"
	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/logging"
	"xdrquery/cli/internal/metrics"
	"xdrquery/cli/internal/model"
)

const (
	// DefaultAttempts is how many status calls are made before giving up.
	DefaultAttempts = 60
	// DefaultInterval separates consecutive status calls.
	DefaultInterval = time.Second

	statusFinished  = "finished"
	resultSucceeded = "succeeded"
	queryFormatSQL  = "sql"
)

// Policy bounds polling.
type Policy struct {
	Attempts int
	Interval time.Duration
}

// DefaultPolicy is 60 attempts one second apart.
var DefaultPolicy = Policy{Attempts: DefaultAttempts, Interval: DefaultInterval}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Outcome is the result of a complete run.
type Outcome struct {
	ExecutionID string
	// Succeeded is false when the execution finished with any result other than "succeeded".
	Succeeded bool
	Results   model.ResultSet
}

// Client executes queries for one tenant.
type Client struct {
	api     backend.API
	target  backend.Target
	policy  Policy
	sleep   SleepFunc
	log     *slog.Logger
	newName func() string
}

// Option configures a Client.
type Option func(*Client)

// WithPolicy overrides the polling budget. Non-positive fields keep their defaults.
func WithPolicy(p Policy) Option {
	return func(c *Client) {
		if p.Attempts > 0 {
			c.policy.Attempts = p.Attempts
		}
		if p.Interval > 0 {
			c.policy.Interval = p.Interval
		}
	}
}

// WithSleep replaces the wait between polling attempts.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithNameFunc replaces the generator of submission names.
func WithNameFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newName = fn
		}
	}
}

// New returns a Client that sends requests through api to target.
func New(api backend.API, target backend.Target, opts ...Option) *Client {
	c := &Client{
		api:     api,
		target:  target,
		policy:  DefaultPolicy,
		sleep:   Sleep,
		log:     logging.Discard(),
		newName: RandomName,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RandomName returns 128 random bits in decimal form.
func RandomName() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return new(big.Int).SetBytes(b[:]).String()
}

// Submit posts text as a new ad-hoc SQL query and returns the execution id.
func (c *Client) Submit(ctx context.Context, text string) (string, error) {
	sub := model.Submission{
		TenantIDs:   []string{c.target.TenantID},
		DeviceIDs:   []string{},
		QueryFormat: queryFormatSQL,
		AdHocQuery: model.AdHocQuery{
			Name:     c.newName(),
			Template: text,
		},
	}
	c.log.Debug("running query", "query", text)
	return c.api.StartRun(ctx, c.target, sub)
}

// Wait polls the execution until it finishes and reports whether it succeeded.
// When the budget runs out the error is errors.RetryExhausted wrapping the last attempt's failure.
func (c *Client) Wait(ctx context.Context, id string) (bool, error) {
	var lastErr error
	for attempt := 1; attempt <= c.policy.Attempts; attempt++ {
		ok, err := c.poll(ctx, id)
		if err == nil {
			metrics.ObservePollAttempts(attempt)
			c.log.Info("query finished", "execution_id", id, "attempts", attempt, "succeeded", ok)
			return ok, nil
		}
		lastErr = err
		c.log.Debug("query not ready", "execution_id", id, "attempt", attempt, "error", err)

		if attempt == c.policy.Attempts {
			break
		}
		if err := c.sleep(ctx, c.policy.Interval); err != nil {
			metrics.ObservePollAttempts(attempt)
			return false, xerrors.Wrap(xerrors.Transport, "query polling interrupted", err)
		}
	}
	metrics.ObservePollAttempts(c.policy.Attempts)
	return false, xerrors.Wrap(xerrors.RetryExhausted,
		fmt.Sprintf("query %s did not finish after %d attempts", id, c.policy.Attempts), lastErr)
}

// poll makes one status call. Any error means the attempt should be retried.
func (c *Client) poll(ctx context.Context, id string) (bool, error) {
	ex, err := c.api.GetExecution(ctx, c.target, id)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(ex.Status, statusFinished) {
		return false, xerrors.Newf(xerrors.Query, "%s is not finished", ex.Status)
	}
	if ex.Result == "" {
		return false, xerrors.New(xerrors.Decode, "finished execution missing result")
	}
	return strings.EqualFold(ex.Result, resultSucceeded), nil
}

// Fetch retrieves the result set of execution id.
func (c *Client) Fetch(ctx context.Context, id string) (model.ResultSet, error) {
	return c.api.GetResults(ctx, c.target, id)
}

// Run submits text, waits for it to finish and fetches the results. A run that finished
// without succeeding is logged and its results are still fetched.
func (c *Client) Run(ctx context.Context, text string) (Outcome, error) {
	out, err := c.run(ctx, text)
	switch {
	case err != nil:
		metrics.IncQueryRun(metrics.OutcomeError)
	case out.Succeeded:
		metrics.IncQueryRun(metrics.OutcomeSucceeded)
	default:
		metrics.IncQueryRun(metrics.OutcomeFailed)
	}
	return out, err
}

func (c *Client) run(ctx context.Context, text string) (Outcome, error) {
	id, err := c.Submit(ctx, text)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{ExecutionID: id}

	out.Succeeded, err = c.Wait(ctx, id)
	if err != nil {
		return out, err
	}
	if !out.Succeeded {
		c.log.Warn("query failed", "execution_id", id)
	}

	out.Results, err = c.Fetch(ctx, id)
	if err != nil {
		return out, err
	}
	return out, nil
}
