package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/model"
	"xdrquery/cli/internal/transport"
)

// RunsPath is the query execution collection under a data region.
const RunsPath = "xdr-query/v1/queries/runs"

// StartRun calls POST <dataRegion>/xdr-query/v1/queries/runs.
// Only 201 Created is accepted; the response must carry the execution id.
func (h *HTTP) StartRun(ctx context.Context, t Target, sub model.Submission) (string, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return "", xerrors.Wrap(xerrors.Query, "encode submission", err)
	}
	runsURL := joinURL(t.BaseURL, RunsPath)
	h.log.Info("submitting query", "url", runsURL)
	h.log.Debug("query submission", "payload", string(payload))

	resp, err := h.sender.Send(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    runsURL,
		Body:   payload,
		Header: queryHeaders(t),
	})
	if err != nil {
		return "", err
	}
	if err := requireStatus(resp, http.StatusCreated, xerrors.Query, "failed to run query"); err != nil {
		h.log.Error("query submission rejected", "status", resp.StatusCode, "body", bodyExcerpt(resp.Body))
		return "", err
	}

	var out struct {
		ID *string `json:"id"`
	}
	if err := decodeJSON(resp.Body, &out); err != nil {
		return "", xerrors.Wrap(xerrors.Decode, "malformed run response", err)
	}
	if out.ID == nil || *out.ID == "" {
		return "", xerrors.HTTP(xerrors.Decode, "run response missing id", resp.StatusCode, resp.Body)
	}
	h.log.Debug("query submitted", "execution_id", *out.ID)
	return *out.ID, nil
}

// GetExecution calls GET <dataRegion>/xdr-query/v1/queries/runs/<id>.
// The response must carry status; result is only meaningful once finished.
func (h *HTTP) GetExecution(ctx context.Context, t Target, id string) (model.Execution, error) {
	statusURL := joinURL(t.BaseURL, RunsPath, id)
	h.log.Debug("checking query status", "url", statusURL)

	resp, err := h.sender.Send(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    statusURL,
		Header: queryHeaders(t),
	})
	if err != nil {
		return model.Execution{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return model.Execution{}, xerrors.HTTP(xerrors.Query, fmt.Sprintf("query status failed with status %d", resp.StatusCode), resp.StatusCode, resp.Body)
	}

	var out struct {
		ID     string  `json:"id"`
		Status *string `json:"status"`
		Result string  `json:"result"`
	}
	if err := decodeJSON(resp.Body, &out); err != nil {
		return model.Execution{}, xerrors.Wrap(xerrors.Decode, "malformed status response", err)
	}
	if out.Status == nil {
		return model.Execution{}, xerrors.HTTP(xerrors.Decode, "status response missing status", resp.StatusCode, resp.Body)
	}
	if out.ID == "" {
		out.ID = id
	}
	h.log.Debug("query status response", "body", bodyExcerpt(resp.Body))
	return model.Execution{ID: out.ID, Status: *out.Status, Result: out.Result}, nil
}

// GetResults calls GET <dataRegion>/xdr-query/v1/queries/runs/<id>/results.
// A non-200 status becomes a query error naming the status and, when the body is JSON
// with a message field, that message.
func (h *HTTP) GetResults(ctx context.Context, t Target, id string) (model.ResultSet, error) {
	resultsURL := joinURL(t.BaseURL, RunsPath, id, "results")
	h.log.Info("fetching query results", "url", resultsURL)

	resp, err := h.sender.Send(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    resultsURL,
		Header: queryHeaders(t),
	})
	if err != nil {
		return model.ResultSet{}, err
	}
	if resp.StatusCode != http.StatusOK {
		h.log.Error("query results failed", "status", resp.StatusCode, "body", bodyExcerpt(resp.Body))
		return model.ResultSet{}, xerrors.HTTP(xerrors.Query, resultsErrorMessage(resp), resp.StatusCode, resp.Body)
	}

	var out struct {
		Metadata *struct {
			Columns *[]model.Column `json:"columns"`
		} `json:"metadata"`
		Items *[]map[string]any `json:"items"`
	}
	if err := decodeJSON(resp.Body, &out); err != nil {
		return model.ResultSet{}, xerrors.Wrap(xerrors.Decode, "malformed results response", err)
	}
	switch {
	case out.Metadata == nil || out.Metadata.Columns == nil:
		return model.ResultSet{}, xerrors.HTTP(xerrors.Decode, "results response missing metadata.columns", resp.StatusCode, resp.Body)
	case out.Items == nil:
		return model.ResultSet{}, xerrors.HTTP(xerrors.Decode, "results response missing items", resp.StatusCode, resp.Body)
	}

	var rs model.ResultSet
	rs.Metadata.Columns = *out.Metadata.Columns
	rs.Items = *out.Items
	rs.Raw = json.RawMessage(resp.Body)
	return rs, nil
}

// resultsErrorMessage describes a failed results call. The message field is best-effort:
// a body that is not JSON leaves the status-only message.
func resultsErrorMessage(resp *transport.Response) string {
	msg := fmt.Sprintf("get result failed error code: %d", resp.StatusCode)
	var body struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Message != nil {
		msg += ", message: " + *body.Message
	}
	return msg
}
