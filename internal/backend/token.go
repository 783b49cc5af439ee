// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/model"
	"xdrquery/cli/internal/transport"
)

// tokenForm builds the client-credentials form body in the order the identity service documents.
func tokenForm(creds model.Credentials) string {
	return "grant_type=client_credentials" +
		"&client_id=" + url.QueryEscape(creds.ClientID) +
		"&client_secret=" + url.QueryEscape(creds.ClientSecret) +
		"&scope=token"
}

// IssueToken calls POST <tokenURL> with a form-encoded client-credentials grant.
// Any status other than 200 is an auth error carrying the status; a 200 response
// without access_token is reported as a malformed token response.
func (h *HTTP) IssueToken(ctx context.Context, tokenURL string, creds model.Credentials) (string, error) {
	if tokenURL == "" {
		return "", xerrors.New(xerrors.Config, "no valid token url found for environment")
	}
	hdr := make(http.Header)
	hdr.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.sender.Send(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    tokenURL,
		Body:   []byte(tokenForm(creds)),
		Header: hdr,
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		h.log.Debug("token request rejected", "status", resp.StatusCode, "body", bodyExcerpt(resp.Body))
		return "", xerrors.HTTP(xerrors.Auth, fmt.Sprintf("get token failed with status %d", resp.StatusCode), resp.StatusCode, resp.Body)
	}

	var out struct {
		AccessToken *string `json:"access_token"`
	}
	if err := decodeJSON(resp.Body, &out); err != nil || out.AccessToken == nil {
		return "", xerrors.New(xerrors.Auth, "malformed token response: access_token missing")
	}
	return *out.AccessToken, nil
}
