// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"net/http"

	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/model"
	"xdrquery/cli/internal/transport"
)

// whoamiBody mirrors the identity response with presence-tracking pointers.
type whoamiBody struct {
	ID       *string `json:"id"`
	IDType   *string `json:"idType"`
	APIHosts *struct {
		Global     string  `json:"global"`
		DataRegion *string `json:"dataRegion"`
	} `json:"apiHosts"`
}

// WhoAmI calls GET <whoamiURL> with Authorization header.
// The response must carry apiHosts.dataRegion, id and idType; every later call
// depends on them, so a missing field fails here with the field named.
func (h *HTTP) WhoAmI(ctx context.Context, whoamiURL, token string) (model.Identity, error) {
	if whoamiURL == "" {
		return model.Identity{}, xerrors.New(xerrors.Config, "no valid whoami url found for environment")
	}
	hdr := make(http.Header)
	setBearer(hdr, token)

	resp, err := h.sender.Send(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    whoamiURL,
		Header: hdr,
	})
	if err != nil {
		return model.Identity{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return model.Identity{}, xerrors.HTTP(xerrors.Auth, fmt.Sprintf("whoami failed with status %d", resp.StatusCode), resp.StatusCode, resp.Body)
	}

	var body whoamiBody
	if err := decodeJSON(resp.Body, &body); err != nil {
		return model.Identity{}, xerrors.Wrap(xerrors.Auth, "malformed whoami response", err)
	}
	switch {
	case body.APIHosts == nil:
		return model.Identity{}, xerrors.New(xerrors.Auth, "whoami response missing apiHosts")
	case body.APIHosts.DataRegion == nil:
		return model.Identity{}, xerrors.New(xerrors.Auth, "whoami response missing apiHosts.dataRegion")
	case body.ID == nil:
		return model.Identity{}, xerrors.New(xerrors.Auth, "whoami response missing id")
	case body.IDType == nil:
		return model.Identity{}, xerrors.New(xerrors.Auth, "whoami response missing idType")
	}

	return model.Identity{
		ID:     *body.ID,
		IDType: *body.IDType,
		APIHosts: model.APIHosts{
			Global:     body.APIHosts.Global,
			DataRegion: *body.APIHosts.DataRegion,
		},
	}, nil
}
