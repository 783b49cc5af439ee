// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth exchanges client credentials for a bearer token and resolves the identity
// behind it. Tokens are held by the caller for one session only; nothing here refreshes
// or persists them.
package auth

import (
	"context"
	"log/slog"

	"xdrquery/cli/internal/backend"
	"xdrquery/cli/internal/environment"
	"xdrquery/cli/internal/logging"
	"xdrquery/cli/internal/model"
)

// Service centralizes authentication-related operations against the identity service
// of one environment.
type Service struct {
	be   backend.API
	urls environment.URLs
	log  *slog.Logger
}

// NewService constructs an auth Service for the resolved environment URLs.
func NewService(be backend.API, urls environment.URLs, log *slog.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{be: be, urls: urls, log: log}
}

// GenerateToken performs the client-credentials grant and returns the access token.
func (s *Service) GenerateToken(ctx context.Context, creds model.Credentials) (string, error) {
	s.log.Debug("requesting token", "url", s.urls.TokenURL, "client_id", creds.ClientID)
	token, err := s.be.IssueToken(ctx, s.urls.TokenURL, creds)
	if err != nil {
		return "", err
	}
	s.log.Info("authenticated with client credentials")
	return token, nil
}

// Identity resolves the identity that token belongs to.
func (s *Service) Identity(ctx context.Context, token string) (model.Identity, error) {
	id, err := s.be.WhoAmI(ctx, s.urls.WhoamiURL, token)
	if err != nil {
		return model.Identity{}, err
	}
	s.log.Debug("identity resolved", "id", id.ID, "id_type", id.IDType, "data_region", id.APIHosts.DataRegion)
	return id, nil
}

// Authenticate runs GenerateToken followed by Identity.
func (s *Service) Authenticate(ctx context.Context, creds model.Credentials) (string, model.Identity, error) {
	token, err := s.GenerateToken(ctx, creds)
	if err != nil {
		return "", model.Identity{}, err
	}
	id, err := s.Identity(ctx, token)
	if err != nil {
		return "", model.Identity{}, err
	}
	return token, id, nil
}
