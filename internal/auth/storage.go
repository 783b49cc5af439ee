// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"errors"

	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/keychain"
	"xdrquery/cli/internal/model"
)

// Environment variables consulted when a credential flag is not set.
const (
	EnvClientID     = "XDRQ_CLIENT_ID"
	EnvClientSecret = "XDRQ_CLIENT_SECRET"
)

// CredentialStore loads credentials saved by a previous login.
type CredentialStore interface {
	LoadClientCredentials() (model.Credentials, error)
}

// Credential sources, reported for diagnostics.
const (
	SourceFlags    = "flags"
	SourceEnv      = "environment"
	SourceKeychain = "keychain"
)

// ResolveCredentials fills each credential field from flags, then the environment,
// then store. store may be nil. It returns the source of the client secret.
func ResolveCredentials(flags model.Credentials, getenv func(string) string, store CredentialStore) (model.Credentials, string, error) {
	creds := flags
	source := SourceFlags
	if getenv != nil {
		if creds.ClientID == "" {
			creds.ClientID = getenv(EnvClientID)
		}
		if creds.ClientSecret == "" {
			if v := getenv(EnvClientSecret); v != "" {
				creds.ClientSecret = v
				source = SourceEnv
			}
		}
	}

	if (creds.ClientID == "" || creds.ClientSecret == "") && store != nil {
		saved, err := store.LoadClientCredentials()
		if err != nil && !errors.Is(err, keychain.ErrNotFound) {
			return model.Credentials{}, "", xerrors.Wrap(xerrors.Auth, "read stored credentials", err)
		}
		if err == nil {
			if creds.ClientID == "" {
				creds.ClientID = saved.ClientID
			}
			if creds.ClientSecret == "" {
				creds.ClientSecret = saved.ClientSecret
				source = SourceKeychain
			}
		}
	}

	if creds.ClientID == "" || creds.ClientSecret == "" {
		return model.Credentials{}, "", xerrors.New(xerrors.Auth, "client id and client secret are required (flags, "+EnvClientID+"/"+EnvClientSecret+", or xdrq login)")
	}
	return creds, source, nil
}
