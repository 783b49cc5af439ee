// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides utilities for secure logging and error presentation.
// It includes functions for masking sensitive information in log messages and
// formatting errors for user-friendly display while protecting credentials and secrets.
//
// The package helps ensure that client secrets and bearer tokens are not accidentally
// exposed in logs or error messages shown to users.
package logging

import "regexp"

var (
	// Also covers XDRQ_CLIENT_SECRET=... environment pairs.
	reSecret      = regexp.MustCompile(`(?i)(client_secret=|password=)([^\s&;]+)`)
	reToken       = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reJSONToken   = regexp.MustCompile(`(?i)("(?:access_token|refresh_token|id_token)"\s*:\s*")([^"]*)(")`)
	reURLUserPass = regexp.MustCompile(`(?i)(://)([^:/@\s]+):([^@\s]+)(@)`)
)

// Mask replaces sensitive values in the input string with "*".
// For URLs with embedded credentials, both username and password are masked.
func Mask(s string) string {
	out := s
	out = reSecret.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reJSONToken.ReplaceAllString(out, "$1***$3")
	out = reURLUserPass.ReplaceAllString(out, "$1*:*$4")
	return out
}
