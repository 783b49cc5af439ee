// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"

	xerrors "xdrquery/cli/internal/errors"
)

var kindHints = map[xerrors.Kind]string{
	xerrors.Auth:           "Check the client id and secret, or run 'xdrq login' again.",
	xerrors.Tenant:         "Pass the tenant to query with -t/--tenant-id.",
	xerrors.Config:         "Check --config and --environment; 'xdrq envs' lists the configured environments.",
	xerrors.RetryExhausted: "The query did not finish in time. Try again later or narrow the query.",
}

// PresentError formats an error for user display with masking.
// Errors with a known kind get a one-line hint on how to fix them.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", context, Mask(err.Error()))
	if hint, ok := kindHints[xerrors.KindOf(err)]; ok {
		msg += "\n" + hint
	}
	return msg
}
