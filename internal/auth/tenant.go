package auth

import (
	xerrors "xdrquery/cli/internal/errors"
	"xdrquery/cli/internal/model"
)

// ResolveTenant decides which tenant a query runs against.
//
// A tenant identity can only query itself: an empty supplied id defaults to the identity,
// and any other id is rejected. Partner and organization identities must name a tenant.
func ResolveTenant(id model.Identity, supplied string) (string, error) {
	if id.IDType == model.IDTypeTenant {
		if supplied == "" {
			return id.ID, nil
		}
		if supplied != id.ID {
			return "", xerrors.New(xerrors.Tenant, "tenant id does not match authenticated identity")
		}
		return supplied, nil
	}
	if supplied == "" {
		return "", xerrors.Newf(xerrors.Tenant, "tenant id required for identity type %q", id.IDType)
	}
	return supplied, nil
}
