package http

import (
	"net/http"
	"strings"

	"kindra/internal/core"
)

// Identity headers injected by the gateway after it authenticates the
// caller. This service never sees credentials, only the verified claims.
const (
	HeaderUserID        = "X-User-Id"
	HeaderUserEmail     = "X-User-Email"
	HeaderUserRole      = "X-User-Role"
	HeaderUserName      = "X-User-Name"
	HeaderUserSuperuser = "X-User-Superuser"
	HeaderDonorID       = "X-Donor-Id"
)

// identityFromRequest builds the caller's identity from gateway headers.
// Absent or malformed headers degrade to the anonymous identity, which
// resolves to the placeholder view; they are never an error.
func identityFromRequest(r *http.Request) core.Identity {
	return core.Identity{
		ID:          strings.TrimSpace(r.Header.Get(HeaderUserID)),
		Email:       strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
		FirstName:   strings.TrimSpace(r.Header.Get(HeaderUserName)),
		Role:        core.ParseRole(r.Header.Get(HeaderUserRole)),
		IsSuperuser: strings.EqualFold(strings.TrimSpace(r.Header.Get(HeaderUserSuperuser)), "true"),
		DonorID:     strings.TrimSpace(r.Header.Get(HeaderDonorID)),
	}
}
