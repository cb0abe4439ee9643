package core

import "strings"

// Role is the single discriminant the dashboard dispatches on.
// Authentication and role assignment happen upstream; this service only
// reads the outcome.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleDonor          Role = "DONOR"
	RoleVolunteer      Role = "VOLUNTEER"
	RoleCaseWorker     Role = "CASE_WORKER"
	RoleShelterPartner Role = "SHELTER_PARTNER"

	// RoleUnrecognized covers empty, unknown and not-yet-configured roles.
	// It is a valid terminal state, not an error.
	RoleUnrecognized Role = "UNRECOGNIZED"
)

// ParseRole maps an arbitrary role attribute to a known Role, falling back
// to RoleUnrecognized. It never fails.
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleDonor:
		return RoleDonor
	case RoleVolunteer:
		return RoleVolunteer
	case RoleCaseWorker:
		return RoleCaseWorker
	case RoleShelterPartner:
		return RoleShelterPartner
	default:
		return RoleUnrecognized
	}
}

// Identity is the authenticated principal as relayed by the gateway.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	Role        Role   `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`

	// DonorID links the account to its donor record when the user has one.
	DonorID string `json:"donor_id"`
}

// EffectiveRole applies the superuser override: a superuser always lands on
// the admin view regardless of the role attribute.
func (id Identity) EffectiveRole() Role {
	if id.IsSuperuser {
		return RoleAdmin
	}
	return ParseRole(string(id.Role))
}

// DisplayName returns the greeting name with a friendly fallback.
func (id Identity) DisplayName() string {
	return OrDefault(id.FirstName, "Friend")
}
