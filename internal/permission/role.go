// Package permission implements the role model and the request
// authorization policies. Everything here is a pure function over a
// Principal: no I/O, no framework types, and denials are ordinary false
// results that the HTTP layer translates into status codes.
package permission

// Role is the closed set of privilege tiers.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a stored role string onto the closed set. Unknown
// values collapse to RoleUser so a corrupted or legacy row can never
// grant elevated access.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleModerator:
		return RoleModerator
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Principal is the caller identity a request carries through the
// handlers. The zero value is the anonymous caller.
type Principal struct {
	ID            uint64
	Username      string
	Role          Role
	Superuser     bool
	Authenticated bool
}

// Anonymous is the principal attached to requests without a valid
// bearer token.
var Anonymous = Principal{Role: RoleUser}

// IsAdmin reports whether the principal has admin rights. The superuser
// flag counts as admin everywhere, regardless of the stored role.
func IsAdmin(p Principal) bool {
	return p.Role == RoleAdmin || p.Superuser
}

// IsModerator reports whether the principal's role is moderator. Note
// that this is a role check, not a privilege check: an admin is not a
// moderator.
func IsModerator(p Principal) bool {
	return p.Role == RoleModerator
}

// IsPlainUser reports whether the principal's role is the ordinary user
// tier.
func IsPlainUser(p Principal) bool {
	return p.Role == RoleUser
}
