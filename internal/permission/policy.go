package permission

// Verb is the coarse request class policies decide over. The HTTP layer
// maps GET/HEAD/OPTIONS to Safe and everything else to Unsafe.
type Verb int

const (
	Safe Verb = iota
	Unsafe
)

// VerbOf classifies an HTTP method.
func VerbOf(method string) Verb {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return Safe
	default:
		return Unsafe
	}
}

// AuthorOrModerator is the collection-level gate for reviews and
// comments: reads are public, writes require any authenticated caller.
// Whether the caller may touch a particular object is decided later by
// CanTouchObject once the object is loaded.
func AuthorOrModerator(p Principal, v Verb) bool {
	return v == Safe || p.Authenticated
}

// StaffWrite is the collection-level gate for titles, genres and
// categories: reads are public, mutations are reserved for moderators
// and admins. A plain user is denied even when authenticated.
func StaffWrite(p Principal, v Verb) bool {
	return v == Safe || (p.Authenticated && (IsAdmin(p) || IsModerator(p)))
}

// AdminOnly gates user management. There is no safe-verb escape hatch:
// even listing users requires admin rights.
func AdminOnly(p Principal) bool {
	return p.Authenticated && IsAdmin(p)
}

// ModeratorLockout blocks moderators from the slug DELETE on
// categories and genres while letting admins through: moderators
// curate reviews, they do not reshape the catalog taxonomy. Always
// combined with StaffWrite on a route, so in isolation this predicate
// passing a plain authenticated user never materializes.
func ModeratorLockout(p Principal, v Verb) bool {
	return v == Safe || (p.Authenticated && !IsModerator(p))
}

// CanTouchObject is the object-level check for reviews and comments:
// reads always pass; writes pass for the object's author, for admins
// and for moderators.
func CanTouchObject(p Principal, v Verb, authorID uint64) bool {
	if v == Safe {
		return true
	}
	if !p.Authenticated {
		return false
	}
	return p.ID == authorID || IsAdmin(p) || IsModerator(p)
}
