package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column in the database. The json
// tags are omitted here because these structs are primarily used
// internally by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// TokenVersion participates in the confirmation-code protocol: every
// mutation of the user row bumps it, and a confirmation code is only
// valid while the version it was issued against still matches.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique handle, at most 150 characters.
//  Email        – unique email address, at most 255 characters.
//  Role         – role name ("user", "moderator" or "admin").
//  IsSuperuser  – grants admin rights regardless of Role.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  Bio          – optional free-form profile text.
//  TokenVersion – monotonically increasing state version.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	Role         string    // users.role
	IsSuperuser  bool      // users.is_superuser
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Bio          string    // users.bio
	TokenVersion uint64    // users.token_version
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// ConfirmationCode models a row in the `confirmation_codes` table.  The
// plain code is never stored; only its bcrypt hash.  BoundVersion pins
// the user's TokenVersion at issue time, ExpiresAt bounds the lifetime
// and UsedAt marks single-use consumption.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – owner of the code.
//  CodeHash     – bcrypt hash of the code value.
//  BoundVersion – users.token_version at the moment of issue.
//  ExpiresAt    – expiration timestamp of the code.
//  UsedAt       – when the code was exchanged (null while pending).
//  CreatedAt    – timestamp of creation.
type ConfirmationCode struct {
	ID           uint64     // confirmation_codes.id
	UserID       uint64     // confirmation_codes.user_id
	CodeHash     string     // confirmation_codes.code_hash
	BoundVersion uint64     // confirmation_codes.bound_version
	ExpiresAt    time.Time  // confirmation_codes.expires_at
	UsedAt       *time.Time // confirmation_codes.used_at (nullable)
	CreatedAt    time.Time  // confirmation_codes.created_at
}

const (
	// UsernameMaxLen and EmailMaxLen cap identity fields at the boundary
	// before any row is written.
	UsernameMaxLen = 150
	EmailMaxLen    = 255

	// ReservedUsername collides with the /users/me route and can never be
	// registered.
	ReservedUsername = "me"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username must be at most 150 characters")
	ErrUsernameReserved = errors.New("username 'me' is reserved")
	ErrUsernamePattern  = errors.New("username may contain only letters, digits and .@+-_")
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailTooLong     = errors.New("email must be at most 255 characters")
	ErrEmailInvalid     = errors.New("email format is invalid")
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9.@+_-]+$`)
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateUsername checks the username against the allowed pattern, the
// length cap and the reserved literal. It is applied on signup, on
// profile edits and on admin-side user writes alike.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if len(username) > UsernameMaxLen {
		return ErrUsernameTooLong
	}
	if username == ReservedUsername {
		return ErrUsernameReserved
	}
	if !usernameRe.MatchString(username) {
		return ErrUsernamePattern
	}
	return nil
}

// ValidateEmail checks basic shape and length. Email addresses are
// normalized to lower case before storage.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > EmailMaxLen {
		return ErrEmailTooLong
	}
	if !emailRe.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address so unique lookups
// behave consistently.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
