// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrReviewExists indicates the one-review-per-title rule was
// hit, while ErrCodeInvalid signals a confirmation code that is wrong,
// expired, already used, or issued against an older user state.
package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update collides with an
// existing unique value, such as a duplicate category slug. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrUsernameTaken is returned when the requested username already
// belongs to a different user.
var ErrUsernameTaken = errors.New("username already exists")

// ErrEmailTaken is returned when the requested email already belongs to
// a different user.
var ErrEmailTaken = errors.New("email already exists")

// ErrReviewExists is returned when an author already holds a review for
// the title. The underlying unique index makes this check atomic under
// concurrent creations.
var ErrReviewExists = errors.New("review already exists for this author and title")

// ErrCodeInvalid is returned when a confirmation code cannot be
// exchanged. Handlers should translate this into an HTTP 400 response,
// distinct from an authentication failure.
var ErrCodeInvalid = errors.New("confirmation code is invalid")
