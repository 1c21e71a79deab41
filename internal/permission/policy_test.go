package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	anon      = Anonymous
	plainUser = Principal{ID: 7, Role: RoleUser, Authenticated: true}
	moderator = Principal{ID: 8, Role: RoleModerator, Authenticated: true}
	admin     = Principal{ID: 9, Role: RoleAdmin, Authenticated: true}
	superuser = Principal{ID: 10, Role: RoleUser, Superuser: true, Authenticated: true}
)

func TestVerbOf(t *testing.T) {
	assert.Equal(t, Safe, VerbOf("GET"))
	assert.Equal(t, Safe, VerbOf("HEAD"))
	assert.Equal(t, Safe, VerbOf("OPTIONS"))
	assert.Equal(t, Unsafe, VerbOf("POST"))
	assert.Equal(t, Unsafe, VerbOf("PATCH"))
	assert.Equal(t, Unsafe, VerbOf("DELETE"))
}

func TestAuthorOrModerator(t *testing.T) {
	// Reads are open to everyone.
	assert.True(t, AuthorOrModerator(anon, Safe))

	// Writes need a session, nothing more.
	assert.False(t, AuthorOrModerator(anon, Unsafe))
	assert.True(t, AuthorOrModerator(plainUser, Unsafe))
	assert.True(t, AuthorOrModerator(moderator, Unsafe))
	assert.True(t, AuthorOrModerator(admin, Unsafe))
}

func TestStaffWrite(t *testing.T) {
	assert.True(t, StaffWrite(anon, Safe))
	assert.True(t, StaffWrite(plainUser, Safe))

	assert.False(t, StaffWrite(anon, Unsafe))
	assert.False(t, StaffWrite(plainUser, Unsafe))
	assert.True(t, StaffWrite(moderator, Unsafe))
	assert.True(t, StaffWrite(admin, Unsafe))

	// Superuser carries the user role but is still staff.
	assert.True(t, StaffWrite(superuser, Unsafe))
}

func TestAdminOnly(t *testing.T) {
	assert.False(t, AdminOnly(anon))
	assert.False(t, AdminOnly(plainUser))
	assert.False(t, AdminOnly(moderator))
	assert.True(t, AdminOnly(admin))
	assert.True(t, AdminOnly(superuser))
}

// Moderators may create and edit categories and genres but not delete
// them; admins may do both. Combined with StaffWrite on the routes this
// makes the slug DELETE admin-only for staff.
func TestModeratorSelfLockout(t *testing.T) {
	assert.True(t, ModeratorLockout(moderator, Safe))
	assert.False(t, ModeratorLockout(moderator, Unsafe))
	assert.True(t, ModeratorLockout(admin, Unsafe))
	assert.True(t, ModeratorLockout(superuser, Unsafe))
	assert.False(t, ModeratorLockout(anon, Unsafe))
}

func TestCanTouchObject(t *testing.T) {
	const authorID = 7

	assert.True(t, CanTouchObject(anon, Safe, authorID))
	assert.False(t, CanTouchObject(anon, Unsafe, authorID))

	// The author edits their own object.
	assert.True(t, CanTouchObject(plainUser, Unsafe, authorID))

	// A different plain user does not.
	other := Principal{ID: 99, Role: RoleUser, Authenticated: true}
	assert.False(t, CanTouchObject(other, Unsafe, authorID))

	// Moderators and admins override authorship.
	assert.True(t, CanTouchObject(moderator, Unsafe, authorID))
	assert.True(t, CanTouchObject(admin, Unsafe, authorID))
	assert.True(t, CanTouchObject(superuser, Unsafe, authorID))
}
