package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/review-catalog/internal/repository"
)

func commentFixture(t *testing.T) (*CommentHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewCommentHandler(repository.NewReviewRepo(db), repository.NewCommentRepo(db)), mock
}

func mockCommentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "review_id", "username", "author_id", "text", "created_at"})
}

func expectParentReview(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT r.id, r.title_id, u.username").
		WithArgs(uint64(21), uint64(5)).
		WillReturnRows(mockReviewRows().
			AddRow(21, 5, "author", 3, 8, "the review", time.Now()))
}

var commentParams = map[string]string{"title_id": "5", "review_id": "21", "comment_id": "31"}

func TestCommentCreateRequiresAuth(t *testing.T) {
	h, _ := commentFixture(t)
	c, rec := testCtx(t, http.MethodPost, `{"text":"hi"}`, anon, commentParams)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCommentCreate(t *testing.T) {
	h, mock := commentFixture(t)

	expectParentReview(mock)
	mock.ExpectExec("INSERT INTO comments").
		WithArgs(uint64(21), uint64(7), "agreed").
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectQuery("SELECT c.id, c.review_id, u.username").
		WithArgs(uint64(31), uint64(21)).
		WillReturnRows(mockCommentRows().
			AddRow(31, 21, "reader", 7, "agreed", time.Now()))

	c, rec := testCtx(t, http.MethodPost, `{"text":"agreed"}`, plainUser, commentParams)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"author":"reader"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentCreateBlankText(t *testing.T) {
	h, _ := commentFixture(t)
	c, rec := testCtx(t, http.MethodPost, `{"text":"  "}`, plainUser, commentParams)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// The nested path must hold together: a comment is only reachable
// through its own review and title.
func TestCommentGetWrongNesting(t *testing.T) {
	h, mock := commentFixture(t)

	mock.ExpectQuery("SELECT r.id, r.title_id, u.username").
		WithArgs(uint64(21), uint64(99)).
		WillReturnRows(mockReviewRows())

	params := map[string]string{"title_id": "99", "review_id": "21", "comment_id": "31"}
	c, rec := testCtx(t, http.MethodGet, "", anon, params)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCommentPatchOwnership(t *testing.T) {
	load := func(mock sqlmock.Sqlmock) {
		expectParentReview(mock)
		mock.ExpectQuery("SELECT c.id, c.review_id, u.username").
			WithArgs(uint64(31), uint64(21)).
			WillReturnRows(mockCommentRows().
				AddRow(31, 21, "someone", 4, "first take", time.Now()))
	}

	t.Run("stranger denied", func(t *testing.T) {
		h, mock := commentFixture(t)
		load(mock)
		c, rec := testCtx(t, http.MethodPatch, `{"text":"edit"}`, plainUser, commentParams)
		require.NoError(t, h.Patch(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("author edits", func(t *testing.T) {
		h, mock := commentFixture(t)
		load(mock)
		mock.ExpectExec("UPDATE comments SET").
			WithArgs("second take", uint64(31)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT c.id, c.review_id, u.username").
			WithArgs(uint64(31), uint64(21)).
			WillReturnRows(mockCommentRows().
				AddRow(31, 21, "someone", 4, "second take", time.Now()))

		owner := plainUser
		owner.ID = 4
		c, rec := testCtx(t, http.MethodPatch, `{"text":"second take"}`, owner, commentParams)
		require.NoError(t, h.Patch(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "second take")
	})
}

func TestCommentDeleteAsModerator(t *testing.T) {
	h, mock := commentFixture(t)

	expectParentReview(mock)
	mock.ExpectQuery("SELECT c.id, c.review_id, u.username").
		WithArgs(uint64(31), uint64(21)).
		WillReturnRows(mockCommentRows().
			AddRow(31, 21, "someone", 4, "spam", time.Now()))
	mock.ExpectExec("DELETE FROM comments WHERE id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := testCtx(t, http.MethodDelete, "", moderator, commentParams)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
