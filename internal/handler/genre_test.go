package handler

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/review-catalog/internal/repository"
)

func genreFixture(t *testing.T) (*GenreHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewGenreHandler(repository.NewGenreRepo(db)), mock
}

func TestGenreCreateAsModerator(t *testing.T) {
	h, mock := genreFixture(t)
	mock.ExpectExec("INSERT INTO genres").
		WithArgs("Drama", "drama").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := testCtx(t, http.MethodPost, `{"name":"Drama","slug":"drama"}`, moderator, nil)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

// Same lockout as categories: moderators create, only admins delete.
func TestGenreDeleteGate(t *testing.T) {
	t.Run("moderator is locked out", func(t *testing.T) {
		h, _ := genreFixture(t)
		c, rec := testCtx(t, http.MethodDelete, "", moderator, map[string]string{"slug": "drama"})
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deletes associations only", func(t *testing.T) {
		h, mock := genreFixture(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM title_genres WHERE genre_id IN").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("DELETE FROM genres WHERE slug").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c, rec := testCtx(t, http.MethodDelete, "", admin, map[string]string{"slug": "drama"})
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
