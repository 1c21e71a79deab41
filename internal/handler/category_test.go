package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/review-catalog/internal/repository"
)

func categoryFixture(t *testing.T) (*CategoryHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	return NewCategoryHandler(repository.NewCategoryRepo(db)), mock
}

func TestCategoryListPublic(t *testing.T) {
	h, mock := categoryFixture(t)

	mock.ExpectQuery("SELECT id,name,slug FROM categories ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(1, "Books", "books").
			AddRow(2, "Films", "films"))

	c, rec := testCtx(t, http.MethodGet, "", anon, nil)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"books"`)
}

func TestCategoryCreateGate(t *testing.T) {
	body := `{"name":"Films","slug":"films"}`

	t.Run("anonymous", func(t *testing.T) {
		h, _ := categoryFixture(t)
		c, rec := testCtx(t, http.MethodPost, body, anon, nil)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("plain user", func(t *testing.T) {
		h, _ := categoryFixture(t)
		c, rec := testCtx(t, http.MethodPost, body, plainUser, nil)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("moderator", func(t *testing.T) {
		h, mock := categoryFixture(t)
		mock.ExpectExec("INSERT INTO categories").
			WithArgs("Films", "films").
			WillReturnResult(sqlmock.NewResult(1, 1))

		c, rec := testCtx(t, http.MethodPost, body, moderator, nil)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCategoryCreateValidation(t *testing.T) {
	h, _ := categoryFixture(t)

	c, rec := testCtx(t, http.MethodPost, `{"name":"Films","slug":"Films"}`, admin, nil)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryCreateDuplicateSlug(t *testing.T) {
	h, mock := categoryFixture(t)
	mock.ExpectExec("INSERT INTO categories").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'films' for key 'categories.slug'"))

	c, rec := testCtx(t, http.MethodPost, `{"name":"Films","slug":"films"}`, admin, nil)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCategoryCreateStorageFailure(t *testing.T) {
	h, mock := categoryFixture(t)
	mock.ExpectExec("INSERT INTO categories").
		WillReturnError(assert.AnError)

	c, rec := testCtx(t, http.MethodPost, `{"name":"Films","slug":"films"}`, admin, nil)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// Deleting taxonomy entries is the one catalog write moderators are
// locked out of.
func TestCategoryDeleteGate(t *testing.T) {
	t.Run("moderator is locked out", func(t *testing.T) {
		h, _ := categoryFixture(t)
		c, rec := testCtx(t, http.MethodDelete, "", moderator, map[string]string{"slug": "films"})
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin deletes", func(t *testing.T) {
		h, mock := categoryFixture(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE titles SET category_id=NULL").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM categories WHERE slug").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c, rec := testCtx(t, http.MethodDelete, "", admin, map[string]string{"slug": "films"})
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing slug is 404", func(t *testing.T) {
		h, mock := categoryFixture(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE titles SET category_id=NULL").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM categories WHERE slug").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		c, rec := testCtx(t, http.MethodDelete, "", admin, map[string]string{"slug": "nope"})
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
