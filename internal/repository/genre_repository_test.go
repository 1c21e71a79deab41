package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreRepoGetBySlugs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,name,slug FROM genres WHERE slug IN (?,?)")).
		WithArgs("drama", "jazz").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(1, "Drama", "drama").
			AddRow(2, "Jazz", "jazz"))

	genres, err := NewGenreRepo(db).GetBySlugs(context.Background(), []string{"drama", "jazz"})
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "drama", genres[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A title can never be linked against a half-resolved genre list.
func TestGenreRepoGetBySlugsPartialMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,name,slug FROM genres WHERE slug IN (?,?)")).
		WithArgs("drama", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(1, "Drama", "drama"))

	_, err = NewGenreRepo(db).GetBySlugs(context.Background(), []string{"drama", "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenreRepoGetBySlugsEmpty(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	genres, err := NewGenreRepo(db).GetBySlugs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, genres)
}

// Deleting a genre removes only the join rows; titles survive.
func TestGenreRepoDeleteRemovesAssociations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM title_genres WHERE genre_id IN (SELECT id FROM genres WHERE slug=?)")).
		WithArgs("drama").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM genres WHERE slug=?")).
		WithArgs("drama").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewGenreRepo(db).DeleteBySlug(context.Background(), "drama"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenreRepoDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM title_genres WHERE genre_id IN").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM genres WHERE slug").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, NewGenreRepo(db).DeleteBySlug(context.Background(), "nope"), ErrNotFound)
}
