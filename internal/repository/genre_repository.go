package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/review-catalog/internal/model"
)

// GenreRepo provides CRUD operations for genres. A genre is attached to
// titles through the title_genres join table; deleting a genre removes
// only those associations, never the titles.
type GenreRepo struct{ DB *sql.DB }

func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{DB: db} }

// Create inserts a genre and returns its ID.
func (r *GenreRepo) Create(ctx context.Context, name, slug string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO genres (name, slug) VALUES (?,?)", name, slug)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetBySlug fetches a genre by slug.
func (r *GenreRepo) GetBySlug(ctx context.Context, slug string) (model.Genre, error) {
	var g model.Genre
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,slug FROM genres WHERE slug=? LIMIT 1", slug).
		Scan(&g.ID, &g.Name, &g.Slug)
	if err == sql.ErrNoRows {
		return model.Genre{}, ErrNotFound
	}
	return g, err
}

// GetBySlugs resolves a set of slugs in one query. A missing slug makes
// the whole resolution fail with ErrNotFound so a title can never be
// linked to a half-resolved genre list.
func (r *GenreRepo) GetBySlugs(ctx context.Context, slugs []string) ([]model.Genre, error) {
	if len(slugs) == 0 {
		return []model.Genre{}, nil
	}
	placeholders := make([]string, 0, len(slugs))
	args := make([]any, 0, len(slugs))
	for _, s := range slugs {
		placeholders = append(placeholders, "?")
		args = append(args, s)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,slug FROM genres WHERE slug IN ("+strings.Join(placeholders, ",")+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Genre, 0, len(slugs))
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) != len(slugs) {
		return nil, ErrNotFound
	}
	return out, nil
}

// List returns all genres ordered by name.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id,name,slug FROM genres ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Genre, 0)
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteBySlug removes a genre and its title associations in one
// transaction. Titles themselves are untouched.
func (r *GenreRepo) DeleteBySlug(ctx context.Context, slug string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM title_genres WHERE genre_id IN (SELECT id FROM genres WHERE slug=?)", slug); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM genres WHERE slug=?", slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
