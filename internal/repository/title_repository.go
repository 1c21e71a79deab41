package repository

import (
	"context"
	"database/sql"
	"math"
	"strings"

	"github.com/iliyamo/review-catalog/internal/model"
)

// TitleRepo provides CRUD operations for titles together with their
// category, genre associations and the derived rating.  The rating is
// never stored: every read recomputes the average over the current
// review set so a freshly posted review is visible immediately.
type TitleRepo struct{ DB *sql.DB }

func NewTitleRepo(db *sql.DB) *TitleRepo { return &TitleRepo{DB: db} }

// TitleDetail is the read model returned to handlers: the title row
// plus its resolved category, genres and the derived rating.  Rating is
// nil while the title has no reviews.
type TitleDetail struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Year        int             `json:"year"`
	Description *string         `json:"description"`
	Rating      *float64        `json:"rating"`
	Category    *model.Category `json:"category"`
	Genres      []model.Genre   `json:"genre"`
}

// TitleFilter narrows List results.  Zero values mean "no filter".
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Year         int
	Name         string
}

// Create inserts a title and its genre associations in one transaction
// and returns the new ID.
func (r *TitleRepo) Create(ctx context.Context, name string, year int, description *string, categoryID *uint64, genreIDs []uint64) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO titles (name, year, description, category_id) VALUES (?,?,?,?)",
		name, year, description, categoryID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := insertTitleGenres(ctx, tx, uint64(id), genreIDs); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites the title row and, when genreIDs is non-nil, replaces
// the genre associations.  Passing nil leaves the associations alone,
// which is how a partial update that omits the genre list behaves.
func (r *TitleRepo) Update(ctx context.Context, id uint64, name string, year int, description *string, categoryID *uint64, genreIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE titles SET name=?, year=?, description=?, category_id=? WHERE id=?",
		name, year, description, categoryID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op write,
		// so confirm existence before reporting not found.
		var exists uint64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM titles WHERE id=?", id).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
	}
	if genreIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM title_genres WHERE title_id=?", id); err != nil {
			return err
		}
		if err := insertTitleGenres(ctx, tx, id, genreIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetDetail loads a single title with rating, category and genres.
func (r *TitleRepo) GetDetail(ctx context.Context, id uint64) (*TitleDetail, error) {
	const q = `SELECT t.id, t.name, t.year, t.description,
                      (SELECT AVG(score) FROM reviews WHERE title_id = t.id),
                      c.id, c.name, c.slug
               FROM titles t
               LEFT JOIN categories c ON c.id = t.category_id
               WHERE t.id = ?`
	det, err := scanTitleDetail(r.DB.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	genres, err := r.genresByTitle(ctx, []uint64{det.ID})
	if err != nil {
		return nil, err
	}
	det.Genres = genres[det.ID]
	if det.Genres == nil {
		det.Genres = []model.Genre{}
	}
	return det, nil
}

// List returns titles matching the filter, ordered by year descending.
func (r *TitleRepo) List(ctx context.Context, f TitleFilter) ([]TitleDetail, error) {
	q := `SELECT t.id, t.name, t.year, t.description,
                 (SELECT AVG(score) FROM reviews WHERE title_id = t.id),
                 c.id, c.name, c.slug
          FROM titles t
          LEFT JOIN categories c ON c.id = t.category_id`
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)
	if f.CategorySlug != "" {
		where = append(where, "c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	if f.GenreSlug != "" {
		where = append(where, `t.id IN (SELECT tg.title_id FROM title_genres tg
                        JOIN genres g ON g.id = tg.genre_id WHERE g.slug = ?)`)
		args = append(args, f.GenreSlug)
	}
	if f.Year != 0 {
		where = append(where, "t.year = ?")
		args = append(args, f.Year)
	}
	if f.Name != "" {
		where = append(where, "t.name LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY t.year DESC, t.id"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]TitleDetail, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		det, err := scanTitleDetail(rows)
		if err != nil {
			return nil, err
		}
		det.Genres = []model.Genre{}
		details = append(details, *det)
		ids = append(ids, det.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	genres, err := r.genresByTitle(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range details {
		if g := genres[details[i].ID]; g != nil {
			details[i].Genres = g
		}
	}
	return details, nil
}

// Delete removes a title and everything hanging off it: comments on its
// reviews, the reviews, the genre associations and finally the row.
func (r *TitleRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM comments WHERE review_id IN (SELECT id FROM reviews WHERE title_id=?)", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE title_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM title_genres WHERE title_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM titles WHERE id=?", id)
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

func insertTitleGenres(ctx context.Context, tx *sql.Tx, titleID uint64, genreIDs []uint64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	query := "INSERT INTO title_genres (title_id, genre_id) VALUES "
	args := make([]any, 0, len(genreIDs)*2)
	for i, gid := range genreIDs {
		if i > 0 {
			query += ","
		}
		query += "(?,?)"
		args = append(args, titleID, gid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// genresByTitle loads genre associations for a set of titles in one
// query and groups them by title ID.
func (r *TitleRepo) genresByTitle(ctx context.Context, titleIDs []uint64) (map[uint64][]model.Genre, error) {
	placeholders := make([]string, 0, len(titleIDs))
	args := make([]any, 0, len(titleIDs))
	for _, id := range titleIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT tg.title_id, g.id, g.name, g.slug
              FROM title_genres tg
              JOIN genres g ON g.id = tg.genre_id
              WHERE tg.title_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY tg.title_id, g.name`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]model.Genre)
	for rows.Next() {
		var tid uint64
		var g model.Genre
		if err := rows.Scan(&tid, &g.ID, &g.Name, &g.Slug); err != nil {
			return nil, err
		}
		out[tid] = append(out[tid], g)
	}
	return out, rows.Err()
}

func scanTitleDetail(s rowScanner) (*TitleDetail, error) {
	var det TitleDetail
	var desc sql.NullString
	var avg sql.NullFloat64
	var catID sql.NullInt64
	var catName, catSlug sql.NullString
	if err := s.Scan(&det.ID, &det.Name, &det.Year, &desc, &avg, &catID, &catName, &catSlug); err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		det.Description = &d
	}
	if avg.Valid {
		rt := roundRating(avg.Float64)
		det.Rating = &rt
	}
	if catID.Valid {
		det.Category = &model.Category{
			ID:   uint64(catID.Int64),
			Name: catName.String,
			Slug: catSlug.String,
		}
	}
	return &det, nil
}

// roundRating rounds the review average to one decimal place, halves
// away from zero (7.25 -> 7.3).
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
