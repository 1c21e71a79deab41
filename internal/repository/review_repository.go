package repository

import (
	"context"
	"database/sql"
	"strings"
)

// ReviewRepo provides CRUD operations for reviews.  The one-review-per-
// author-per-title rule is carried by a UNIQUE(title_id, author_id)
// index, so two concurrent creations for the same pair resolve in the
// database: one insert wins, the other surfaces ErrReviewExists.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// ReviewDetail joins a review with its author's username for display.
type ReviewDetail struct {
	ID        uint64 `json:"id"`
	TitleID   uint64 `json:"title_id"`
	Author    string `json:"author"`
	AuthorID  uint64 `json:"-"`
	Score     int    `json:"score"`
	Text      string `json:"text"`
	CreatedAt string `json:"pub_date"`
}

const reviewDetailQ = `SELECT r.id, r.title_id, u.username, r.author_id, r.score, r.text, r.created_at
                       FROM reviews r
                       JOIN users u ON u.id = r.author_id`

// Create inserts a review with a server-assigned timestamp and returns
// its ID.  The author comes from the authenticated principal; callers
// never pass client-supplied author values here.
func (r *ReviewRepo) Create(ctx context.Context, titleID, authorID uint64, score int, text string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO reviews (title_id, author_id, score, text) VALUES (?,?,?,?)",
		titleID, authorID, score, text)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrReviewExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Get fetches a single review of a title.
func (r *ReviewRepo) Get(ctx context.Context, titleID, reviewID uint64) (*ReviewDetail, error) {
	det, err := scanReviewDetail(r.DB.QueryRowContext(ctx,
		reviewDetailQ+" WHERE r.id=? AND r.title_id=? LIMIT 1", reviewID, titleID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return det, nil
}

// ListByTitle returns all reviews of a title ordered by creation time
// descending.
func (r *ReviewRepo) ListByTitle(ctx context.Context, titleID uint64) ([]ReviewDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		reviewDetailQ+" WHERE r.title_id=? ORDER BY r.created_at DESC, r.id DESC", titleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReviewDetail, 0)
	for rows.Next() {
		det, err := scanReviewDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *det)
	}
	return out, rows.Err()
}

// Update rewrites score and text of an existing review.  Uniqueness is
// not re-checked: the (title, author) pair cannot change here.
func (r *ReviewRepo) Update(ctx context.Context, reviewID uint64, score int, text string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE reviews SET score=?, text=? WHERE id=?", score, text, reviewID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.DB.QueryRowContext(ctx, "SELECT id FROM reviews WHERE id=?", reviewID).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a review and cascades to its comments in one
// transaction.
func (r *ReviewRepo) Delete(ctx context.Context, reviewID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE review_id=?", reviewID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", reviewID)
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

func scanReviewDetail(s rowScanner) (*ReviewDetail, error) {
	var det ReviewDetail
	var created sql.NullTime
	if err := s.Scan(&det.ID, &det.TitleID, &det.Author, &det.AuthorID, &det.Score, &det.Text, &created); err != nil {
		return nil, err
	}
	if created.Valid {
		det.CreatedAt = created.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return &det, nil
}
