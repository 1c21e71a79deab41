package repository

import (
	"context"
	"database/sql"
)

// CommentRepo provides CRUD operations for comments on reviews.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// CommentDetail joins a comment with its author's username for display.
type CommentDetail struct {
	ID        uint64 `json:"id"`
	ReviewID  uint64 `json:"review_id"`
	Author    string `json:"author"`
	AuthorID  uint64 `json:"-"`
	Text      string `json:"text"`
	CreatedAt string `json:"pub_date"`
}

const commentDetailQ = `SELECT c.id, c.review_id, u.username, c.author_id, c.text, c.created_at
                        FROM comments c
                        JOIN users u ON u.id = c.author_id`

// Create inserts a comment with a server-assigned timestamp and returns
// its ID.  No uniqueness applies: an author may comment repeatedly.
func (r *CommentRepo) Create(ctx context.Context, reviewID, authorID uint64, text string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (review_id, author_id, text) VALUES (?,?,?)",
		reviewID, authorID, text)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Get fetches a single comment of a review.
func (r *CommentRepo) Get(ctx context.Context, reviewID, commentID uint64) (*CommentDetail, error) {
	det, err := scanCommentDetail(r.DB.QueryRowContext(ctx,
		commentDetailQ+" WHERE c.id=? AND c.review_id=? LIMIT 1", commentID, reviewID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return det, nil
}

// ListByReview returns all comments of a review ordered by creation
// time descending.
func (r *CommentRepo) ListByReview(ctx context.Context, reviewID uint64) ([]CommentDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		commentDetailQ+" WHERE c.review_id=? ORDER BY c.created_at DESC, c.id DESC", reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CommentDetail, 0)
	for rows.Next() {
		det, err := scanCommentDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *det)
	}
	return out, rows.Err()
}

// Update rewrites the text of an existing comment.
func (r *CommentRepo) Update(ctx context.Context, commentID uint64, text string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET text=? WHERE id=?", text, commentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists uint64
		if err := r.DB.QueryRowContext(ctx, "SELECT id FROM comments WHERE id=?", commentID).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a single comment.
func (r *CommentRepo) Delete(ctx context.Context, commentID uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", commentID)
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
	return nil
}

func scanCommentDetail(s rowScanner) (*CommentDetail, error) {
	var det CommentDetail
	var created sql.NullTime
	if err := s.Scan(&det.ID, &det.ReviewID, &det.Author, &det.AuthorID, &det.Text, &created); err != nil {
		return nil, err
	}
	if created.Valid {
		det.CreatedAt = created.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return &det, nil
}
