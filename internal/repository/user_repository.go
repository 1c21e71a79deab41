package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/review-catalog/internal/model"
)

// UserRepo provides CRUD operations for the users table. Uniqueness of
// username and email is enforced by database indexes; duplicate-key
// failures are mapped onto the sentinel errors so handlers can report
// which field collided.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,role,is_superuser,first_name,last_name,bio,token_version,created_at,updated_at"

// Create inserts a user and returns its ID. The row starts at
// token_version 1 so the first confirmation code has a version to bind
// to.
func (r *UserRepo) Create(ctx context.Context, username, email, role string) (uint64, error) {
	email = model.NormalizeEmail(email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, role, token_version) VALUES (?,?,?,1)",
		username, email, role)
	if err != nil {
		return 0, dupUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", model.NormalizeEmail(email))
}

// List returns all users ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update writes the mutable user fields and bumps token_version, which
// invalidates every outstanding confirmation code for the user. Callers
// decide what goes into Role: the self-service handler copies the prior
// role back in, the admin handler passes the submitted one.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET username=?, email=?, role=?, first_name=?, last_name=?, bio=?,
                 token_version=token_version+1, updated_at=NOW() WHERE id=?`,
		u.Username, model.NormalizeEmail(u.Email), u.Role, u.FirstName, u.LastName, u.Bio, u.ID)
	if err != nil {
		return dupUserErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	u.TokenVersion++
	return nil
}

// Delete removes a user together with everything they authored. The
// cascade is explicit: comments by the user, comments sitting on the
// user's reviews, the reviews themselves and any pending confirmation
// codes all go in one transaction.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE author_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM comments WHERE review_id IN (SELECT id FROM reviews WHERE author_id=?)", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE author_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM confirmation_codes WHERE user_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
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

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	var first, last, bio sql.NullString
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.IsSuperuser,
		&first, &last, &bio, &u.TokenVersion, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.FirstName = first.String
	u.LastName = last.String
	u.Bio = bio.String
	return u, nil
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// dupUserErr maps a MySQL duplicate-key error (1062) onto the field
// that collided.
func dupUserErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	switch {
	case strings.Contains(msg, "username"):
		return ErrUsernameTaken
	case strings.Contains(msg, "email"):
		return ErrEmailTaken
	default:
		return ErrConflict
	}
}
