package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/review-catalog/internal/auth"
	"github.com/iliyamo/review-catalog/internal/model"
)

// CodeRepo persists and validates one-time confirmation codes. Codes
// are stored bcrypt-hashed and bound to the user's token_version at
// issue time; a later change to the user row leaves the stored version
// behind and the code stops validating.
type CodeRepo struct{ DB *sql.DB }

func NewCodeRepo(db *sql.DB) *CodeRepo { return &CodeRepo{DB: db} }

// Issue hashes the plain code and inserts a pending row bound to the
// given token version.
func (r *CodeRepo) Issue(ctx context.Context, userID uint64, code string, boundVersion uint64, cost int, ttl time.Duration) error {
	hash, err := auth.HashCode(code, cost)
	if err != nil {
		return err
	}
	exp := time.Now().UTC().Add(ttl)
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO confirmation_codes (user_id, code_hash, bound_version, expires_at) VALUES (?,?,?,?)",
		userID, hash, boundVersion, exp)
	return err
}

// Exchange consumes the user's most recent pending code. It returns
// ErrCodeInvalid when no pending code exists, the submitted value does
// not match, the code expired, or the user's token_version moved on
// since issuance. On success the row is marked used so the code cannot
// be exchanged twice.
func (r *CodeRepo) Exchange(ctx context.Context, user model.User, code string) error {
	var cc model.ConfirmationCode
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, code_hash, bound_version, expires_at
                 FROM confirmation_codes
                 WHERE user_id=? AND used_at IS NULL
                 ORDER BY id DESC LIMIT 1`,
		user.ID).Scan(&cc.ID, &cc.UserID, &cc.CodeHash, &cc.BoundVersion, &cc.ExpiresAt)
	if err == sql.ErrNoRows {
		return ErrCodeInvalid
	}
	if err != nil {
		return err
	}
	if cc.BoundVersion != user.TokenVersion {
		return ErrCodeInvalid
	}
	if time.Now().UTC().After(cc.ExpiresAt) {
		return ErrCodeInvalid
	}
	if !auth.VerifyCode(cc.CodeHash, code) {
		return ErrCodeInvalid
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE confirmation_codes SET used_at=NOW() WHERE id=? AND used_at IS NULL", cc.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	// A concurrent exchange may have consumed the row first.
	if n == 0 {
		return ErrCodeInvalid
	}
	return nil
}
