package repository

import (
	"context"
	"database/sql"
	"time"
)

// ResetRepo persists single-use password reset tokens. Like refresh
// tokens, only the SHA-256 hash of the raw token is stored.
type ResetRepo struct{ DB *sql.DB }

func NewResetRepo(db *sql.DB) *ResetRepo { return &ResetRepo{DB: db} }

// Store inserts a reset token hash for a user.
func (r *ResetRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_resets (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	return err
}

// Consume validates an unused, unexpired token hash and marks it used in
// one guarded update. Returns the owning user ID, or sql.ErrNoRows when
// the token is unknown, expired or already spent.
func (r *ResetRepo) Consume(ctx context.Context, tokenHash string) (uint64, error) {
	var userID uint64
	var expiresAt time.Time
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM password_resets WHERE token_hash=? AND used_at IS NULL LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt)
	if err != nil {
		return 0, err
	}
	if time.Now().UTC().After(expiresAt) {
		return 0, sql.ErrNoRows
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE password_resets SET used_at=NOW() WHERE token_hash=? AND used_at IS NULL", tokenHash)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// lost the race against a concurrent consume
		return 0, sql.ErrNoRows
	}
	return userID, nil
}
