package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/carvohq/carvo-backend/internal/model"
)

// OTPRepo persists signup verification codes. Rotating a code consumes
// every previous active row for the email so only the latest code can
// ever verify.
type OTPRepo struct{ DB *sql.DB }

func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{DB: db} }

// Rotate invalidates any active codes for the email and inserts a fresh one.
func (r *OTPRepo) Rotate(ctx context.Context, email, code string, exp time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		"UPDATE auth_otps SET consumed_at=NOW() WHERE email=? AND consumed_at IS NULL", email); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO auth_otps (email, code, purpose, expires_at) VALUES (?,?, 'SIGNUP', ?)",
		email, code, exp); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Active returns the current unconsumed code row for the email.
func (r *OTPRepo) Active(ctx context.Context, email string) (model.AuthOTP, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var o model.AuthOTP
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, code, purpose, expires_at, consumed_at, attempts, created_at
		 FROM auth_otps WHERE email=? AND consumed_at IS NULL
		 ORDER BY id DESC LIMIT 1`, email).
		Scan(&o.ID, &o.Email, &o.Code, &o.Purpose, &o.ExpiresAt, &o.ConsumedAt, &o.Attempts, &o.CreatedAt)
	return o, err
}

// RecordAttempt bumps the failed-attempt counter for a code row.
func (r *OTPRepo) RecordAttempt(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE auth_otps SET attempts=attempts+1 WHERE id=?", id)
	return err
}

// Consume marks a code row as used after a successful verification.
func (r *OTPRepo) Consume(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE auth_otps SET consumed_at=NOW() WHERE id=? AND consumed_at IS NULL", id)
	return err
}
