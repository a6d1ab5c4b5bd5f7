package model

import "time"

// AuthOTP is a short-lived signup verification code sent to an email
// address out of band. A row is consumed on successful verification and
// burned after too many failed attempts.
type AuthOTP struct {
	ID         uint64     // auth_otps.id
	Email      string     // auth_otps.email
	Code       string     // auth_otps.code
	Purpose    string     // auth_otps.purpose
	ExpiresAt  time.Time  // auth_otps.expires_at
	ConsumedAt *time.Time // auth_otps.consumed_at (nullable)
	Attempts   uint32     // auth_otps.attempts
	CreatedAt  time.Time  // auth_otps.created_at
}

// PasswordReset is a single-use password recovery token. Only the SHA-256
// hash of the token is stored, mirroring refresh token handling.
type PasswordReset struct {
	ID        uint64     // password_resets.id
	UserID    uint64     // password_resets.user_id
	TokenHash string     // password_resets.token_hash
	ExpiresAt time.Time  // password_resets.expires_at
	UsedAt    *time.Time // password_resets.used_at (nullable)
	CreatedAt time.Time  // password_resets.created_at
}
