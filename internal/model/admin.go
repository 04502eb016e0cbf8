package model

import "time"

// Admin represents an administrative user of the moderation console.
// Passwords are stored as bcrypt hashes. The TOTP secret only gates login
// once TOTPEnabled is set; a non-empty secret with TOTPEnabled false is a
// pending enrollment awaiting code confirmation.
type Admin struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"` // bcrypt hash, never expose
	TOTPSecret   string     `json:"-" db:"totp_secret"`   // base32 secret, never expose
	TOTPEnabled  bool       `json:"totp_enabled" db:"totp_enabled"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
