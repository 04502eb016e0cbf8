package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/budbeer/console/internal/model"
)

// CreateAdmin inserts a new admin account. The ID, CreatedAt, and UpdatedAt
// fields on admin are populated after a successful insert.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	const q = `INSERT INTO admins
		(username, password_hash, totp_secret, totp_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := s.db.QueryRowxContext(ctx, s.rebind(q),
		admin.Username, admin.PasswordHash, admin.TOTPSecret, admin.TOTPEnabled,
		admin.CreatedAt, admin.UpdatedAt,
	).Scan(&admin.ID)
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetAdmin returns an admin account by ID.
func (s *Store) GetAdmin(ctx context.Context, id int64) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.GetContext(ctx, &admin, s.rebind("SELECT * FROM admins WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}

// GetAdminByUsername returns an admin account by its unique username.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.GetContext(ctx, &admin, s.rebind("SELECT * FROM admins WHERE username = ?"), username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all admin accounts.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY username"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// HasAnyAdmin reports whether at least one admin account exists. Used for
// first-run detection on startup.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}

// UpdateAdminLastLogin sets the last_login_at timestamp for an admin.
func (s *Store) UpdateAdminLastLogin(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE admins SET last_login_at = ?, updated_at = ? WHERE id = ?"), now, now, id)
	if err != nil {
		return fmt.Errorf("update admin last login: %w", err)
	}
	return checkAffected(result, "update admin last login")
}

// SetPendingTOTPSecret stores a freshly generated secret without activating
// it. A second setup before enable overwrites the previous pending secret,
// so only one enrollment is in flight per account.
func (s *Store) SetPendingTOTPSecret(ctx context.Context, id int64, secret string) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE admins SET totp_secret = ?, totp_enabled = ?, updated_at = ? WHERE id = ?"),
		secret, false, now, id)
	if err != nil {
		return fmt.Errorf("set pending totp secret: %w", err)
	}
	return checkAffected(result, "set pending totp secret")
}

// EnableTOTP activates the pending secret. The guard on a non-empty secret
// keeps the invariant that an enabled account always has one.
func (s *Store) EnableTOTP(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE admins SET totp_enabled = ?, updated_at = ? WHERE id = ? AND totp_secret <> ''"),
		true, now, id)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return checkAffected(result, "enable totp")
}

// DisableTOTP clears both the secret and the enabled flag.
func (s *Store) DisableTOTP(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE admins SET totp_secret = '', totp_enabled = ?, updated_at = ? WHERE id = ?"),
		false, now, id)
	if err != nil {
		return fmt.Errorf("disable totp: %w", err)
	}
	return checkAffected(result, "disable totp")
}

// checkAffected turns a zero-row UPDATE/DELETE into ErrNotFound.
func checkAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
