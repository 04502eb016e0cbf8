package store

import (
	"context"
	"fmt"
	"time"

	"github.com/budbeer/console/internal/model"
)

// CreateBan inserts a ban entry. Validation that at least one of IP and
// DeviceID is set belongs to the trust service; the store accepts what it
// is given. Duplicate entries for the same target are allowed.
func (s *Store) CreateBan(ctx context.Context, ban *model.BanEntry) error {
	if ban.BannedAt.IsZero() {
		ban.BannedAt = time.Now().UTC()
	}

	const q = `INSERT INTO bans (ip, device_id, reason, banned_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	err := s.db.QueryRowxContext(ctx, s.rebind(q),
		ban.IP, ban.DeviceID, ban.Reason, ban.BannedAt,
	).Scan(&ban.ID)
	if err != nil {
		return fmt.Errorf("insert ban: %w", err)
	}
	return nil
}

// ListBans returns all ban entries, most recent first.
func (s *Store) ListBans(ctx context.Context) ([]model.BanEntry, error) {
	var bans []model.BanEntry
	if err := s.db.SelectContext(ctx, &bans, "SELECT * FROM bans ORDER BY id DESC"); err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	return bans, nil
}

// DeleteBan removes a ban entry by ID. Returns ErrNotFound if absent.
func (s *Store) DeleteBan(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM bans WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete ban: %w", err)
	}
	return checkAffected(result, "delete ban")
}

// MatchBan reports whether any stored entry matches the given IP or device
// ID exactly. Empty stored fields never match, so a device-only ban cannot
// catch a submitter with no device ID.
func (s *Store) MatchBan(ctx context.Context, ip, deviceID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM bans
		WHERE (ip <> '' AND ip = ?) OR (device_id <> '' AND device_id = ?)`

	var count int
	if err := s.db.GetContext(ctx, &count, s.rebind(q), ip, deviceID); err != nil {
		return false, fmt.Errorf("match ban: %w", err)
	}
	return count > 0, nil
}
