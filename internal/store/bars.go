package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/budbeer/console/internal/model"
)

// CreateBar inserts a new bar. The caller decides the starting status:
// public submissions enter at pending, admin-created bars at approved.
// The ID and SubmittedAt fields are populated after a successful insert.
func (s *Store) CreateBar(ctx context.Context, bar *model.Bar) error {
	if bar.SubmittedAt.IsZero() {
		bar.SubmittedAt = time.Now().UTC()
	}

	const q = `INSERT INTO bars
		(name, latitude, longitude, regular_price, happy_hour_price, status,
		 submitted_at, submitted_by_ip, device_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := s.db.QueryRowxContext(ctx, s.rebind(q),
		bar.Name, bar.Latitude, bar.Longitude, bar.RegularPrice, bar.HappyHourPrice,
		bar.Status, bar.SubmittedAt, bar.SubmittedByIP, bar.DeviceID,
	).Scan(&bar.ID)
	if err != nil {
		return fmt.Errorf("insert bar: %w", err)
	}
	return nil
}

// GetBar returns a bar by ID.
func (s *Store) GetBar(ctx context.Context, id int64) (*model.Bar, error) {
	var bar model.Bar
	if err := s.db.GetContext(ctx, &bar, s.rebind("SELECT * FROM bars WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get bar: %w", err)
	}
	return &bar, nil
}

// ListBars returns all bars in insertion order. Filtering and sorting for
// console views happen in the projection layer, not here.
func (s *Store) ListBars(ctx context.Context) ([]model.Bar, error) {
	var bars []model.Bar
	if err := s.db.SelectContext(ctx, &bars, "SELECT * FROM bars ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list bars: %w", err)
	}
	return bars, nil
}

// UpdateBarStatus sets a bar's status in a single atomic statement. Writing
// the same status again affects the row without changing it, which is what
// makes approve/reject idempotent for callers. Returns ErrNotFound if the
// bar does not exist.
func (s *Store) UpdateBarStatus(ctx context.Context, id int64, status string) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE bars SET status = ? WHERE id = ?"), status, id)
	if err != nil {
		return fmt.Errorf("update bar status: %w", err)
	}
	return checkAffected(result, "update bar status")
}

// UpdateBarFields replaces the editable fields of a bar without touching
// its status or submission metadata.
func (s *Store) UpdateBarFields(ctx context.Context, id int64, name string, lat, lng, regularPrice float64, happyHourPrice *float64) error {
	const q = `UPDATE bars SET
		name = ?, latitude = ?, longitude = ?, regular_price = ?, happy_hour_price = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, s.rebind(q),
		name, lat, lng, regularPrice, happyHourPrice, id)
	if err != nil {
		return fmt.Errorf("update bar fields: %w", err)
	}
	return checkAffected(result, "update bar fields")
}

// DeleteBar removes a bar by ID.
func (s *Store) DeleteBar(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM bars WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete bar: %w", err)
	}
	return checkAffected(result, "delete bar")
}
