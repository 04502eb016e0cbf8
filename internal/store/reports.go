package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/budbeer/console/internal/model"
)

// CreateReport inserts a new abuse report at pending status. The ID and
// ReportedAt fields are populated after a successful insert.
func (s *Store) CreateReport(ctx context.Context, report *model.Report) error {
	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now().UTC()
	}
	report.Status = model.ReportStatusPending

	const q = `INSERT INTO reports
		(bar_id, reason, status, reported_at, reported_by_ip, device_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := s.db.QueryRowxContext(ctx, s.rebind(q),
		report.BarID, report.Reason, report.Status,
		report.ReportedAt, report.ReportedByIP, report.DeviceID,
	).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetReport returns a report by ID with the bar name joined in.
func (s *Store) GetReport(ctx context.Context, id int64) (*model.Report, error) {
	var report model.Report
	const q = `SELECT r.*, COALESCE(b.name, '') AS bar_name
		FROM reports r LEFT JOIN bars b ON b.id = r.bar_id
		WHERE r.id = ?`
	if err := s.db.GetContext(ctx, &report, s.rebind(q), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &report, nil
}

// ListReports returns all reports in insertion order, each with the name
// of the reported bar joined in for console display.
func (s *Store) ListReports(ctx context.Context) ([]model.Report, error) {
	var reports []model.Report
	const q = `SELECT r.*, COALESCE(b.name, '') AS bar_name
		FROM reports r LEFT JOIN bars b ON b.id = r.bar_id
		ORDER BY r.id`
	if err := s.db.SelectContext(ctx, &reports, q); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ResolveReport marks a report resolved in a single atomic statement.
// Resolving an already-resolved report affects the row unchanged, keeping
// the operation idempotent. Returns ErrNotFound if the report is absent.
func (s *Store) ResolveReport(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE reports SET status = ? WHERE id = ?"), model.ReportStatusResolved, id)
	if err != nil {
		return fmt.Errorf("resolve report: %w", err)
	}
	return checkAffected(result, "resolve report")
}

// DeleteReport removes a report by ID, in any status.
func (s *Store) DeleteReport(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM reports WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return checkAffected(result, "delete report")
}
