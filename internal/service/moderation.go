package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/budbeer/console/internal/model"
	"github.com/budbeer/console/internal/store"
)

// BarInput carries the editable fields of a bar for create and edit
// operations. HappyHourPrice is optional.
type BarInput struct {
	Name           string
	Latitude       float64
	Longitude      float64
	RegularPrice   float64
	HappyHourPrice *float64
}

func (in *BarInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.RegularPrice <= 0 {
		return fmt.Errorf("%w: regularPrice must be greater than zero", ErrValidation)
	}
	if in.HappyHourPrice != nil && *in.HappyHourPrice <= 0 {
		return fmt.Errorf("%w: happyHourPrice must be greater than zero", ErrValidation)
	}
	return nil
}

// ModerationService owns the bar and report lifecycles. Bars move
// pending → approved|rejected and may flip between approved and rejected,
// but never return to pending. Reports move pending → resolved, one way.
// The two lifecycles are independent: resolving a report never touches
// the bar it points at.
type ModerationService struct {
	store *store.Store
}

// NewModerationService creates a ModerationService backed by the store.
func NewModerationService(st *store.Store) *ModerationService {
	return &ModerationService{store: st}
}

// SubmitBar records a public submission. Submissions always enter at
// pending and carry the submitter's IP and device for trust decisions.
func (s *ModerationService) SubmitBar(ctx context.Context, in BarInput, ip, deviceID string) (*model.Bar, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	bar := &model.Bar{
		Name:           strings.TrimSpace(in.Name),
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		RegularPrice:   in.RegularPrice,
		HappyHourPrice: in.HappyHourPrice,
		Status:         model.BarStatusPending,
		SubmittedByIP:  ip,
		DeviceID:       deviceID,
	}
	if err := s.store.CreateBar(ctx, bar); err != nil {
		return nil, err
	}
	return bar, nil
}

// CreateBar records an admin-created bar. Unlike public submissions it
// skips moderation and starts approved.
func (s *ModerationService) CreateBar(ctx context.Context, in BarInput, ip string) (*model.Bar, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	bar := &model.Bar{
		Name:           strings.TrimSpace(in.Name),
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		RegularPrice:   in.RegularPrice,
		HappyHourPrice: in.HappyHourPrice,
		Status:         model.BarStatusApproved,
		SubmittedByIP:  ip,
	}
	if err := s.store.CreateBar(ctx, bar); err != nil {
		return nil, err
	}
	return bar, nil
}

// GetBar loads a single bar.
func (s *ModerationService) GetBar(ctx context.Context, id int64) (*model.Bar, error) {
	return s.store.GetBar(ctx, id)
}

// ListBars returns every bar in insertion order. Filtering and sorting
// happen in the query package.
func (s *ModerationService) ListBars(ctx context.Context) ([]model.Bar, error) {
	return s.store.ListBars(ctx)
}

// ApproveBar sets a bar approved. Approving an already-approved bar is a
// no-op success.
func (s *ModerationService) ApproveBar(ctx context.Context, id int64) error {
	return s.store.UpdateBarStatus(ctx, id, model.BarStatusApproved)
}

// RejectBar sets a bar rejected. Rejecting an already-rejected bar is a
// no-op success.
func (s *ModerationService) RejectBar(ctx context.Context, id int64) error {
	return s.store.UpdateBarStatus(ctx, id, model.BarStatusRejected)
}

// EditBar replaces a bar's editable fields. Status is never changed by an
// edit, whatever state the bar is in.
func (s *ModerationService) EditBar(ctx context.Context, id int64, in BarInput) (*model.Bar, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBarFields(ctx, id,
		strings.TrimSpace(in.Name), in.Latitude, in.Longitude, in.RegularPrice, in.HappyHourPrice); err != nil {
		return nil, err
	}
	return s.store.GetBar(ctx, id)
}

// DeleteBar removes a bar permanently, from any status.
func (s *ModerationService) DeleteBar(ctx context.Context, id int64) error {
	return s.store.DeleteBar(ctx, id)
}

// SubmitReport records an abuse report against an existing bar.
func (s *ModerationService) SubmitReport(ctx context.Context, barID int64, reason, ip, deviceID string) (*model.Report, error) {
	if _, err := s.store.GetBar(ctx, barID); err != nil {
		return nil, err
	}
	report := &model.Report{
		BarID:        barID,
		Reason:       strings.TrimSpace(reason),
		ReportedByIP: ip,
		DeviceID:     deviceID,
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns every report with the bar name joined in, in
// insertion order.
func (s *ModerationService) ListReports(ctx context.Context) ([]model.Report, error) {
	return s.store.ListReports(ctx)
}

// ResolveReport marks a report resolved. Resolving twice is a no-op
// success; the associated bar is deliberately left alone.
func (s *ModerationService) ResolveReport(ctx context.Context, id int64) error {
	return s.store.ResolveReport(ctx, id)
}

// DeleteReport removes a report permanently, in any status.
func (s *ModerationService) DeleteReport(ctx context.Context, id int64) error {
	return s.store.DeleteReport(ctx, id)
}
