package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/budbeer/console/internal/model"
	"github.com/budbeer/console/internal/store"
)

// TrustService is the IP/device ban registry. Submission intake consults
// it before accepting anything from the public; the console manages its
// entries. Multiple entries may target the same IP or device: each ban is
// kept as its own audit record rather than de-duplicated.
type TrustService struct {
	store *store.Store
}

// NewTrustService creates a TrustService backed by the store.
func NewTrustService(st *store.Store) *TrustService {
	return &TrustService{store: st}
}

// Ban records a new ban entry targeting an IP, a device, or both.
func (s *TrustService) Ban(ctx context.Context, ip, deviceID, reason string) (*model.BanEntry, error) {
	ip = strings.TrimSpace(ip)
	deviceID = strings.TrimSpace(deviceID)
	if ip == "" && deviceID == "" {
		return nil, fmt.Errorf("%w: an ip or a deviceId is required", ErrValidation)
	}

	ban := &model.BanEntry{
		IP:       ip,
		DeviceID: deviceID,
		Reason:   strings.TrimSpace(reason),
	}
	if err := s.store.CreateBan(ctx, ban); err != nil {
		return nil, err
	}
	return ban, nil
}

// Unban removes a ban entry by ID.
func (s *TrustService) Unban(ctx context.Context, id int64) error {
	return s.store.DeleteBan(ctx, id)
}

// List returns all ban entries, most recent first.
func (s *TrustService) List(ctx context.Context) ([]model.BanEntry, error) {
	return s.store.ListBans(ctx)
}

// IsBanned reports whether any entry matches the IP or device ID exactly.
// The comparison is a case-sensitive string match on either field.
func (s *TrustService) IsBanned(ctx context.Context, ip, deviceID string) (bool, error) {
	return s.store.MatchBan(ctx, ip, deviceID)
}
