package model

import "time"

// BanEntry blocks a submitter by IP address, device ID, or both. At least
// one of IP/DeviceID is always set. Duplicate entries for the same target
// are allowed; each ban is its own audit record.
type BanEntry struct {
	ID       int64     `json:"id" db:"id"`
	IP       string    `json:"ip,omitempty" db:"ip"`
	DeviceID string    `json:"deviceId,omitempty" db:"device_id"`
	Reason   string    `json:"reason,omitempty" db:"reason"`
	BannedAt time.Time `json:"bannedAt" db:"banned_at"`
}
