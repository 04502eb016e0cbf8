package model

import "time"

// Report statuses. Resolution is one-way; there is no un-resolve.
const (
	ReportStatusPending  = "pending"
	ReportStatusResolved = "resolved"
)

// Report is an abuse report filed against a bar. Its lifecycle is
// independent of the bar's: resolving a report never mutates the bar.
type Report struct {
	ID           int64     `json:"id" db:"id"`
	BarID        int64     `json:"barId" db:"bar_id"`
	BarName      string    `json:"barName,omitempty" db:"bar_name"`
	Reason       string    `json:"reason" db:"reason"`
	Status       string    `json:"status" db:"status"`
	ReportedAt   time.Time `json:"reportedAt" db:"reported_at"`
	ReportedByIP string    `json:"reportedByIP" db:"reported_by_ip"`
	DeviceID     string    `json:"deviceId" db:"device_id"`
}
