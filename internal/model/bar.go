package model

import "time"

// Bar statuses. Submissions from the public app enter at pending; once a
// moderator approves or rejects, the record never returns to pending.
const (
	BarStatusPending  = "pending"
	BarStatusApproved = "approved"
	BarStatusRejected = "rejected"
)

// Bar is a user-submitted venue listing under moderation.
type Bar struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Latitude       float64   `json:"latitude" db:"latitude"`
	Longitude      float64   `json:"longitude" db:"longitude"`
	RegularPrice   float64   `json:"regularPrice" db:"regular_price"`
	HappyHourPrice *float64  `json:"happyHourPrice,omitempty" db:"happy_hour_price"`
	Status         string    `json:"status" db:"status"`
	SubmittedAt    time.Time `json:"submittedAt" db:"submitted_at"`
	SubmittedByIP  string    `json:"submittedByIP" db:"submitted_by_ip"`
	DeviceID       string    `json:"deviceId" db:"device_id"`
}

// ValidBarStatus reports whether s is one of the three bar statuses.
func ValidBarStatus(s string) bool {
	return s == BarStatusPending || s == BarStatusApproved || s == BarStatusRejected
}
