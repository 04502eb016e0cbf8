// Package query is the console's projection layer: pure functions that
// filter, sort, and aggregate store contents for display, and that absorb
// the legacy field-casing mess at the read boundary. Nothing in this
// package has side effects.
package query

import (
	"sort"
	"time"

	"github.com/budbeer/console/internal/model"
)

// Sort orders accepted by the bar list.
const (
	SortRecent    = "recent"
	SortPriceAsc  = "priceAsc"
	SortPriceDesc = "priceDesc"
)

// BarFilter selects and orders bars for a console view. An empty or "all"
// Status keeps everything; an empty Sort means most recent first.
type BarFilter struct {
	Status string
	Sort   string
}

// Bars returns the bars matching the filter in the requested order. The
// input slice is expected in insertion order (ascending id) and is not
// modified. Price sorts are total orders with insertion order breaking
// ties; the recency sort is submittedAt descending with ascending id
// breaking ties.
func Bars(bars []model.Bar, f BarFilter) []model.Bar {
	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if f.Status != "" && f.Status != "all" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].RegularPrice < out[j].RegularPrice
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].RegularPrice > out[j].RegularPrice
		})
	default: // SortRecent
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
				return out[i].SubmittedAt.After(out[j].SubmittedAt)
			}
			return out[i].ID < out[j].ID
		})
	}
	return out
}

// Reports returns the reports matching the status filter, preserving
// insertion order. An empty or "all" status keeps everything.
func Reports(reports []model.Report, status string) []model.Report {
	out := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		if status != "" && status != "all" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Stats aggregates the dashboard counters from current store contents.
// "This week" means submitted within the seven days before now.
func Stats(bars []model.Bar, reports []model.Report, bans []model.BanEntry, now time.Time) model.Stats {
	stats := model.Stats{
		TotalBars: len(bars),
		BannedIPs: len(bans),
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	devices := make(map[string]struct{})

	for _, b := range bars {
		switch b.Status {
		case model.BarStatusPending:
			stats.Pending++
		case model.BarStatusApproved:
			stats.Approved++
		case model.BarStatusRejected:
			stats.Rejected++
		}
		if b.SubmittedAt.After(weekAgo) {
			stats.BarsThisWeek++
		}
		if b.DeviceID != "" {
			devices[b.DeviceID] = struct{}{}
		}
	}
	stats.ActiveDevices = len(devices)

	for _, r := range reports {
		if r.Status == model.ReportStatusPending {
			stats.Reports++
		}
	}
	return stats
}
