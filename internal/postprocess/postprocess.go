// Package postprocess annotates aggregated records with days-remaining and
// urgency, and summarizes a search for the stats endpoints. It runs after
// aggregation, on the caller's copy, never on cached records.
package postprocess

import (
	"time"

	"grantfinder-engine/internal/domain"
)

// Urgency buckets by days remaining.
const (
	UrgencyCritical = "critical" // <= 7 days (or unknown deadline)
	UrgencyHigh     = "high"     // <= 30 days
	UrgencyMedium   = "medium"   // <= 60 days
	UrgencyLow      = "low"
)

type Stats struct {
	TotalResults int     `json:"total_results"`
	ActiveGrants int     `json:"active_grants"`
	UrgentGrants int     `json:"urgent_grants"`
	SearchTime   float64 `json:"search_time"`
}

// Annotate fills DaysRemaining and Urgency in place. An unknown deadline
// counts as zero days remaining, which lands in the critical bucket — the
// user should check the official call rather than assume time is left.
func Annotate(grants []domain.Grant, now time.Time) {
	for i := range grants {
		days := 0
		if d := grants[i].Deadline; d.Valid {
			days = int(d.Time.Sub(now).Hours() / 24)
			if days < 0 {
				days = 0
			}
		}
		grants[i].DaysRemaining = days

		switch {
		case days <= 7:
			grants[i].Urgency = UrgencyCritical
		case days <= 30:
			grants[i].Urgency = UrgencyHigh
		case days <= 60:
			grants[i].Urgency = UrgencyMedium
		default:
			grants[i].Urgency = UrgencyLow
		}
	}
}

// Summarize computes the per-search statistics over annotated records.
func Summarize(grants []domain.Grant, started time.Time, now time.Time) Stats {
	st := Stats{TotalResults: len(grants)}
	for _, g := range grants {
		if g.DaysRemaining > 0 {
			st.ActiveGrants++
		}
		if g.Urgency == UrgencyCritical || g.Urgency == UrgencyHigh {
			st.UrgentGrants++
		}
	}
	if !started.IsZero() {
		st.SearchTime = float64(now.Sub(started).Milliseconds()) / 1000.0
	}
	return st
}
