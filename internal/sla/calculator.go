package sla

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AtRiskHorizon is how far ahead of a deadline a ticket flips to at_risk.
const AtRiskHorizon = time.Hour

// Deadlines are the absolute SLA timestamps for one ticket.
type Deadlines struct {
	FirstResponse time.Time
	Resolution    time.Time
}

// ComputeDeadlines derives absolute deadlines from creation time and
// priority. Plain wall-clock hour addition; pure, so repeated calls with the
// same inputs are bit-identical.
func ComputeDeadlines(createdAt time.Time, priority domain.TicketPriority, cfg Config) Deadlines {
	return Deadlines{
		FirstResponse: createdAt.Add(time.Duration(hoursFor(cfg.FirstResponseHours, priority)) * time.Hour),
		Resolution:    createdAt.Add(time.Duration(hoursFor(cfg.ResolutionHours, priority)) * time.Hour),
	}
}

// DeriveStatus classifies now against the two deadlines: breached when past
// either, at_risk when either falls within the next hour, else on_track.
func DeriveStatus(now, firstResponse, resolution time.Time) domain.SLAStatus {
	if now.After(firstResponse) || now.After(resolution) {
		return domain.SLAStatusBreached
	}
	horizon := now.Add(AtRiskHorizon)
	if horizon.After(firstResponse) || horizon.After(resolution) {
		return domain.SLAStatusAtRisk
	}
	return domain.SLAStatusOnTrack
}

func hoursFor(table map[domain.TicketPriority]int, priority domain.TicketPriority) int {
	if hours, ok := table[priority]; ok {
		return hours
	}
	// Unknown priority falls back to the medium budget.
	return table[domain.TicketPriorityMedium]
}
