package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew              TicketStatus = "new"
	TicketStatusOpen             TicketStatus = "open"
	TicketStatusWaitingForClient TicketStatus = "waiting_for_client"
	TicketStatusWaitingForAgent  TicketStatus = "waiting_for_agent"
	TicketStatusInProgress       TicketStatus = "in_progress"
	TicketStatusResolved         TicketStatus = "resolved"
	TicketStatusClosed           TicketStatus = "closed"
	TicketStatusTriaged          TicketStatus = "triaged"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// SLAStatus is the coarse compliance state derived from deadlines.
type SLAStatus string

const (
	SLAStatusOnTrack  SLAStatus = "on_track"
	SLAStatusAtRisk   SLAStatus = "at_risk"
	SLAStatusBreached SLAStatus = "breached"
)

// TicketTriage carries AI-derived classification fields.
type TicketTriage struct {
	Classification      *string         `json:"classification,omitempty"`
	SuggestedPriority   *TicketPriority `json:"suggested_priority,omitempty"`
	ConfidenceScore     *float64        `json:"confidence_score,omitempty"`
	NeedsAdditionalInfo bool            `json:"needs_additional_info"`
	NeedsHumanReview    bool            `json:"needs_human_review"`
}

// Ticket is the tenant-scoped aggregate for support requests.
type Ticket struct {
	ID          string
	ExternalKey string
	CompanyID   string
	RequesterID string
	ContactID   *string
	AgentID     *string
	Title       string
	Description string
	Category    string
	Status      TicketStatus
	Priority    TicketPriority
	Triage      TicketTriage
	// SLA fields are computed from CreatedAt and Priority; nil until the
	// first calculation runs.
	FirstResponseDeadline *time.Time
	ResolutionDeadline    *time.Time
	SLAStatus             *SLAStatus
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ValidStatus reports membership in the closed status enumeration.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusWaitingForClient,
		TicketStatusWaitingForAgent, TicketStatusInProgress,
		TicketStatusResolved, TicketStatusClosed, TicketStatusTriaged:
		return true
	}
	return false
}

// ValidPriority reports membership in the closed priority enumeration.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}
