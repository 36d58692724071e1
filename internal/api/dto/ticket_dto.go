package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	RequesterID string                `json:"requester_id"`
	ContactID   *string               `json:"contact_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignRequest payload. A null agent_id unassigns the ticket.
type AssignRequest struct {
	AgentID *string `json:"agent_id"`
}

// TriageRequest carries classifier results posted by the automation system.
type TriageRequest struct {
	Classification      string                `json:"classification"`
	SuggestedPriority   domain.TicketPriority `json:"suggested_priority"`
	ConfidenceScore     float64               `json:"confidence_score"`
	NeedsAdditionalInfo bool                  `json:"needs_additional_info"`
	NeedsHumanReview    bool                  `json:"needs_human_review"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID                    string                `json:"id"`
	ExternalKey           string                `json:"external_key"`
	CompanyID             string                `json:"company_id"`
	RequesterID           string                `json:"requester_id"`
	ContactID             *string               `json:"contact_id,omitempty"`
	AgentID               *string               `json:"agent_id,omitempty"`
	Title                 string                `json:"title"`
	Description           string                `json:"description"`
	Category              string                `json:"category"`
	Status                domain.TicketStatus   `json:"status"`
	Priority              domain.TicketPriority `json:"priority"`
	Triage                domain.TicketTriage   `json:"triage"`
	FirstResponseDeadline *time.Time            `json:"first_response_deadline,omitempty"`
	ResolutionDeadline    *time.Time            `json:"resolution_deadline,omitempty"`
	SLAStatus             *domain.SLAStatus     `json:"sla_status,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body     string `json:"body"`
	Internal bool   `json:"internal"`
}

// MessageResponse represents a thread message.
type MessageResponse struct {
	ID         string                   `json:"id"`
	TicketID   string                   `json:"ticket_id"`
	AuthorType domain.MessageAuthorType `json:"author_type"`
	AuthorID   *string                  `json:"author_id,omitempty"`
	Internal   bool                     `json:"internal"`
	Body       string                   `json:"body"`
	CreatedAt  time.Time                `json:"created_at"`
}

// HistoryResponse represents an audit entry.
type HistoryResponse struct {
	ID          string                   `json:"id"`
	ChangeType  domain.HistoryChangeType `json:"change_type"`
	ChangedByID *string                  `json:"changed_by_id,omitempty"`
	OldValue    map[string]any           `json:"old_value,omitempty"`
	NewValue    map[string]any           `json:"new_value,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// IntegrationLogResponse represents one outbound delivery record.
type IntegrationLogResponse struct {
	ID             string                      `json:"id"`
	EventType      string                      `json:"event_type"`
	ResourceType   string                      `json:"resource_type"`
	ResourceID     string                      `json:"resource_id"`
	Status         domain.IntegrationLogStatus `json:"status"`
	ResponseStatus *int                        `json:"response_status,omitempty"`
	ErrorMessage   *string                     `json:"error_message,omitempty"`
	RetryCount     int                         `json:"retry_count"`
	CreatedAt      time.Time                   `json:"created_at"`
}
