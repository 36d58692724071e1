package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates outbound automation event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket.created"
	EventTicketUpdated  EventType = "ticket.updated"
	EventTicketAssigned EventType = "ticket.assigned"
	EventMessageCreated EventType = "message.created"
)

// Resource types referenced by integration log rows.
const (
	ResourceTypeTicket  = "ticket"
	ResourceTypeMessage = "message"
)

// Event is one outbound notification handed to the dispatcher.
type Event struct {
	Type         EventType
	ResourceType string
	ResourceID   string
	CompanyID    string
	Data         any
	OldData      any
}

// Payload is the wire shape delivered to the automation system.
type Payload struct {
	EventType EventType `json:"eventType"`
	Data      any       `json:"data"`
	OldData   any       `json:"oldData,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	TenantID  string    `json:"tenantId"`
}

// TicketSnapshot is the ticket projection carried in event payloads.
type TicketSnapshot struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	CompanyID   string                `json:"company_id"`
	RequesterID string                `json:"requester_id"`
	AgentID     *string               `json:"agent_id,omitempty"`
	Title       string                `json:"title"`
	Category    string                `json:"category"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// MessageSnapshot is the message projection carried in event payloads.
type MessageSnapshot struct {
	ID         string                   `json:"id"`
	TicketID   string                   `json:"ticket_id"`
	CompanyID  string                   `json:"company_id"`
	AuthorType domain.MessageAuthorType `json:"author_type"`
	AuthorID   *string                  `json:"author_id,omitempty"`
	Internal   bool                     `json:"internal"`
	Body       string                   `json:"body"`
	CreatedAt  time.Time                `json:"created_at"`
}

// SnapshotTicket projects a domain ticket for the wire.
func SnapshotTicket(t *domain.Ticket) TicketSnapshot {
	return TicketSnapshot{
		ID:          t.ID,
		ExternalKey: t.ExternalKey,
		CompanyID:   t.CompanyID,
		RequesterID: t.RequesterID,
		AgentID:     t.AgentID,
		Title:       t.Title,
		Category:    t.Category,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// SnapshotMessage projects a domain message for the wire.
func SnapshotMessage(m *domain.TicketMessage) MessageSnapshot {
	return MessageSnapshot{
		ID:         m.ID,
		TicketID:   m.TicketID,
		CompanyID:  m.CompanyID,
		AuthorType: m.AuthorType,
		AuthorID:   m.AuthorID,
		Internal:   m.Internal,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}

// DeriveUpdateEventType classifies an update as an assignment when the agent
// field moved from empty or a different agent to a defined value.
func DeriveUpdateEventType(old, updated *domain.Ticket) EventType {
	if updated.AgentID != nil {
		if old == nil || old.AgentID == nil || *old.AgentID != *updated.AgentID {
			return EventTicketAssigned
		}
	}
	return EventTicketUpdated
}
