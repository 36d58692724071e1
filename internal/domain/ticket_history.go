package domain

import "time"

// HistoryChangeType enumerates audited ticket mutations.
type HistoryChangeType string

const (
	ChangeTypeStatus   HistoryChangeType = "STATUS"
	ChangeTypePriority HistoryChangeType = "PRIORITY"
	ChangeTypeAssignee HistoryChangeType = "ASSIGNEE"
	ChangeTypeTriage   HistoryChangeType = "TRIAGE"
)

// TicketHistory is an audit row describing one ticket change.
type TicketHistory struct {
	ID          string
	TicketID    string
	CompanyID   string
	ChangedByID *string
	ChangeType  HistoryChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}
