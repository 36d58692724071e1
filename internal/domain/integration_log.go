package domain

import "time"

// IntegrationLogStatus enumerates delivery outcomes for outbound events.
type IntegrationLogStatus string

const (
	IntegrationStatusPending    IntegrationLogStatus = "pending"
	IntegrationStatusSuccess    IntegrationLogStatus = "success"
	IntegrationStatusFailed     IntegrationLogStatus = "failed"
	IntegrationStatusMaxRetries IntegrationLogStatus = "max_retries_reached"
)

// IntegrationLog is one durable record of an outbound notification attempt.
// For a given (resource id, event type, company) tuple no two rows inside the
// dedup window should both represent dispatched notifications; the guard and
// the recency cross-check approximate that without a uniqueness constraint.
type IntegrationLog struct {
	ID             string
	CompanyID      string
	EventType      string
	ResourceType   string
	ResourceID     string
	Status         IntegrationLogStatus
	ResponseStatus *int
	ErrorMessage   *string
	RetryCount     int
	CreatedAt      time.Time
}
