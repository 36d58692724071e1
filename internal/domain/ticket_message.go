package domain

import "time"

// MessageAuthorType identifies who wrote a ticket message.
type MessageAuthorType string

const (
	AuthorTypeAgent     MessageAuthorType = "AGENT"
	AuthorTypeRequester MessageAuthorType = "REQUESTER"
)

// TicketMessage is one entry in a ticket conversation thread.
type TicketMessage struct {
	ID         string
	TicketID   string
	CompanyID  string
	AuthorType MessageAuthorType
	AuthorID   *string
	Internal   bool
	Body       string
	CreatedAt  time.Time
}
