package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// MessageService appends conversation messages and emits message.created.
type MessageService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	dispatcher *events.Dispatcher
	logger     *zap.Logger
}

// NewMessageService constructs the service.
func NewMessageService(tickets repository.TicketRepository, messages repository.TicketMessageRepository, dispatcher *events.Dispatcher, logger *zap.Logger) *MessageService {
	return &MessageService{tickets: tickets, messages: messages, dispatcher: dispatcher, logger: logger}
}

// MessageInput describes a new conversation entry.
type MessageInput struct {
	AuthorType domain.MessageAuthorType
	AuthorID   *string
	Internal   bool
	Body       string
}

// AddMessage appends a message to a ticket. Internal notes are persisted but
// never forwarded to the automation system.
func (s *MessageService) AddMessage(ctx context.Context, companyID, ticketID string, input MessageInput) (*domain.TicketMessage, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	msg := &domain.TicketMessage{
		TicketID:   ticket.ID,
		CompanyID:  companyID,
		AuthorType: input.AuthorType,
		AuthorID:   input.AuthorID,
		Internal:   input.Internal,
		Body:       body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	if !msg.Internal && s.dispatcher != nil {
		ev := events.Event{
			Type:         events.EventMessageCreated,
			ResourceType: events.ResourceTypeMessage,
			ResourceID:   msg.ID,
			CompanyID:    companyID,
			Data:         events.SnapshotMessage(msg),
		}
		go s.dispatcher.Dispatch(context.Background(), ev)
	}
	return msg, nil
}

// ListMessages returns the conversation for a ticket.
func (s *MessageService) ListMessages(ctx context.Context, companyID, ticketID string) ([]domain.TicketMessage, error) {
	if _, err := s.tickets.GetByID(ctx, companyID, ticketID); err != nil {
		return nil, apperrors.MapError(err)
	}
	msgs, err := s.messages.ListByTicket(ctx, companyID, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}
