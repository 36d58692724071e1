package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows. Mutations commit first; the
// outbound event dispatch is fired on a detached goroutine afterwards and can
// never fail or roll back the mutation.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	resolver   *sla.Resolver
	dispatcher *events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	SLAResolver *sla.Resolver
	Dispatcher  *events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	RequesterID string
	ContactID   *string
	Title       string
	Description string
	Category    string
	Priority    domain.TicketPriority
}

// TriageInput carries AI classification results posted back by the
// automation system.
type TriageInput struct {
	Classification      string
	SuggestedPriority   domain.TicketPriority
	ConfidenceScore     float64
	NeedsAdditionalInfo bool
	NeedsHumanReview    bool
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		resolver:   deps.SLAResolver,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicket opens a ticket, computes its SLA deadlines up front and emits
// ticket.created.
func (s *TicketService) CreateTicket(ctx context.Context, companyID string, input TicketCreateInput) (*domain.Ticket, error) {
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		CompanyID:   companyID,
		RequesterID: input.RequesterID,
		ContactID:   input.ContactID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Status:      domain.TicketStatusNew,
		Priority:    input.Priority,
	}

	now := time.Now()
	cfg := s.resolver.Resolve(ctx, companyID)
	deadlines := sla.ComputeDeadlines(now, ticket.Priority, cfg)
	status := sla.DeriveStatus(now, deadlines.FirstResponse, deadlines.Resolution)
	ticket.FirstResponseDeadline = &deadlines.FirstResponse
	ticket.ResolutionDeadline = &deadlines.Resolution
	ticket.SLAStatus = &status

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.dispatchAsync(events.Event{
		Type:         events.EventTicketCreated,
		ResourceType: events.ResourceTypeTicket,
		ResourceID:   ticket.ID,
		CompanyID:    ticket.CompanyID,
		Data:         events.SnapshotTicket(ticket),
	})
	return ticket, nil
}

// GetTicket fetches a tenant-scoped ticket.
func (s *TicketService) GetTicket(ctx context.Context, companyID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus changes ticket status and emits ticket.updated.
func (s *TicketService) UpdateStatus(ctx context.Context, companyID, ticketID string, actorID *string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	ticket, err := s.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	previous := *ticket
	oldStatus := ticket.Status
	if oldStatus == newStatus {
		return ticket, nil
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordChange(ctx, actorID, ticket, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus})

	s.dispatchAsync(events.Event{
		Type:         events.DeriveUpdateEventType(&previous, ticket),
		ResourceType: events.ResourceTypeTicket,
		ResourceID:   ticket.ID,
		CompanyID:    ticket.CompanyID,
		Data:         events.SnapshotTicket(ticket),
		OldData:      events.SnapshotTicket(&previous),
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority, recomputes SLA deadlines from the
// original creation time and emits ticket.updated.
func (s *TicketService) UpdatePriority(ctx context.Context, companyID, ticketID string, actorID *string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	previous := *ticket
	oldPriority := ticket.Priority
	if oldPriority == newPriority {
		return ticket, nil
	}
	ticket.Priority = newPriority

	cfg := s.resolver.Resolve(ctx, companyID)
	deadlines := sla.ComputeDeadlines(ticket.CreatedAt, ticket.Priority, cfg)
	status := sla.DeriveStatus(time.Now(), deadlines.FirstResponse, deadlines.Resolution)
	ticket.FirstResponseDeadline = &deadlines.FirstResponse
	ticket.ResolutionDeadline = &deadlines.Resolution
	ticket.SLAStatus = &status

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordChange(ctx, actorID, ticket, domain.ChangeTypePriority,
		map[string]any{"priority": oldPriority},
		map[string]any{"priority": newPriority})

	s.dispatchAsync(events.Event{
		Type:         events.DeriveUpdateEventType(&previous, ticket),
		ResourceType: events.ResourceTypeTicket,
		ResourceID:   ticket.ID,
		CompanyID:    ticket.CompanyID,
		Data:         events.SnapshotTicket(ticket),
		OldData:      events.SnapshotTicket(&previous),
	})
	return ticket, nil
}

// AssignTicket sets the owning agent. The dispatched event type is derived
// from the agent transition: empty or different to defined is
// ticket.assigned, anything else ticket.updated.
func (s *TicketService) AssignTicket(ctx context.Context, companyID, ticketID string, actorID *string, agentID *string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	previous := *ticket
	oldAgent := ticket.AgentID
	ticket.AgentID = agentID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordChange(ctx, actorID, ticket, domain.ChangeTypeAssignee,
		map[string]any{"agent_id": oldAgent},
		map[string]any{"agent_id": agentID})

	s.dispatchAsync(events.Event{
		Type:         events.DeriveUpdateEventType(&previous, ticket),
		ResourceType: events.ResourceTypeTicket,
		ResourceID:   ticket.ID,
		CompanyID:    ticket.CompanyID,
		Data:         events.SnapshotTicket(ticket),
		OldData:      events.SnapshotTicket(&previous),
	})
	return ticket, nil
}

// ApplyTriage records AI classification results. When the classifier asks
// for neither more info nor human review the ticket moves to triaged.
func (s *TicketService) ApplyTriage(ctx context.Context, companyID, ticketID string, input TriageInput) (*domain.Ticket, error) {
	if input.SuggestedPriority != "" && !domain.ValidPriority(input.SuggestedPriority) {
		return nil, apperrors.NewValidationError("invalid suggested priority", map[string]any{"priority": input.SuggestedPriority})
	}
	ticket, err := s.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	previous := *ticket
	classification := strings.TrimSpace(input.Classification)
	ticket.Triage = domain.TicketTriage{
		NeedsAdditionalInfo: input.NeedsAdditionalInfo,
		NeedsHumanReview:    input.NeedsHumanReview,
	}
	if classification != "" {
		ticket.Triage.Classification = &classification
	}
	if input.SuggestedPriority != "" {
		suggested := input.SuggestedPriority
		ticket.Triage.SuggestedPriority = &suggested
	}
	if input.ConfidenceScore > 0 {
		score := input.ConfidenceScore
		ticket.Triage.ConfidenceScore = &score
	}
	if ticket.Status == domain.TicketStatusNew && !input.NeedsAdditionalInfo && !input.NeedsHumanReview {
		ticket.Status = domain.TicketStatusTriaged
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordChange(ctx, nil, ticket, domain.ChangeTypeTriage,
		map[string]any{"status": previous.Status},
		map[string]any{"status": ticket.Status, "classification": classification})

	s.dispatchAsync(events.Event{
		Type:         events.EventTicketUpdated,
		ResourceType: events.ResourceTypeTicket,
		ResourceID:   ticket.ID,
		CompanyID:    ticket.CompanyID,
		Data:         events.SnapshotTicket(ticket),
		OldData:      events.SnapshotTicket(&previous),
	})
	return ticket, nil
}

// ListHistory returns audit entries for a ticket.
func (s *TicketService) ListHistory(ctx context.Context, companyID, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	if _, err := s.tickets.GetByID(ctx, companyID, ticketID); err != nil {
		return nil, apperrors.MapError(err)
	}
	entries, err := s.history.ListByTicket(ctx, companyID, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) recordChange(ctx context.Context, actorID *string, ticket *domain.Ticket, changeType domain.HistoryChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:    ticket.ID,
		CompanyID:   ticket.CompanyID,
		ChangedByID: actorID,
		ChangeType:  changeType,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("history write failed", zap.Error(err), zap.String("ticket_id", ticket.ID))
	}
}

// dispatchAsync hands the event to the dispatcher on a detached context so
// the request path never waits on, or fails because of, notification
// delivery.
func (s *TicketService) dispatchAsync(ev events.Event) {
	if s.dispatcher == nil {
		return
	}
	go s.dispatcher.Dispatch(context.Background(), ev)
}

func generateTicketKey() string {
	return "HD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
