package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// SLAService recomputes and persists ticket SLA fields. The computation is a
// pure function of creation time, priority and now, so concurrent
// recalculations race harmlessly.
type SLAService struct {
	tickets  repository.TicketRepository
	resolver *sla.Resolver
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewSLAService constructs the service.
func NewSLAService(tickets repository.TicketRepository, resolver *sla.Resolver, metrics *observability.Metrics, logger *zap.Logger) *SLAService {
	return &SLAService{
		tickets:  tickets,
		resolver: resolver,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Recalculate performs the read-compute-write for one ticket and returns the
// refreshed ticket.
func (s *SLAService) Recalculate(ctx context.Context, companyID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, companyID, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	cfg := s.resolver.Resolve(ctx, companyID)
	deadlines := sla.ComputeDeadlines(ticket.CreatedAt, ticket.Priority, cfg)
	status := sla.DeriveStatus(s.now(), deadlines.FirstResponse, deadlines.Resolution)

	if err := s.tickets.UpdateSLAFields(ctx, companyID, ticketID, deadlines.FirstResponse, deadlines.Resolution, status); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.metrics != nil {
		s.metrics.SLAStatusTotal.WithLabelValues(string(status)).Inc()
	}

	ticket.FirstResponseDeadline = &deadlines.FirstResponse
	ticket.ResolutionDeadline = &deadlines.Resolution
	ticket.SLAStatus = &status
	return ticket, nil
}

// RefreshActive recomputes SLA status for open tickets nearing or past their
// deadlines. Used by the background monitor; individual failures are logged
// and skipped so one bad row does not stall the sweep.
func (s *SLAService) RefreshActive(ctx context.Context, batchSize int) (int, error) {
	tickets, err := s.tickets.ListActiveWithDeadlines(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	updated := 0
	now := s.now()
	for i := range tickets {
		ticket := &tickets[i]
		if ticket.FirstResponseDeadline == nil || ticket.ResolutionDeadline == nil {
			continue
		}
		status := sla.DeriveStatus(now, *ticket.FirstResponseDeadline, *ticket.ResolutionDeadline)
		if ticket.SLAStatus != nil && *ticket.SLAStatus == status {
			continue
		}
		if err := s.tickets.UpdateSLAFields(ctx, ticket.CompanyID, ticket.ID,
			*ticket.FirstResponseDeadline, *ticket.ResolutionDeadline, status); err != nil {
			s.logger.Warn("sla refresh failed", zap.Error(err), zap.String("ticket_id", ticket.ID))
			continue
		}
		if s.metrics != nil {
			s.metrics.SLAStatusTotal.WithLabelValues(string(status)).Inc()
		}
		updated++
	}
	return updated, nil
}
