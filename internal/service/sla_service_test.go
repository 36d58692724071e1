package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func newTestSLAService(repo *fakeTicketRepo) *SLAService {
	return NewSLAService(repo, nil, nil, zap.NewNop())
}

func seedTicket(t *testing.T, repo *fakeTicketRepo, priority domain.TicketPriority) *domain.Ticket {
	t.Helper()
	tickets := newTestTicketService(repo, &fakeHistoryRepo{})
	ticket, err := tickets.CreateTicket(context.Background(), "company-1", TicketCreateInput{
		RequesterID: "user-1",
		Title:       "t",
		Priority:    priority,
	})
	require.NoError(t, err)
	return ticket
}

func TestRecalculatePersistsDerivedStatus(t *testing.T) {
	repo := newFakeTicketRepo()
	ticket := seedTicket(t, repo, domain.TicketPriorityCritical)

	svc := newTestSLAService(repo)
	// Two hours in, a critical ticket has blown its one hour first response
	// budget.
	svc.now = func() time.Time { return ticket.CreatedAt.Add(2 * time.Hour) }

	refreshed, err := svc.Recalculate(context.Background(), "company-1", ticket.ID)
	require.NoError(t, err)

	require.NotNil(t, refreshed.SLAStatus)
	assert.Equal(t, domain.SLAStatusBreached, *refreshed.SLAStatus)
	assert.Equal(t, ticket.CreatedAt.Add(time.Hour), *refreshed.FirstResponseDeadline)

	stored, err := repo.GetByID(context.Background(), "company-1", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SLAStatusBreached, *stored.SLAStatus)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	repo := newFakeTicketRepo()
	ticket := seedTicket(t, repo, domain.TicketPriorityHigh)

	svc := newTestSLAService(repo)
	frozen := ticket.CreatedAt.Add(30 * time.Minute)
	svc.now = func() time.Time { return frozen }

	first, err := svc.Recalculate(context.Background(), "company-1", ticket.ID)
	require.NoError(t, err)
	second, err := svc.Recalculate(context.Background(), "company-1", ticket.ID)
	require.NoError(t, err)

	assert.Equal(t, *first.SLAStatus, *second.SLAStatus)
	assert.Equal(t, *first.FirstResponseDeadline, *second.FirstResponseDeadline)
	assert.Equal(t, *first.ResolutionDeadline, *second.ResolutionDeadline)
}

func TestRefreshActiveUpdatesOnlyChangedRows(t *testing.T) {
	repo := newFakeTicketRepo()
	fresh := seedTicket(t, repo, domain.TicketPriorityLow)
	stale := seedTicket(t, repo, domain.TicketPriorityCritical)

	svc := newTestSLAService(repo)
	svc.now = func() time.Time { return stale.CreatedAt.Add(90 * time.Minute) }

	updated, err := svc.RefreshActive(context.Background(), 100)
	require.NoError(t, err)

	// The critical ticket breached its first response budget; the low
	// priority ticket is still on track and untouched.
	assert.Equal(t, 1, updated)

	storedStale, err := repo.GetByID(context.Background(), "company-1", stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SLAStatusBreached, *storedStale.SLAStatus)

	storedFresh, err := repo.GetByID(context.Background(), "company-1", fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SLAStatusOnTrack, *storedFresh.SLAStatus)
}

func TestRefreshActiveSkipsResolvedTickets(t *testing.T) {
	repo := newFakeTicketRepo()
	ticket := seedTicket(t, repo, domain.TicketPriorityCritical)

	stored := repo.tickets[ticket.ID]
	stored.Status = domain.TicketStatusResolved

	svc := newTestSLAService(repo)
	svc.now = func() time.Time { return ticket.CreatedAt.Add(48 * time.Hour) }

	updated, err := svc.RefreshActive(context.Background(), 100)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
