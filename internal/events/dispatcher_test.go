package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/automation"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type fakeClient struct {
	requests []automation.InvokeRequest
	err      error
}

func (f *fakeClient) Invoke(_ context.Context, req automation.InvokeRequest) error {
	f.requests = append(f.requests, req)
	return f.err
}

type fakeLogChecker struct {
	recent bool
	err    error
	calls  int
}

func (f *fakeLogChecker) HasRecent(context.Context, string, string, string, time.Duration) (bool, error) {
	f.calls++
	return f.recent, f.err
}

type countingClient struct {
	mu    sync.Mutex
	calls int
}

func (c *countingClient) Invoke(context.Context, automation.InvokeRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func (c *countingClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// slowLogChecker holds the dispatch inside the durable-log round-trip long
// enough for a competing trigger to arrive.
type slowLogChecker struct {
	delay time.Duration
}

func (s *slowLogChecker) HasRecent(context.Context, string, string, string, time.Duration) (bool, error) {
	time.Sleep(s.delay)
	return false, nil
}

type fakeToggles struct {
	disabled map[EventType]bool
}

func (f *fakeToggles) EventEnabled(_ context.Context, _ string, eventType EventType) bool {
	return !f.disabled[eventType]
}

func ticketEvent(id string) Event {
	return Event{
		Type:         EventTicketUpdated,
		ResourceType: ResourceTypeTicket,
		ResourceID:   id,
		CompanyID:    "company-1",
		Data:         map[string]string{"id": id},
	}
}

func TestDispatchInvokesRemoteOnce(t *testing.T) {
	client := &fakeClient{}
	d := NewDispatcher(DispatcherDeps{
		Client: client,
		Logger: zap.NewNop(),
		Window: 5 * time.Second,
	})

	ev := ticketEvent("ticket-1")
	d.Dispatch(context.Background(), ev)
	d.Dispatch(context.Background(), ev)
	d.Dispatch(context.Background(), ev)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, "company-1", req.CompanyID)
	assert.Equal(t, "ticket.updated", req.EventType)
	assert.Equal(t, ResourceTypeTicket, req.ResourceType)
	assert.Equal(t, "ticket-1", req.ResourceID)

	payload, ok := req.Payload.(Payload)
	require.True(t, ok)
	assert.Equal(t, EventTicketUpdated, payload.EventType)
	assert.Equal(t, "company-1", payload.TenantID)
	assert.False(t, payload.Timestamp.IsZero())
}

func TestDispatchDistinctResourcesNotSuppressed(t *testing.T) {
	client := &fakeClient{}
	d := NewDispatcher(DispatcherDeps{Client: client, Logger: zap.NewNop()})

	d.Dispatch(context.Background(), ticketEvent("ticket-1"))
	d.Dispatch(context.Background(), ticketEvent("ticket-2"))

	assert.Len(t, client.requests, 2)
}

func TestDispatchFailureReleasesGuard(t *testing.T) {
	client := &fakeClient{err: errors.New("rpc down")}
	d := NewDispatcher(DispatcherDeps{Client: client, Logger: zap.NewNop()})

	ev := ticketEvent("ticket-1")
	d.Dispatch(context.Background(), ev)
	require.Len(t, client.requests, 1)

	// The failed attempt must not occupy the cooldown window.
	client.err = nil
	d.Dispatch(context.Background(), ev)
	assert.Len(t, client.requests, 2)
}

func TestDispatchConcurrentDuplicateTriggersInvokeOnce(t *testing.T) {
	client := &countingClient{}
	d := NewDispatcher(DispatcherDeps{
		Client: client,
		Logs:   &slowLogChecker{delay: 50 * time.Millisecond},
		Logger: zap.NewNop(),
	})

	ev := ticketEvent("ticket-1")
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), ev)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, client.count())
}

func TestDispatchSuppressedByRecentLogRow(t *testing.T) {
	client := &fakeClient{}
	logs := &fakeLogChecker{recent: true}
	d := NewDispatcher(DispatcherDeps{Client: client, Logs: logs, Logger: zap.NewNop()})

	d.Dispatch(context.Background(), ticketEvent("ticket-1"))

	assert.Empty(t, client.requests)
	assert.Equal(t, 1, logs.calls)

	// Suppression by the durable log releases the local claim, so once the
	// log window passes the next trigger is not blocked by a stale mark.
	logs.recent = false
	d.Dispatch(context.Background(), ticketEvent("ticket-1"))
	assert.Len(t, client.requests, 1)
}

func TestDispatchProceedsWhenLogCheckFails(t *testing.T) {
	client := &fakeClient{}
	logs := &fakeLogChecker{err: errors.New("db unavailable")}
	d := NewDispatcher(DispatcherDeps{Client: client, Logs: logs, Logger: zap.NewNop()})

	d.Dispatch(context.Background(), ticketEvent("ticket-1"))

	assert.Len(t, client.requests, 1)
}

func TestDispatchHonorsTenantToggle(t *testing.T) {
	client := &fakeClient{}
	toggles := &fakeToggles{disabled: map[EventType]bool{EventTicketUpdated: true}}
	d := NewDispatcher(DispatcherDeps{Client: client, Toggles: toggles, Logger: zap.NewNop()})

	d.Dispatch(context.Background(), ticketEvent("ticket-1"))
	assert.Empty(t, client.requests)

	created := ticketEvent("ticket-1")
	created.Type = EventTicketCreated
	d.Dispatch(context.Background(), created)
	assert.Len(t, client.requests, 1)
}

func TestDispatchNoClientIsNoop(t *testing.T) {
	logs := &fakeLogChecker{}
	d := NewDispatcher(DispatcherDeps{Logs: logs, Logger: zap.NewNop()})

	d.Dispatch(context.Background(), ticketEvent("ticket-1"))

	assert.Zero(t, logs.calls)
}

func TestDeriveUpdateEventType(t *testing.T) {
	agentA := "agent-a"
	agentB := "agent-b"

	cases := []struct {
		name    string
		old     *domain.Ticket
		updated *domain.Ticket
		want    EventType
	}{
		{
			name:    "nil to defined is assignment",
			old:     &domain.Ticket{},
			updated: &domain.Ticket{AgentID: &agentA},
			want:    EventTicketAssigned,
		},
		{
			name:    "agent change is assignment",
			old:     &domain.Ticket{AgentID: &agentA},
			updated: &domain.Ticket{AgentID: &agentB},
			want:    EventTicketAssigned,
		},
		{
			name:    "no prior snapshot with agent set is assignment",
			old:     nil,
			updated: &domain.Ticket{AgentID: &agentA},
			want:    EventTicketAssigned,
		},
		{
			name:    "same agent is plain update",
			old:     &domain.Ticket{AgentID: &agentA},
			updated: &domain.Ticket{AgentID: &agentA},
			want:    EventTicketUpdated,
		},
		{
			name:    "unassignment is plain update",
			old:     &domain.Ticket{AgentID: &agentA},
			updated: &domain.Ticket{},
			want:    EventTicketUpdated,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveUpdateEventType(tc.old, tc.updated))
		})
	}
}
