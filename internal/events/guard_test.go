package events

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(cooldown time.Duration) (*Guard, *time.Time) {
	g := NewGuard(cooldown)
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return current }
	return g, &current
}

func TestGuardSuppressesWithinCooldown(t *testing.T) {
	g, clock := newTestGuard(5 * time.Second)

	require.True(t, g.CheckAndMark("ticket-1", EventTicketUpdated))
	assert.False(t, g.CheckAndMark("ticket-1", EventTicketUpdated))

	*clock = clock.Add(4999 * time.Millisecond)
	assert.True(t, g.RecentlySent("ticket-1", EventTicketUpdated))
	assert.False(t, g.CheckAndMark("ticket-1", EventTicketUpdated))

	*clock = clock.Add(2 * time.Millisecond)
	assert.False(t, g.RecentlySent("ticket-1", EventTicketUpdated))
	assert.True(t, g.CheckAndMark("ticket-1", EventTicketUpdated))
}

func TestGuardKeysAreIndependent(t *testing.T) {
	g, _ := newTestGuard(5 * time.Second)

	require.True(t, g.CheckAndMark("ticket-1", EventTicketUpdated))

	assert.True(t, g.RecentlySent("ticket-1", EventTicketUpdated))
	assert.True(t, g.CheckAndMark("ticket-1", EventTicketAssigned))
	assert.True(t, g.CheckAndMark("ticket-2", EventTicketUpdated))
}

func TestGuardReleaseAllowsImmediateRetry(t *testing.T) {
	g, _ := newTestGuard(5 * time.Second)

	require.True(t, g.CheckAndMark("ticket-1", EventTicketUpdated))
	require.True(t, g.RecentlySent("ticket-1", EventTicketUpdated))

	g.Release("ticket-1", EventTicketUpdated)
	assert.False(t, g.RecentlySent("ticket-1", EventTicketUpdated))
	assert.True(t, g.CheckAndMark("ticket-1", EventTicketUpdated))
}

func TestGuardCheckAndMarkSingleWinnerUnderConcurrency(t *testing.T) {
	g := NewGuard(5 * time.Second)

	const goroutines = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.CheckAndMark("ticket-1", EventTicketUpdated) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestGuardEvictsStaleEntriesPastThreshold(t *testing.T) {
	g, clock := newTestGuard(5 * time.Second)

	for i := 0; i < guardMaxEntries; i++ {
		require.True(t, g.CheckAndMark(fmt.Sprintf("ticket-%d", i), EventTicketCreated))
	}
	require.Equal(t, guardMaxEntries, g.Len())

	// Past twice the cooldown the old entries are eligible for eviction on
	// the next claim that crosses the threshold.
	*clock = clock.Add(11 * time.Second)
	require.True(t, g.CheckAndMark("ticket-fresh", EventTicketCreated))

	assert.Equal(t, 1, g.Len())
	assert.True(t, g.RecentlySent("ticket-fresh", EventTicketCreated))
}

func TestGuardKeepsRecentEntriesDuringEviction(t *testing.T) {
	g, clock := newTestGuard(5 * time.Second)

	for i := 0; i < guardMaxEntries; i++ {
		require.True(t, g.CheckAndMark(fmt.Sprintf("old-%d", i), EventTicketCreated))
	}

	// Within twice the cooldown nothing is stale, so the map grows past the
	// threshold rather than dropping live suppression state.
	*clock = clock.Add(2 * time.Second)
	require.False(t, g.CheckAndMark("old-0", EventTicketCreated))
	*clock = clock.Add(4 * time.Second)
	require.True(t, g.CheckAndMark("fresh", EventTicketCreated))

	assert.Equal(t, guardMaxEntries+1, g.Len())
}
