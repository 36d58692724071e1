package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/automation"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RecentLogChecker reads the durable integration log for recent rows
// matching a (resource, event type, tenant) tuple. It catches duplicates the
// in-memory guard cannot see: other process instances and restarts.
type RecentLogChecker interface {
	HasRecent(ctx context.Context, resourceID string, eventType string, companyID string, window time.Duration) (bool, error)
}

// EventToggles answers whether a tenant has a given event type enabled.
type EventToggles interface {
	EventEnabled(ctx context.Context, companyID string, eventType EventType) bool
}

// Dispatcher assembles event payloads and invokes the remote delivery
// procedure at most once per accepted attempt. Callers fire it on a separate
// goroutine; Dispatch never returns an error because delivery is a
// best-effort side channel of the committed mutation.
type Dispatcher struct {
	guard   *Guard
	logs    RecentLogChecker
	toggles EventToggles
	client  automation.Client
	logger  *zap.Logger
	metrics *observability.Metrics
	window  time.Duration
	now     func() time.Time
}

// DispatcherDeps bundles collaborators for the dispatcher.
type DispatcherDeps struct {
	Guard   *Guard
	Logs    RecentLogChecker
	Toggles EventToggles
	Client  automation.Client
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Window  time.Duration
}

// NewDispatcher constructs the dispatcher.
func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	window := deps.Window
	if window <= 0 {
		window = DefaultCooldown
	}
	guard := deps.Guard
	if guard == nil {
		guard = NewGuard(window)
	}
	return &Dispatcher{
		guard:   guard,
		logs:    deps.Logs,
		toggles: deps.Toggles,
		client:  deps.Client,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		window:  window,
		now:     time.Now,
	}
}

// Dispatch runs the guard checks and, when accepted, invokes the remote
// procedure. On failure the guard entry is released so a legitimate retry is
// not suppressed; the error is logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if d.client == nil {
		return
	}
	if d.toggles != nil && !d.toggles.EventEnabled(ctx, ev.CompanyID, ev.Type) {
		d.suppress(ev, "disabled")
		return
	}
	// Claiming the slot atomically means a second trigger arriving while
	// this one is still in the log check or the network call loses here.
	if !d.guard.CheckAndMark(ev.ResourceID, ev.Type) {
		d.suppress(ev, "cooldown")
		return
	}
	if d.logs != nil {
		recent, err := d.logs.HasRecent(ctx, ev.ResourceID, string(ev.Type), ev.CompanyID, d.window)
		if err != nil {
			// The cross-check is advisory; a failed read must not block
			// delivery.
			d.logger.Warn("integration log recency check failed", zap.Error(err),
				zap.String("resource_id", ev.ResourceID), zap.String("event_type", string(ev.Type)))
		} else if recent {
			d.guard.Release(ev.ResourceID, ev.Type)
			d.suppress(ev, "recent_log")
			return
		}
	}

	req := automation.InvokeRequest{
		CompanyID:    ev.CompanyID,
		EventType:    string(ev.Type),
		ResourceType: ev.ResourceType,
		ResourceID:   ev.ResourceID,
		Payload: Payload{
			EventType: ev.Type,
			Data:      ev.Data,
			OldData:   ev.OldData,
			Timestamp: d.now(),
			TenantID:  ev.CompanyID,
		},
	}

	if err := d.client.Invoke(ctx, req); err != nil {
		d.guard.Release(ev.ResourceID, ev.Type)
		if d.metrics != nil {
			d.metrics.EventDispatchFails.WithLabelValues(string(ev.Type)).Inc()
		}
		d.logger.Error("event dispatch failed", zap.Error(err),
			zap.String("event_type", string(ev.Type)),
			zap.String("resource_id", ev.ResourceID),
			zap.String("company_id", ev.CompanyID))
		return
	}

	if d.metrics != nil {
		d.metrics.EventsDispatched.WithLabelValues(string(ev.Type)).Inc()
	}
	d.logger.Debug("event dispatched",
		zap.String("event_type", string(ev.Type)),
		zap.String("resource_id", ev.ResourceID))
}

func (d *Dispatcher) suppress(ev Event, reason string) {
	if d.metrics != nil {
		d.metrics.EventsSuppressed.WithLabelValues(string(ev.Type), reason).Inc()
	}
	d.logger.Debug("event suppressed",
		zap.String("event_type", string(ev.Type)),
		zap.String("resource_id", ev.ResourceID),
		zap.String("reason", reason))
}
