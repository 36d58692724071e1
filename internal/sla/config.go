package sla

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Config maps ticket priority to response and resolution time budgets.
// BusinessHours is carried for parity with stored tenant configuration but
// deadline math is plain wall-clock addition and does not consume it.
type Config struct {
	FirstResponseHours map[domain.TicketPriority]int `json:"first_response_hours"`
	ResolutionHours    map[domain.TicketPriority]int `json:"resolution_hours"`
	BusinessHours      BusinessHours                 `json:"business_hours"`
}

// BusinessHours describes a tenant's working window.
type BusinessHours struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Days  []string `json:"days"`
}

// DefaultConfig returns the budgets applied when a tenant has no override.
func DefaultConfig() Config {
	return Config{
		FirstResponseHours: map[domain.TicketPriority]int{
			domain.TicketPriorityLow:      24,
			domain.TicketPriorityMedium:   8,
			domain.TicketPriorityHigh:     4,
			domain.TicketPriorityCritical: 1,
		},
		ResolutionHours: map[domain.TicketPriority]int{
			domain.TicketPriorityLow:      72,
			domain.TicketPriorityMedium:   48,
			domain.TicketPriorityHigh:     24,
			domain.TicketPriorityCritical: 8,
		},
		BusinessHours: BusinessHours{
			Start: "09:00",
			End:   "18:00",
			Days:  []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		},
	}
}

// SettingReader fetches a raw per-tenant setting value.
type SettingReader interface {
	Get(ctx context.Context, companyID, key string) ([]byte, error)
}

// Resolver produces the per-tenant SLA configuration, falling back to the
// default table when none is stored. Absence is a normal state, not an error.
type Resolver struct {
	settings SettingReader
	logger   *zap.Logger
}

// NewResolver constructs the resolver.
func NewResolver(settings SettingReader, logger *zap.Logger) *Resolver {
	return &Resolver{settings: settings, logger: logger}
}

// Resolve returns the tenant's configuration or the default.
func (r *Resolver) Resolve(ctx context.Context, companyID string) Config {
	if r == nil || r.settings == nil {
		return DefaultConfig()
	}
	raw, err := r.settings.Get(ctx, companyID, domain.SettingKeySLAConfig)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("sla config lookup failed; using defaults",
				zap.Error(err), zap.String("company_id", companyID))
		}
		return DefaultConfig()
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		r.logger.Warn("sla config malformed; using defaults",
			zap.Error(err), zap.String("company_id", companyID))
		return DefaultConfig()
	}
	return cfg
}
