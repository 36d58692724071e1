package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// StartSLAMonitor periodically refreshes sla_status for active tickets so
// at_risk and breached flips happen without anyone touching the ticket.
// Returns immediately; the loop exits when ctx is cancelled.
func StartSLAMonitor(ctx context.Context, slaService *service.SLAService, cfg config.SLAConfig, logger *zap.Logger) {
	if slaService == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.MonitorInterval())
		defer ticker.Stop()

		logger.Info("sla monitor started",
			zap.Duration("interval", cfg.MonitorInterval()),
			zap.Int("batch_size", cfg.MonitorBatchSize))

		for {
			select {
			case <-ctx.Done():
				logger.Info("sla monitor stopped")
				return
			case <-ticker.C:
				updated, err := slaService.RefreshActive(ctx, cfg.MonitorBatchSize)
				if err != nil {
					logger.Warn("sla refresh sweep failed", zap.Error(err))
					continue
				}
				if updated > 0 {
					logger.Info("sla statuses refreshed", zap.Int("updated", updated))
				}
			}
		}
	}()
}
