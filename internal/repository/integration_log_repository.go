package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// IntegrationLogRepository reads the durable outbound-event log. Rows are
// written by the remote delivery procedure, not by this service; the
// dispatcher only consults them for duplicate suppression.
type IntegrationLogRepository interface {
	HasRecent(ctx context.Context, resourceID string, eventType string, companyID string, window time.Duration) (bool, error)
	ListByResource(ctx context.Context, companyID, resourceID string, limit int) ([]domain.IntegrationLog, error)
}

type integrationLogRepository struct {
	pool *pgxpool.Pool
}

// NewIntegrationLogRepository instantiates repository.
func NewIntegrationLogRepository(pool *pgxpool.Pool) IntegrationLogRepository {
	return &integrationLogRepository{pool: pool}
}

// HasRecent is a point-in-time read with no locking; two concurrent dispatch
// attempts can both pass it. That window is accepted in lieu of a
// database-enforced idempotency key.
func (r *integrationLogRepository) HasRecent(ctx context.Context, resourceID string, eventType string, companyID string, window time.Duration) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM integration_logs
            WHERE resource_id=$1 AND event_type=$2 AND company_id=$3 AND created_at > $4
        )`
	cutoff := time.Now().Add(-window)
	var exists bool
	if err := r.pool.QueryRow(ctx, query, resourceID, eventType, companyID, cutoff).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *integrationLogRepository) ListByResource(ctx context.Context, companyID, resourceID string, limit int) ([]domain.IntegrationLog, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, company_id, event_type, resource_type, resource_id,
               status, response_status, error_message, retry_count, created_at
        FROM integration_logs
        WHERE company_id=$1 AND resource_id=$2
        ORDER BY created_at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, query, companyID, resourceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIntegrationLogs(rows)
}

func scanIntegrationLogs(rows pgx.Rows) ([]domain.IntegrationLog, error) {
	var result []domain.IntegrationLog
	for rows.Next() {
		var entry domain.IntegrationLog
		if err := rows.Scan(
			&entry.ID,
			&entry.CompanyID,
			&entry.EventType,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.Status,
			&entry.ResponseStatus,
			&entry.ErrorMessage,
			&entry.RetryCount,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
