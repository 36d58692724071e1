package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SettingsRepository stores per-company key/value configuration.
type SettingsRepository interface {
	Get(ctx context.Context, companyID, key string) ([]byte, error)
	Upsert(ctx context.Context, companyID, key string, value []byte) error
	ListByCompany(ctx context.Context, companyID string) ([]domain.SystemSetting, error)
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository instantiates repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) Get(ctx context.Context, companyID, key string) ([]byte, error) {
	const query = `SELECT value FROM system_settings WHERE company_id=$1 AND key=$2`
	var value []byte
	if err := r.pool.QueryRow(ctx, query, companyID, key).Scan(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, companyID, key string, value []byte) error {
	const query = `
        INSERT INTO system_settings (company_id, key, value)
        VALUES ($1,$2,$3)
        ON CONFLICT (company_id, key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, companyID, key, value)
	return err
}

func (r *settingsRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.SystemSetting, error) {
	const query = `SELECT id, company_id, key, value, updated_at FROM system_settings WHERE company_id=$1 ORDER BY key`
	rows, err := r.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SystemSetting
	for rows.Next() {
		var setting domain.SystemSetting
		if err := rows.Scan(&setting.ID, &setting.CompanyID, &setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, setting)
	}
	return result, rows.Err()
}
