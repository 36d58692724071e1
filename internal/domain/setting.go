package domain

import "time"

// Setting keys consumed by the core.
const (
	SettingKeyEventsToN8N = "events_to_n8n"
	SettingKeySLAConfig   = "sla_config"
)

// SystemSetting is a per-company key/value configuration record. Values are
// stored as raw JSON and decoded by the consumer.
type SystemSetting struct {
	ID        string
	CompanyID string
	Key       string
	Value     []byte
	UpdatedAt time.Time
}
