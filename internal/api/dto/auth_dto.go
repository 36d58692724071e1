package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	AgentID   string    `json:"agent_id"`
	CompanyID string    `json:"company_id"`
}

// SettingRequest payload for setting writes.
type SettingRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// SettingResponse represents one stored setting.
type SettingResponse struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
