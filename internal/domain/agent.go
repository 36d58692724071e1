package domain

import "time"

// AgentRole enumerates staff roles inside a company.
type AgentRole string

const (
	AgentRoleAgent AgentRole = "AGENT"
	AgentRoleAdmin AgentRole = "ADMIN"
)

// Agent is a company-scoped helpdesk operator account.
type Agent struct {
	ID           string
	CompanyID    string
	Name         string
	Email        string
	PasswordHash string
	Role         AgentRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
