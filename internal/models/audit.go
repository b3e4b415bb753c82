package models

import "time"

// Audit actions recorded for session lifecycle events.
const (
	AuditActionLogin     = "LOGIN"
	AuditActionRefresh   = "TOKEN_REFRESH"
	AuditActionLogout    = "LOGOUT"
	AuditActionLogoutAll = "LOGOUT_ALL"
	AuditActionRegister  = "REGISTER"
)

// AuditLog stores a trace of security-relevant actions.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    *int64    `db:"user_id" json:"user_id,omitempty"`
	Action    string    `db:"action" json:"action"`
	Resource  string    `db:"resource" json:"resource"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
