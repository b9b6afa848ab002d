package audit

import (
	"time"
)

// AuditAction represents the type of action performed on a contact
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionFilter AuditAction = "filter"
	AuditActionImport AuditAction = "import"
	AuditActionExport AuditAction = "export"
)

// AuditLog represents a single audit log entry
type AuditLog struct {
	ID        string            `json:"id"`
	ContactID int64             `json:"contact_id,omitempty"`
	Action    AuditAction       `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}
