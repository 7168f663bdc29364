package tables

import "time"

// AuditLogTable represents the audit_logs table
type AuditLogTable struct {
	ID        int       `db:"id"`
	EventType string    `db:"event_type"`
	Event     Payload   `db:"event"`
	CreatedAt time.Time `db:"created_at"`
}
