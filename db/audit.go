package db

import (
	"context"
	"time"

	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	sq "github.com/Masterminds/squirrel"
)

// Auditor is a way to write audit log events into a persistent store
type Auditor interface {
	addToAuditLog(ctx context.Context, event string, payload tables.Payload) error
}

type auditor struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

func (d *auditor) addToAuditLog(ctx context.Context, event string, payload tables.Payload) error {
	insert := d.builder.
		Insert("audit_logs").
		Columns("event_type", "event", "created_at").
		Values(event, payload, time.Now().UTC())
	_, err := insert.RunWith(d.db).ExecContext(ctx)
	return err
}

// Auditor returns the audit_logs table writer
func (d *DataStore) Auditor() Auditor {
	return &auditor{
		db:      d.db,
		builder: d.builder,
	}
}

// logAuditor is used for stores without an audit table, entries end up in the structured log
type logAuditor struct {
	log *zap.Logger
}

func (l *logAuditor) addToAuditLog(_ context.Context, event string, payload tables.Payload) error {
	l.log.Info("audit", zap.String("event_type", event), zap.Any("event", payload))
	return nil
}
