package db

import (
	"context"

	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/eisenwinter/veluxidp/events"
	"github.com/eisenwinter/veluxidp/events/event"
	"go.uber.org/zap"
)

// BootstrapListeners registers all the event listeners from this package
func BootstrapListeners(store Auditor, log *zap.Logger) []events.EventListener {
	return []events.EventListener{
		&auditListener{
			log:   log,
			store: store,
			name:  event.AuthorizationCodeIssuedEvent,
			payload: func(ev events.Event) tables.Payload {
				e := ev.(*event.AuthorizationCodeIssued)
				return tables.Payload{
					"client_id":     e.ClientID,
					"redirect_uri":  e.RedirectURI,
					"velux_user_id": e.VeluxUserID,
					"expires_at":    e.ExpiresAt,
				}
			},
		},
		&auditListener{
			log:   log,
			store: store,
			name:  event.AccessTokenIssuedEvent,
			payload: func(ev events.Event) tables.Payload {
				e := ev.(*event.AccessTokenIssued)
				return tables.Payload{
					"client_id":     e.ClientID,
					"velux_user_id": e.VeluxUserID,
					"expires_at":    e.ExpiresAt,
				}
			},
		},
		&auditListener{
			log:   log,
			store: store,
			name:  event.TokenExchangeRejectedEvent,
			payload: func(ev events.Event) tables.Payload {
				e := ev.(*event.TokenExchangeRejected)
				return tables.Payload{
					"client_id": e.ClientID,
					"reason":    e.Reason,
				}
			},
		},
		&auditListener{
			log:   log,
			store: store,
			name:  event.UserRegisteredEvent,
			payload: func(ev events.Event) tables.Payload {
				e := ev.(*event.UserRegistered)
				return tables.Payload{
					"velux_user_id": e.VeluxUserID,
					"home_id":       e.HomeID,
					"bridge":        e.Bridge,
				}
			},
		},
		&auditListener{
			log:   log,
			store: store,
			name:  event.VendorLoginFailedEvent,
			payload: func(ev events.Event) tables.Payload {
				e := ev.(*event.VendorLoginFailed)
				return tables.Payload{
					"velux_user_id": e.VeluxUserID,
				}
			},
		},
		&auditListener{
			log:   log,
			store: store,
			name:  event.ExpiredRecordsPurgedEvent,
			payload: func(ev events.Event) tables.Payload {
				e := ev.(*event.ExpiredRecordsPurged)
				return tables.Payload{
					"authorization_codes": e.AuthorizationCodes,
					"access_tokens":       e.AccessTokens,
				}
			},
		},
	}
}

type auditListener struct {
	store   Auditor
	log     *zap.Logger
	name    events.EventName
	payload func(ev events.Event) tables.Payload
}

func (l *auditListener) ForEvent() events.EventName {
	return l.name
}

func (l *auditListener) Handle(ctx context.Context, ev events.Event) error {
	err := l.store.addToAuditLog(ctx, string(l.name), l.payload(ev))
	if err != nil {
		l.log.Warn("Could not persist event to audit log", zap.Error(err), zap.String("event", string(l.name)))
	}
	return nil
}
