package user

import (
	"context"

	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/eisenwinter/veluxidp/events"
	"github.com/eisenwinter/veluxidp/velux"
)

// Authenticator is the velux backend as seen by the registration flow
type Authenticator interface {
	WarmUp(ctx context.Context) (*velux.Session, error)
	MakeTokenRequest(ctx context.Context, sess *velux.Session, grantType string) (*velux.TokenData, error)
	HomeInfoWithRetry(ctx context.Context, sess *velux.Session) (*velux.HomeInfo, error)
}

type UserStorer interface {
	PutUser(ctx context.Context, user *tables.UserRecord) error
	User(ctx context.Context, userID string) (*tables.UserRecord, error)
	Users(ctx context.Context) ([]*tables.UserRecord, error)
}

type CodeIssuer interface {
	IssueAuthorizationCode(ctx context.Context, clientID string, redirectURI string, veluxUserID string) (string, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, event events.Event)
}
