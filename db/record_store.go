package db

import (
	"context"

	"github.com/eisenwinter/veluxidp/db/tables"
)

// RecordStore is implemented by every backend
type RecordStore interface {
	InsertAuthorizationCode(ctx context.Context, code *tables.AuthorizationCode) error
	AuthorizationCode(ctx context.Context, code string) (*tables.AuthorizationCode, error)
	RedeemAuthorizationCode(ctx context.Context, code string, at int64) error

	InsertAccessToken(ctx context.Context, token *tables.AccessToken) error
	AccessToken(ctx context.Context, token string) (*tables.AccessToken, error)

	PutUser(ctx context.Context, user *tables.UserRecord) error
	User(ctx context.Context, userID string) (*tables.UserRecord, error)
	Users(ctx context.Context) ([]*tables.UserRecord, error)

	PurgeExpired(ctx context.Context, now int64) (int, int, error)

	Auditor() Auditor
	EnsureUsable() error
	Close()
}

var (
	_ RecordStore = (*DataStore)(nil)
	_ RecordStore = (*DynamoStore)(nil)
)
