package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/eisenwinter/veluxidp/events"
	"github.com/eisenwinter/veluxidp/generator"
)

// TokenType is the token_type reported to clients
const TokenType = "bearer"

// ErrInvalidCode is returned for unknown, expired, already used or foreign authorization codes
var ErrInvalidCode = errors.New("invalid or expired authorization code")

// ErrTokenGenTimeout is returned if no unique token could be generated
var ErrTokenGenTimeout = errors.New("could not generate a unique token within given cycles")

const maxIterationCycles = 5

type CodeStorer interface {
	InsertAuthorizationCode(ctx context.Context, code *tables.AuthorizationCode) error
	AuthorizationCode(ctx context.Context, code string) (*tables.AuthorizationCode, error)
	RedeemAuthorizationCode(ctx context.Context, code string, at int64) error
}

type AccessTokenStorer interface {
	InsertAccessToken(ctx context.Context, token *tables.AccessToken) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, event events.Event)
}

type Generator interface {
	CreateAuthorizationCode() generator.RandomTokenType
	CreateSecureToken() generator.RandomTokenType
}

// IssuedAccessToken is the outcome of a successful code exchange
type IssuedAccessToken struct {
	AccessToken string
	ClientID    string
	VeluxUserID string
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
}

// ExpiresInSeconds is the lifetime as reported in the token response
func (i *IssuedAccessToken) ExpiresInSeconds() int {
	return int(i.ExpiresIn / time.Second)
}
