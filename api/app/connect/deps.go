package connect

import (
	"context"

	"github.com/eisenwinter/veluxidp/tokens"
	"github.com/eisenwinter/veluxidp/user"
)

// TokenIssuer handles issuing and exchanging of authorization codes
type TokenIssuer interface {
	IssueAuthorizationCode(
		ctx context.Context,
		clientID string,
		redirectURI string,
		veluxUserID string,
	) (string, error)
	ExchangeAuthorizationCode(
		ctx context.Context,
		code string,
		clientID string,
		redirectURI string,
	) (*tokens.IssuedAccessToken, error)
}

// Registrar registers users against the velux backend
type Registrar interface {
	Register(
		ctx context.Context,
		username string,
		password string,
	) (*user.Registration, error)
}
