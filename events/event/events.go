package event

import (
	"time"

	"github.com/eisenwinter/veluxidp/events"
)

const (
	AuthorizationCodeIssuedEvent events.EventName = "authorization_code_issued"
	AccessTokenIssuedEvent       events.EventName = "access_token_issued"
	TokenExchangeRejectedEvent   events.EventName = "token_exchange_rejected"

	UserRegisteredEvent    events.EventName = "user_registered"
	VendorLoginFailedEvent events.EventName = "vendor_login_failed"

	ExpiredRecordsPurgedEvent events.EventName = "expired_records_purged"
)

type AuthorizationCodeIssued struct {
	ClientID    string
	RedirectURI string
	VeluxUserID string
	ExpiresAt   time.Time
}

func (*AuthorizationCodeIssued) Name() events.EventName { return AuthorizationCodeIssuedEvent }

type AccessTokenIssued struct {
	ClientID    string
	VeluxUserID string
	ExpiresAt   time.Time
}

func (*AccessTokenIssued) Name() events.EventName { return AccessTokenIssuedEvent }

// TokenExchangeRejected never carries the code itself
type TokenExchangeRejected struct {
	ClientID string
	Reason   string
}

func (*TokenExchangeRejected) Name() events.EventName { return TokenExchangeRejectedEvent }

type UserRegistered struct {
	VeluxUserID string
	HomeID      string
	Bridge      string
}

func (*UserRegistered) Name() events.EventName { return UserRegisteredEvent }

type VendorLoginFailed struct {
	VeluxUserID string
}

func (*VendorLoginFailed) Name() events.EventName { return VendorLoginFailedEvent }

type ExpiredRecordsPurged struct {
	AuthorizationCodes int
	AccessTokens       int
}

func (*ExpiredRecordsPurged) Name() events.EventName { return ExpiredRecordsPurgedEvent }
