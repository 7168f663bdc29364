package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/eisenwinter/veluxidp/config"
	"github.com/eisenwinter/veluxidp/db"
	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/eisenwinter/veluxidp/events/event"
	"github.com/eisenwinter/veluxidp/generator"
	"github.com/eisenwinter/veluxidp/sanitize"
	"go.uber.org/zap"
)

// TokenIssuer mints authorization codes and exchanges them for opaque access tokens
type TokenIssuer struct {
	log        *zap.Logger
	codes      CodeStorer
	tokens     AccessTokenStorer
	dispatcher Dispatcher
	gen        Generator
	cfg        *config.BehaviourConfiguration
	now        func() time.Time
}

func NewIssuer(
	log *zap.Logger,
	cfg *config.BehaviourConfiguration,
	codes CodeStorer,
	tokens AccessTokenStorer,
	dispatcher Dispatcher,
) *TokenIssuer {
	return &TokenIssuer{
		log:        log,
		codes:      codes,
		tokens:     tokens,
		dispatcher: dispatcher,
		gen:        generator.New(),
		cfg:        cfg,
		now:        time.Now,
	}
}

// WithGenerator swaps the random source, only meant for tests
func (t *TokenIssuer) WithGenerator(gen Generator) *TokenIssuer {
	t.gen = gen
	return t
}

// WithClock swaps the clock, only meant for tests
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

// CodeExpiry is the lifetime of newly issued authorization codes
func (t *TokenIssuer) CodeExpiry() time.Duration {
	return t.cfg.CodeExpiry
}

// IssueAuthorizationCode persists a new code, empty client id and redirect uri are stored as absent
func (t *TokenIssuer) IssueAuthorizationCode(
	ctx context.Context,
	clientID string,
	redirectURI string,
	veluxUserID string,
) (string, error) {
	expires := t.now().Add(t.cfg.CodeExpiry)
	for i := 0; i < maxIterationCycles; i++ {
		code := string(t.gen.CreateAuthorizationCode())
		err := t.codes.InsertAuthorizationCode(ctx, &tables.AuthorizationCode{
			Code:        code,
			ClientID:    tables.StringOrNil(clientID),
			RedirectURI: tables.StringOrNil(redirectURI),
			VeluxUserID: tables.StringOrNil(veluxUserID),
			ExpiresAt:   expires.UnixMilli(),
		})
		if errors.Is(err, db.ErrAlreadyExists) {
			t.log.Warn("authorization code collision, generating a new one")
			continue
		}
		if err != nil {
			t.log.Error("could not store authorization code", zap.Error(err))
			return "", err
		}
		t.dispatcher.Dispatch(ctx, &event.AuthorizationCodeIssued{
			ClientID:    clientID,
			RedirectURI: redirectURI,
			VeluxUserID: veluxUserID,
			ExpiresAt:   expires,
		})
		return code, nil
	}
	return "", ErrTokenGenTimeout
}

func (t *TokenIssuer) reject(ctx context.Context, clientID string, reason string) error {
	t.log.Info("rejected authorization code exchange",
		sanitize.UserInputString("client_id", clientID),
		zap.String("reason", reason))
	t.dispatcher.Dispatch(ctx, &event.TokenExchangeRejected{
		ClientID: clientID,
		Reason:   reason,
	})
	return ErrInvalidCode
}

// bound reports whether the stored value is absent or equal to the supplied one
func bound(stored *string, supplied string) bool {
	return stored == nil || *stored == "" || *stored == supplied
}

// ExchangeAuthorizationCode validates the code and issues a new access token for it
func (t *TokenIssuer) ExchangeAuthorizationCode(
	ctx context.Context,
	code string,
	clientID string,
	redirectURI string,
) (*IssuedAccessToken, error) {
	now := t.now()
	rec, err := t.codes.AuthorizationCode(ctx, code)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, t.reject(ctx, clientID, "unknown_code")
		}
		t.log.Error("could not load authorization code", zap.Error(err))
		return nil, err
	}
	if rec.ExpiresAt < now.UnixMilli() {
		return nil, t.reject(ctx, clientID, "expired_code")
	}
	if !bound(rec.ClientID, clientID) || !bound(rec.RedirectURI, redirectURI) {
		if t.cfg.EnforceClientBinding {
			return nil, t.reject(ctx, clientID, "client_mismatch")
		}
		t.log.Warn("authorization code exchanged by a different client",
			sanitize.UserInputString("client_id", clientID),
			sanitize.UserInputString("redirect_uri", redirectURI))
	}
	if t.cfg.SingleUseCodes {
		if rec.RedeemedAt != nil {
			return nil, t.reject(ctx, clientID, "already_redeemed")
		}
		err = t.codes.RedeemAuthorizationCode(ctx, code, now.UnixMilli())
		if errors.Is(err, db.ErrAlreadyRedeemed) || errors.Is(err, db.ErrNotFound) {
			return nil, t.reject(ctx, clientID, "already_redeemed")
		}
		if err != nil {
			t.log.Error("could not redeem authorization code", zap.Error(err))
			return nil, err
		}
	}

	veluxUserID := tables.StringValue(rec.VeluxUserID)
	expires := now.Add(t.cfg.TokenExpiry)
	for i := 0; i < maxIterationCycles; i++ {
		token := string(t.gen.CreateSecureToken())
		err = t.tokens.InsertAccessToken(ctx, &tables.AccessToken{
			Token:       token,
			ClientID:    clientID,
			VeluxUserID: veluxUserID,
			CreatedAt:   now.UnixMilli(),
			ExpiresAt:   expires.UnixMilli(),
		})
		if errors.Is(err, db.ErrAlreadyExists) {
			t.log.Warn("access token collision, generating a new one")
			continue
		}
		if err != nil {
			t.log.Error("could not store access token", zap.Error(err))
			return nil, err
		}
		t.dispatcher.Dispatch(ctx, &event.AccessTokenIssued{
			ClientID:    clientID,
			VeluxUserID: veluxUserID,
			ExpiresAt:   expires,
		})
		return &IssuedAccessToken{
			AccessToken: token,
			ClientID:    clientID,
			VeluxUserID: veluxUserID,
			ExpiresAt:   expires,
			ExpiresIn:   t.cfg.TokenExpiry,
		}, nil
	}
	return nil, ErrTokenGenTimeout
}
