package mocks

import (
	"context"
	"testing"

	"github.com/eisenwinter/veluxidp/tokens"
	"github.com/stretchr/testify/mock"
)

// TokenIssuer is a mock type for the TokenIssuer type
type TokenIssuer struct {
	mock.Mock
}

func (_m *TokenIssuer) IssueAuthorizationCode(ctx context.Context, clientID string, redirectURI string, veluxUserID string) (string, error) {
	ret := _m.Called(ctx, clientID, redirectURI, veluxUserID)
	return ret.String(0), ret.Error(1)
}

func (_m *TokenIssuer) ExchangeAuthorizationCode(ctx context.Context, code string, clientID string, redirectURI string) (*tokens.IssuedAccessToken, error) {
	ret := _m.Called(ctx, code, clientID, redirectURI)
	var r0 *tokens.IssuedAccessToken
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*tokens.IssuedAccessToken)
	}
	return r0, ret.Error(1)
}

// NewTokenIssuer creates a new instance of TokenIssuer and registers the expectation assertion
func NewTokenIssuer(t testing.TB) *TokenIssuer {
	m := &TokenIssuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
