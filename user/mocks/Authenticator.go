package mocks

import (
	"context"
	"testing"

	"github.com/eisenwinter/veluxidp/velux"
	"github.com/stretchr/testify/mock"
)

// Authenticator is a mock type for the Authenticator type
type Authenticator struct {
	mock.Mock
}

func (_m *Authenticator) WarmUp(ctx context.Context) (*velux.Session, error) {
	ret := _m.Called(ctx)
	var r0 *velux.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*velux.Session)
	}
	return r0, ret.Error(1)
}

func (_m *Authenticator) MakeTokenRequest(ctx context.Context, sess *velux.Session, grantType string) (*velux.TokenData, error) {
	ret := _m.Called(ctx, sess, grantType)
	var r0 *velux.TokenData
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*velux.TokenData)
	}
	return r0, ret.Error(1)
}

func (_m *Authenticator) HomeInfoWithRetry(ctx context.Context, sess *velux.Session) (*velux.HomeInfo, error) {
	ret := _m.Called(ctx, sess)
	var r0 *velux.HomeInfo
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*velux.HomeInfo)
	}
	return r0, ret.Error(1)
}

// NewAuthenticator creates a new instance of Authenticator and registers the expectation assertion
func NewAuthenticator(t testing.TB) *Authenticator {
	m := &Authenticator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
