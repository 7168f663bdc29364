package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
)

// CodeIssuer is a mock type for the CodeIssuer type
type CodeIssuer struct {
	mock.Mock
}

func (_m *CodeIssuer) IssueAuthorizationCode(ctx context.Context, clientID string, redirectURI string, veluxUserID string) (string, error) {
	ret := _m.Called(ctx, clientID, redirectURI, veluxUserID)
	return ret.String(0), ret.Error(1)
}

// NewCodeIssuer creates a new instance of CodeIssuer and registers the expectation assertion
func NewCodeIssuer(t testing.TB) *CodeIssuer {
	m := &CodeIssuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
