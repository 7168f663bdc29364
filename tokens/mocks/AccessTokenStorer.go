package mocks

import (
	"context"
	"testing"

	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/stretchr/testify/mock"
)

// AccessTokenStorer is a mock type for the AccessTokenStorer type
type AccessTokenStorer struct {
	mock.Mock
}

func (_m *AccessTokenStorer) InsertAccessToken(ctx context.Context, token *tables.AccessToken) error {
	ret := _m.Called(ctx, token)
	return ret.Error(0)
}

// NewAccessTokenStorer creates a new instance of AccessTokenStorer and registers the expectation assertion
func NewAccessTokenStorer(t testing.TB) *AccessTokenStorer {
	m := &AccessTokenStorer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
