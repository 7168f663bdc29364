package mocks

import (
	"context"
	"testing"

	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/stretchr/testify/mock"
)

// CodeStorer is a mock type for the CodeStorer type
type CodeStorer struct {
	mock.Mock
}

func (_m *CodeStorer) InsertAuthorizationCode(ctx context.Context, code *tables.AuthorizationCode) error {
	ret := _m.Called(ctx, code)
	return ret.Error(0)
}

func (_m *CodeStorer) AuthorizationCode(ctx context.Context, code string) (*tables.AuthorizationCode, error) {
	ret := _m.Called(ctx, code)
	var r0 *tables.AuthorizationCode
	if rf, ok := ret.Get(0).(func(context.Context, string) *tables.AuthorizationCode); ok {
		r0 = rf(ctx, code)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*tables.AuthorizationCode)
	}
	return r0, ret.Error(1)
}

func (_m *CodeStorer) RedeemAuthorizationCode(ctx context.Context, code string, at int64) error {
	ret := _m.Called(ctx, code, at)
	return ret.Error(0)
}

// NewCodeStorer creates a new instance of CodeStorer and registers the expectation assertion
func NewCodeStorer(t testing.TB) *CodeStorer {
	m := &CodeStorer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
