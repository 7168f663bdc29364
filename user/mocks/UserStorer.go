package mocks

import (
	"context"
	"testing"

	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/stretchr/testify/mock"
)

// UserStorer is a mock type for the UserStorer type
type UserStorer struct {
	mock.Mock
}

func (_m *UserStorer) PutUser(ctx context.Context, user *tables.UserRecord) error {
	ret := _m.Called(ctx, user)
	return ret.Error(0)
}

func (_m *UserStorer) User(ctx context.Context, userID string) (*tables.UserRecord, error) {
	ret := _m.Called(ctx, userID)
	var r0 *tables.UserRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*tables.UserRecord)
	}
	return r0, ret.Error(1)
}

func (_m *UserStorer) Users(ctx context.Context) ([]*tables.UserRecord, error) {
	ret := _m.Called(ctx)
	var r0 []*tables.UserRecord
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*tables.UserRecord)
	}
	return r0, ret.Error(1)
}

// NewUserStorer creates a new instance of UserStorer and registers the expectation assertion
func NewUserStorer(t testing.TB) *UserStorer {
	m := &UserStorer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
