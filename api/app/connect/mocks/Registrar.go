package mocks

import (
	"context"
	"testing"

	"github.com/eisenwinter/veluxidp/user"
	"github.com/stretchr/testify/mock"
)

// Registrar is a mock type for the Registrar type
type Registrar struct {
	mock.Mock
}

func (_m *Registrar) Register(ctx context.Context, username string, password string) (*user.Registration, error) {
	ret := _m.Called(ctx, username, password)
	var r0 *user.Registration
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.Registration)
	}
	return r0, ret.Error(1)
}

// NewRegistrar creates a new instance of Registrar and registers the expectation assertion
func NewRegistrar(t testing.TB) *Registrar {
	m := &Registrar{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
