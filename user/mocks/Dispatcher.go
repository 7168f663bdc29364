package mocks

import (
	"context"
	"testing"

	"github.com/eisenwinter/veluxidp/events"
	"github.com/stretchr/testify/mock"
)

// Dispatcher is a mock type for the Dispatcher type
type Dispatcher struct {
	mock.Mock
}

func (_m *Dispatcher) Dispatch(ctx context.Context, event events.Event) {
	_m.Called(ctx, event)
}

// NewDispatcher creates a new instance of Dispatcher and registers the expectation assertion
func NewDispatcher(t testing.TB) *Dispatcher {
	m := &Dispatcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
