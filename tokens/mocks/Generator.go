package mocks

import (
	"testing"

	"github.com/eisenwinter/veluxidp/generator"
	"github.com/stretchr/testify/mock"
)

// Generator is a mock type for the Generator type
type Generator struct {
	mock.Mock
}

func (_m *Generator) CreateAuthorizationCode() generator.RandomTokenType {
	ret := _m.Called()
	return ret.Get(0).(generator.RandomTokenType)
}

func (_m *Generator) CreateSecureToken() generator.RandomTokenType {
	ret := _m.Called()
	return ret.Get(0).(generator.RandomTokenType)
}

// NewGenerator creates a new instance of Generator and registers the expectation assertion
func NewGenerator(t testing.TB) *Generator {
	m := &Generator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
