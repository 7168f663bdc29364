package generator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreateAuthorizationCodeIsUUID(t *testing.T) {
	g := New()
	code := g.CreateAuthorizationCode()
	parsed, err := uuid.Parse(string(code))
	assert.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, code, g.CreateAuthorizationCode())
}

func TestCreateSecureToken(t *testing.T) {
	g := New()
	token := g.CreateSecureToken()
	assert.Len(t, string(token), 43)
	assert.NotContains(t, string(token), "=")
	assert.NotEqual(t, token, g.CreateSecureToken())
}

func TestDeterministicReader(t *testing.T) {
	g := NewWithReader(bytes.NewReader(bytes.Repeat([]byte{0xff}, 3)))
	assert.Equal(t, RandomTokenType("____"), g.CreateSecureTokenWithSize(3))
}

func TestExhaustedReaderPanics(t *testing.T) {
	g := NewWithReader(strings.NewReader("ab"))
	assert.Panics(t, func() { g.CreateSecureTokenWithSize(16) })
	assert.Panics(t, func() { g.CreateSecureTokenWithSize(0) })
}
