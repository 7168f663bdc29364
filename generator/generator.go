// Package generator creates the opaque authorization codes and access tokens handed out to clients.
package generator

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// DefaultTokenSize is the number of random bytes in an access token
const DefaultTokenSize = 32

// RandomTokenType is a freshly generated opaque token
type RandomTokenType string

// RandomTokenGenerator draws codes and tokens from an entropy source
type RandomTokenGenerator struct {
	entropy io.Reader
}

// New returns a generator reading from crypto/rand
func New() *RandomTokenGenerator {
	return NewWithReader(rand.Reader)
}

// NewWithReader uses r as entropy source, it must never run dry
func NewWithReader(r io.Reader) *RandomTokenGenerator {
	return &RandomTokenGenerator{entropy: r}
}

// CreateAuthorizationCode returns a version 4 uuid
func (g *RandomTokenGenerator) CreateAuthorizationCode() RandomTokenType {
	id, err := uuid.NewRandomFromReader(g.entropy)
	if err != nil {
		panic(fmt.Sprintf("entropy source failed: %v", err))
	}
	return RandomTokenType(id.String())
}

// CreateSecureToken returns DefaultTokenSize random bytes, url safe base64 without padding
func (g *RandomTokenGenerator) CreateSecureToken() RandomTokenType {
	return g.CreateSecureTokenWithSize(DefaultTokenSize)
}

func (g *RandomTokenGenerator) CreateSecureTokenWithSize(size int) RandomTokenType {
	if size <= 0 {
		panic("token size must be positive")
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(g.entropy, b); err != nil {
		panic(fmt.Sprintf("entropy source failed: %v", err))
	}
	return RandomTokenType(base64.RawURLEncoding.EncodeToString(b))
}
