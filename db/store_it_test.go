//go:build integration
// +build integration

package db

import (
	"context"
	"testing"

	"github.com/eisenwinter/veluxidp/config"
	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	_ "github.com/mattn/go-sqlite3"
)

type DatabaseIntegrationTestSuite struct {
	suite.Suite
	dataStore *DataStore
}

func (s *DatabaseIntegrationTestSuite) SetupTest() {
	dataStore, err := NewSqliteStore(zaptest.NewLogger(s.T()), &config.DatabaseConfiguration{
		Type: "sqlite",
		DSN:  ":memory:",
	})
	require.NoError(s.T(), err)
	s.dataStore = dataStore
	require.NoError(s.T(), s.dataStore.EnsureUsable())
}

func (s *DatabaseIntegrationTestSuite) TearDownTest() {
	s.dataStore.Close()
}

func (s *DatabaseIntegrationTestSuite) TestAuthorizationCodeRoundTrip() {
	ctx := context.Background()
	err := s.dataStore.InsertAuthorizationCode(ctx, &tables.AuthorizationCode{
		Code:        "c1",
		ClientID:    tables.StringOrNil("skill"),
		RedirectURI: tables.StringOrNil("https://skill.example/cb"),
		ExpiresAt:   1700000600000,
	})
	assert.NoError(s.T(), err)

	rec, err := s.dataStore.AuthorizationCode(ctx, "c1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "skill", tables.StringValue(rec.ClientID))
	assert.Equal(s.T(), "https://skill.example/cb", tables.StringValue(rec.RedirectURI))
	assert.Nil(s.T(), rec.VeluxUserID)
	assert.Nil(s.T(), rec.RedeemedAt)
	assert.Equal(s.T(), int64(1700000600000), rec.ExpiresAt)
}

func (s *DatabaseIntegrationTestSuite) TestAuthorizationCodeDuplicate() {
	ctx := context.Background()
	code := &tables.AuthorizationCode{Code: "c1", ExpiresAt: 1}
	assert.NoError(s.T(), s.dataStore.InsertAuthorizationCode(ctx, code))
	assert.ErrorIs(s.T(), s.dataStore.InsertAuthorizationCode(ctx, code), ErrAlreadyExists)
}

func (s *DatabaseIntegrationTestSuite) TestAuthorizationCodeNotFound() {
	_, err := s.dataStore.AuthorizationCode(context.Background(), "nope")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *DatabaseIntegrationTestSuite) TestRedeemAuthorizationCode() {
	ctx := context.Background()
	assert.NoError(s.T(), s.dataStore.InsertAuthorizationCode(ctx, &tables.AuthorizationCode{Code: "c1", ExpiresAt: 10}))

	assert.NoError(s.T(), s.dataStore.RedeemAuthorizationCode(ctx, "c1", 5))
	assert.ErrorIs(s.T(), s.dataStore.RedeemAuthorizationCode(ctx, "c1", 6), ErrAlreadyRedeemed)
	assert.ErrorIs(s.T(), s.dataStore.RedeemAuthorizationCode(ctx, "c2", 6), ErrNotFound)

	rec, err := s.dataStore.AuthorizationCode(ctx, "c1")
	require.NoError(s.T(), err)
	if assert.NotNil(s.T(), rec.RedeemedAt) {
		assert.Equal(s.T(), int64(5), *rec.RedeemedAt)
	}
}

func (s *DatabaseIntegrationTestSuite) TestAccessTokenRoundTrip() {
	ctx := context.Background()
	err := s.dataStore.InsertAccessToken(ctx, &tables.AccessToken{
		Token:       "t1",
		ClientID:    "skill",
		VeluxUserID: "alice",
		CreatedAt:   1000,
		ExpiresAt:   3601000,
	})
	assert.NoError(s.T(), err)

	rec, err := s.dataStore.AccessToken(ctx, "t1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "alice", rec.VeluxUserID)
	assert.Equal(s.T(), int64(3601000), rec.ExpiresAt)
}

func (s *DatabaseIntegrationTestSuite) TestPutUserOverwrites() {
	ctx := context.Background()
	assert.NoError(s.T(), s.dataStore.PutUser(ctx, &tables.UserRecord{
		UserID:       "alice",
		PasswordHash: "hash1",
		HomeID:       "H1",
		Bridge:       "B1",
		AccessToken:  "AT1",
		RefreshToken: "RT1",
		CreatedAt:    1,
	}))
	assert.NoError(s.T(), s.dataStore.PutUser(ctx, &tables.UserRecord{
		UserID:       "alice",
		PasswordHash: "hash2",
		HomeID:       "H2",
		Bridge:       "B2",
		AccessToken:  "AT2",
		RefreshToken: "RT2",
		CreatedAt:    2,
	}))

	users, err := s.dataStore.Users(ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), users, 1)

	user, err := s.dataStore.User(ctx, "alice")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "H2", user.HomeID)
	assert.Equal(s.T(), "B2", user.Bridge)
	assert.Equal(s.T(), "AT2", user.AccessToken)
}

func (s *DatabaseIntegrationTestSuite) TestPurgeExpired() {
	ctx := context.Background()
	assert.NoError(s.T(), s.dataStore.InsertAuthorizationCode(ctx, &tables.AuthorizationCode{Code: "old", ExpiresAt: 10}))
	assert.NoError(s.T(), s.dataStore.InsertAuthorizationCode(ctx, &tables.AuthorizationCode{Code: "new", ExpiresAt: 1000}))
	assert.NoError(s.T(), s.dataStore.InsertAccessToken(ctx, &tables.AccessToken{Token: "old", ExpiresAt: 10}))

	codes, tokens, err := s.dataStore.PurgeExpired(ctx, 100)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), 1, codes)
	assert.Equal(s.T(), 1, tokens)

	_, err = s.dataStore.AuthorizationCode(ctx, "new")
	assert.NoError(s.T(), err)
}

func (s *DatabaseIntegrationTestSuite) TestAuditLog() {
	err := s.dataStore.Auditor().addToAuditLog(context.Background(), "user_registered", tables.Payload{"velux_user_id": "alice"})
	assert.NoError(s.T(), err)

	var entries []tables.AuditLogTable
	err = s.dataStore.db.Select(&entries, "SELECT id, event_type, event, created_at FROM audit_logs")
	require.NoError(s.T(), err)
	if assert.Len(s.T(), entries, 1) {
		assert.Equal(s.T(), "user_registered", entries[0].EventType)
		assert.Equal(s.T(), "alice", entries[0].Event["velux_user_id"])
	}
}

func TestSqliteDatabaseIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(DatabaseIntegrationTestSuite))
}
