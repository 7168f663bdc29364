package user

import (
	"context"
	"errors"
	"testing"

	"github.com/eisenwinter/veluxidp/config"
	"github.com/eisenwinter/veluxidp/db"
	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/eisenwinter/veluxidp/user/mocks"
	"github.com/eisenwinter/veluxidp/velux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

const aliceHomes = `{"body":{"homes":[{"id":"H1","modules":[{"id":"B1","type":"NXG"}]}]},"status":"ok"}`

type serviceFixture struct {
	service    *Service
	store      *mocks.UserStorer
	auth       *mocks.Authenticator
	issuer     *mocks.CodeIssuer
	dispatcher *mocks.Dispatcher
	sess       *velux.Session
}

func newServiceFixture(t *testing.T) *serviceFixture {
	f := &serviceFixture{
		store:      mocks.NewUserStorer(t),
		auth:       mocks.NewAuthenticator(t),
		issuer:     mocks.NewCodeIssuer(t),
		dispatcher: mocks.NewDispatcher(t),
		sess:       &velux.Session{},
	}
	f.service = New(f.store, zaptest.NewLogger(t), &config.BehaviourConfiguration{
		PasswordHashCost: bcrypt.MinCost,
	}, f.auth, f.issuer, f.dispatcher)
	return f
}

func homeInfo(t *testing.T, raw string) *velux.HomeInfo {
	info, err := velux.ParseHomeInfo([]byte(raw))
	require.NoError(t, err)
	return info
}

func TestRegister(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	info := homeInfo(t, aliceHomes)

	f.auth.On("WarmUp", ctx).Return(f.sess, nil).Once()
	f.auth.On("MakeTokenRequest", ctx, f.sess, velux.PasswordGrant).
		Return(&velux.TokenData{AccessToken: "AT1", RefreshToken: "RT1"}, nil).Once()
	f.auth.On("HomeInfoWithRetry", ctx, f.sess).Return(info, nil).Once()

	var stored *tables.UserRecord
	f.store.On("PutUser", ctx, mock.AnythingOfType("*tables.UserRecord")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*tables.UserRecord) }).
		Return(nil).Once()
	f.dispatcher.On("Dispatch", ctx, mock.AnythingOfType("*event.UserRegistered")).Return().Once()
	f.issuer.On("IssueAuthorizationCode", ctx, "", "", "alice").Return("C1", nil).Once()

	reg, err := f.service.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "C1", reg.Code)
	assert.Same(t, info, reg.HomeInfo)

	require.NotNil(t, stored)
	assert.Equal(t, "alice", stored.UserID)
	assert.Equal(t, "H1", stored.HomeID)
	assert.Equal(t, "B1", stored.Bridge)
	assert.Equal(t, "AT1", stored.AccessToken)
	assert.Equal(t, "RT1", stored.RefreshToken)
	assert.NotEqual(t, "pw", stored.PasswordHash)
	assert.True(t, ValidatePassword(stored, "pw"))
	assert.False(t, ValidatePassword(stored, "other"))
}

func TestRegisterRejectedCredentials(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.auth.On("WarmUp", ctx).Return(f.sess, nil).Once()
	f.auth.On("MakeTokenRequest", ctx, f.sess, velux.PasswordGrant).Return(nil, nil).Once()
	f.dispatcher.On("Dispatch", ctx, mock.AnythingOfType("*event.VendorLoginFailed")).Return().Once()

	reg, err := f.service.Register(ctx, "alice", "wrong")
	assert.Nil(t, reg)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	f.store.AssertNotCalled(t, "PutUser", mock.Anything, mock.Anything)
	f.issuer.AssertNotCalled(t, "IssueAuthorizationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterTransportFailure(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	boom := errors.New("connection refused")

	f.auth.On("WarmUp", ctx).Return(f.sess, nil).Once()
	f.auth.On("MakeTokenRequest", ctx, f.sess, velux.PasswordGrant).Return(nil, boom).Once()

	_, err := f.service.Register(ctx, "alice", "pw")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterWithoutHome(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.auth.On("WarmUp", ctx).Return(f.sess, nil).Once()
	f.auth.On("MakeTokenRequest", ctx, f.sess, velux.PasswordGrant).
		Return(&velux.TokenData{AccessToken: "AT1"}, nil).Once()
	f.auth.On("HomeInfoWithRetry", ctx, f.sess).Return(homeInfo(t, `{"body":{"homes":[]}}`), nil).Once()

	_, err := f.service.Register(ctx, "alice", "pw")
	assert.ErrorIs(t, err, velux.ErrHomeNotFound)
	f.store.AssertNotCalled(t, "PutUser", mock.Anything, mock.Anything)
}

func TestRegisterWithoutBridge(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.auth.On("WarmUp", ctx).Return(f.sess, nil).Once()
	f.auth.On("MakeTokenRequest", ctx, f.sess, velux.PasswordGrant).
		Return(&velux.TokenData{AccessToken: "AT1"}, nil).Once()
	f.auth.On("HomeInfoWithRetry", ctx, f.sess).
		Return(homeInfo(t, `{"body":{"homes":[{"id":"H1","modules":[{"id":"M1","type":"NXO"}]}]}}`), nil).Once()

	_, err := f.service.Register(ctx, "alice", "pw")
	assert.ErrorIs(t, err, velux.ErrBridgeNotFound)
	f.store.AssertNotCalled(t, "PutUser", mock.Anything, mock.Anything)
}

func TestRegisterStoreFailureIssuesNoCode(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	boom := errors.New("store down")

	f.auth.On("WarmUp", ctx).Return(f.sess, nil).Once()
	f.auth.On("MakeTokenRequest", ctx, f.sess, velux.PasswordGrant).
		Return(&velux.TokenData{AccessToken: "AT1"}, nil).Once()
	f.auth.On("HomeInfoWithRetry", ctx, f.sess).Return(homeInfo(t, aliceHomes), nil).Once()
	f.store.On("PutUser", ctx, mock.Anything).Return(boom).Once()

	_, err := f.service.Register(ctx, "alice", "pw")
	assert.ErrorIs(t, err, boom)
	f.issuer.AssertNotCalled(t, "IssueAuthorizationCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIssueCode(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.store.On("User", ctx, "alice").Return(&tables.UserRecord{UserID: "alice"}, nil).Once()
	f.issuer.On("IssueAuthorizationCode", ctx, "", "", "alice").Return("C9", nil).Once()

	code, err := f.service.IssueCode(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "C9", code)
}

func TestIssueCodeUnknownUser(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.store.On("User", ctx, "bob").Return(nil, db.ErrNotFound).Once()

	_, err := f.service.IssueCode(ctx, "bob")
	assert.ErrorIs(t, err, ErrEntityDoesNotExist)
}
