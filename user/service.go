package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eisenwinter/veluxidp/config"
	"github.com/eisenwinter/veluxidp/db"
	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/eisenwinter/veluxidp/events/event"
	"github.com/eisenwinter/veluxidp/sanitize"
	"github.com/eisenwinter/veluxidp/velux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned if the velux backend did not accept the credentials
	ErrInvalidCredentials = errors.New("velux backend rejected the supplied credentials")
	ErrEntityDoesNotExist = errors.New("user does not exist")
)

// Registration is the outcome of a successful user registration
type Registration struct {
	Code     string
	HomeInfo *velux.HomeInfo
}

func New(store UserStorer,
	logger *zap.Logger,
	cfg *config.BehaviourConfiguration,
	auth Authenticator,
	issuer CodeIssuer,
	dispatcher Dispatcher) *Service {
	return &Service{
		store:      store,
		log:        logger,
		cfg:        cfg,
		auth:       auth,
		issuer:     issuer,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

type Service struct {
	store      UserStorer
	log        *zap.Logger
	cfg        *config.BehaviourConfiguration
	auth       Authenticator
	issuer     CodeIssuer
	dispatcher Dispatcher
	now        func() time.Time
}

// Register validates the credentials against the velux backend, stores the user
// together with the discovered home and bridge and issues an authorization code for it.
// Nothing is written unless the backend accepted the credentials and a home with a bridge was found.
func (g *Service) Register(ctx context.Context, username string, password string) (*Registration, error) {
	sess, err := g.auth.WarmUp(ctx)
	if err != nil {
		g.log.Error("could not establish velux session", zap.Error(err))
		return nil, err
	}
	sess.SetCredentials(velux.Credentials{Username: username, Password: password})
	tok, err := g.auth.MakeTokenRequest(ctx, sess, velux.PasswordGrant)
	if err != nil {
		g.log.Error("velux token request failed", sanitize.UserInputString("username", username), zap.Error(err))
		return nil, err
	}
	if tok == nil {
		g.log.Info("velux rejected credentials", sanitize.UserInputString("username", username))
		g.dispatcher.Dispatch(ctx, &event.VendorLoginFailed{VeluxUserID: username})
		return nil, ErrInvalidCredentials
	}

	info, err := g.auth.HomeInfoWithRetry(ctx, sess)
	if err != nil {
		g.log.Error("could not fetch velux home info", zap.Error(err))
		return nil, err
	}
	homeID, err := info.HomeID()
	if err != nil {
		g.log.Error("velux account has no home", sanitize.UserInputString("username", username))
		return nil, err
	}
	bridge, err := info.BridgeID()
	if err != nil {
		g.log.Error("velux home has no bridge", zap.String("home_id", homeID))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), g.cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}
	err = g.store.PutUser(ctx, &tables.UserRecord{
		UserID:       username,
		PasswordHash: string(hash),
		HomeID:       homeID,
		Bridge:       bridge,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		CreatedAt:    g.now().UnixMilli(),
	})
	if err != nil {
		g.log.Error("could not store user", zap.Error(err))
		return nil, err
	}
	g.dispatcher.Dispatch(ctx, &event.UserRegistered{
		VeluxUserID: username,
		HomeID:      homeID,
		Bridge:      bridge,
	})

	code, err := g.issuer.IssueAuthorizationCode(ctx, "", "", username)
	if err != nil {
		return nil, err
	}
	return &Registration{Code: code, HomeInfo: info}, nil
}

// IssueCode mints a new authorization code for an already registered user
func (g *Service) IssueCode(ctx context.Context, username string) (string, error) {
	if _, err := g.store.User(ctx, username); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrEntityDoesNotExist
		}
		g.log.Error("could not load user", zap.Error(err))
		return "", err
	}
	return g.issuer.IssueAuthorizationCode(ctx, "", "", username)
}

// List returns all registered users
func (g *Service) List(ctx context.Context) ([]*tables.UserRecord, error) {
	return g.store.Users(ctx)
}

// ValidatePassword compares the password against the stored hash of the user
func ValidatePassword(u *tables.UserRecord, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
