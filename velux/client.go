// Package velux talks to the velux backend: password grant login and home topology discovery.
//
// All state of a login attempt lives in a Session which is created per request by WarmUp,
// a Client itself is stateless and safe for concurrent use.
package velux

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/eisenwinter/veluxidp/config"
	"github.com/eisenwinter/veluxidp/sanitize"
	"github.com/lestrrat-go/backoff/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// PasswordGrant is the only grant type supported against the velux backend
const PasswordGrant = "password"

const maxResponseSize = 1 << 20

var (
	ErrUnsupportedGrant = errors.New("unsupported grant type")
	ErrNoCredentials    = errors.New("session has no credentials")
	ErrNotAuthenticated = errors.New("session has no velux token")
	ErrUnexpectedStatus = errors.New("unexpected status from velux backend")
)

// Credentials are the velux account credentials of a user
type Credentials struct {
	Username string
	Password string
}

// TokenData is the token pair issued by the velux backend
type TokenData struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Session carries everything belonging to a single login attempt
type Session struct {
	credentials *Credentials
	client      *http.Client
	token       *TokenData
}

// SetCredentials stages the credentials used by the next token request
func (s *Session) SetCredentials(c Credentials) {
	s.credentials = &c
}

// Token returns the token of the last successful token request or nil
func (s *Session) Token() *TokenData {
	return s.token
}

// Client performs requests against the velux backend
type Client struct {
	log       *zap.Logger
	cfg       *config.VeluxConfiguration
	oauth     *oauth2.Config
	transport http.RoundTripper
}

// Option configures the client
type Option func(*Client)

// WithTransport replaces the http transport, defaults to http.DefaultTransport
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = rt
	}
}

func NewClient(log *zap.Logger, cfg *config.VeluxConfiguration, opts ...Option) *Client {
	c := &Client{
		log: log,
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		transport: http.DefaultTransport,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WarmUp creates a fresh session, if a warm up url is configured
// it is requested once so the backend can set its session cookies
func (c *Client) WarmUp(ctx context.Context) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	var rt http.RoundTripper = c.transport
	if c.cfg.UserPrefix != "" {
		rt = &formParamTransport{
			base:     rt,
			tokenURL: c.cfg.TokenURL,
			params:   map[string]string{"user_prefix": c.cfg.UserPrefix},
		}
	}
	sess := &Session{
		client: &http.Client{
			Jar:       jar,
			Timeout:   c.cfg.Timeout,
			Transport: rt,
		},
	}
	if c.cfg.WarmUpURL == "" {
		return sess, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.WarmUpURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := sess.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("velux warm up failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: warm up returned %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return sess, nil
}

// MakeTokenRequest logs in with the staged credentials.
// Rejected credentials are not an error, they yield no token data.
func (c *Client) MakeTokenRequest(ctx context.Context, sess *Session, grantType string) (*TokenData, error) {
	if grantType != PasswordGrant {
		return nil, ErrUnsupportedGrant
	}
	if sess.credentials == nil {
		return nil, ErrNoCredentials
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, sess.client)
	tok, err := c.oauth.PasswordCredentialsToken(ctx, sess.credentials.Username, sess.credentials.Password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && isRejection(re.Response.StatusCode) {
			c.log.Debug("velux rejected credentials",
				sanitize.UserInputString("username", sess.credentials.Username),
				zap.Int("status", re.Response.StatusCode),
				zap.String("error_code", re.ErrorCode))
			return nil, nil
		}
		return nil, fmt.Errorf("velux token request failed: %w", err)
	}
	sess.token = &TokenData{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	return sess.token, nil
}

func isRejection(status int) bool {
	return status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// HomeInfoWithRetry fetches the home topology, transient failures are retried with exponential backoff
func (c *Client) HomeInfoWithRetry(ctx context.Context, sess *Session) (*HomeInfo, error) {
	if sess.token == nil {
		return nil, ErrNotAuthenticated
	}
	policy := backoff.Exponential(
		backoff.WithMinInterval(c.cfg.HomeInfoInterval),
		backoff.WithMaxInterval(10*c.cfg.HomeInfoInterval),
		backoff.WithJitterFactor(0.05),
		backoff.WithMaxRetries(c.cfg.HomeInfoRetries+1),
	)
	b := policy.Start(ctx)
	var lastErr error
	attempt := 0
	for backoff.Continue(b) {
		attempt++
		info, err := c.homeInfo(ctx, sess)
		if err == nil {
			return info, nil
		}
		lastErr = err
		var perm *permanentError
		if errors.As(err, &perm) {
			break
		}
		c.log.Warn("velux home info request failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return nil, fmt.Errorf("velux home info failed after %d attempts: %w", attempt, lastErr)
}

func (c *Client) homeInfo(ctx context.Context, sess *Session) (*HomeInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.HomesURL, strings.NewReader(""))
	if err != nil {
		return nil, &permanentError{err}
	}
	req.Header.Set("Authorization", "Bearer "+sess.token.AccessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := sess.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("%w: home info returned %d", ErrUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			return nil, &permanentError{err}
		}
		return nil, err
	}
	info, err := ParseHomeInfo(body)
	if err != nil {
		return nil, &permanentError{fmt.Errorf("velux home info is not valid json: %w", err)}
	}
	return info, nil
}
