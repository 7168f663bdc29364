package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/eisenwinter/veluxidp/api/app/connect/mocks"
	"github.com/eisenwinter/veluxidp/config"
	"github.com/eisenwinter/veluxidp/tokens"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Configuration {
	return &config.Configuration{
		Server: &config.ServerConfiguration{
			Port:    3000,
			Timeout: 5 * time.Second,
		},
	}
}

func TestUnsupportedOperations(t *testing.T) {
	issuer := mocks.NewTokenIssuer(t)
	registrar := mocks.NewRegistrar(t)
	router := compose(zaptest.NewLogger(t), testConfig(), issuer, registrar)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/unknown"},
		{http.MethodPost, "/authorize"},
		{http.MethodGet, "/token"},
		{http.MethodGet, "/register_user"},
		{http.MethodDelete, "/token"},
	}
	for _, c := range cases {
		apitest.New(c.method+" "+c.path).
			Handler(router).
			Method(c.method).
			URL(c.path).
			Expect(t).
			Status(http.StatusNotFound).
			Body(`{"error":"Unsupported operation"}`).
			End()
	}
}

func TestPanicsBecomeInternalServerError(t *testing.T) {
	issuer := mocks.NewTokenIssuer(t)
	registrar := mocks.NewRegistrar(t)
	issuer.On("IssueAuthorizationCode", mock.Anything, "skill", "https://cb.example/x", "").
		Run(func(mock.Arguments) { panic("boom") }).
		Return("", nil).Once()
	router := compose(zaptest.NewLogger(t), testConfig(), issuer, registrar)

	apitest.New().
		Handler(router).
		Get("/authorize").
		Query("client_id", "skill").
		Query("redirect_uri", "https://cb.example/x").
		Expect(t).
		Status(http.StatusInternalServerError).
		Body(`{"error":"Internal server error"}`).
		End()
}

func TestRoutesReachHandlers(t *testing.T) {
	issuer := mocks.NewTokenIssuer(t)
	registrar := mocks.NewRegistrar(t)
	issuer.On("IssueAuthorizationCode", mock.Anything, "skill", "https://cb.example/x", "").Return("C1", nil).Once()
	router := compose(zaptest.NewLogger(t), testConfig(), issuer, registrar)

	apitest.New().
		Handler(router).
		Get("/authorize").
		Query("client_id", "skill").
		Query("redirect_uri", "https://cb.example/x").
		Query("state", "s").
		Expect(t).
		Status(http.StatusFound).
		Header("Location", "https://cb.example/x?code=C1&state=s").
		End()
}

func TestLambdaHandler(t *testing.T) {
	issuer := mocks.NewTokenIssuer(t)
	registrar := mocks.NewRegistrar(t)
	issuer.On("ExchangeAuthorizationCode", mock.Anything, "C1", "skill", "https://cb.example/x").
		Return(&tokens.IssuedAccessToken{AccessToken: "T1", ExpiresIn: time.Hour}, nil).Once()
	h := NewLambdaHandler(testConfig(), zaptest.NewLogger(t), issuer, registrar)

	body := base64.StdEncoding.EncodeToString(
		[]byte("code=C1&client_id=skill&redirect_uri=https%3A%2F%2Fcb.example%2Fx&grant_type=authorization_code"))
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/token",
		Body:            body,
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"access_token":"T1","token_type":"bearer","expires_in":3600}`, resp.Body)
	assert.Contains(t, resp.Headers["Content-Type"], "application/json")
}

func TestLambdaHandlerQueryAndNotFound(t *testing.T) {
	issuer := mocks.NewTokenIssuer(t)
	registrar := mocks.NewRegistrar(t)
	issuer.On("IssueAuthorizationCode", mock.Anything, "skill", "https://cb.example/x", "").Return("C1", nil).Once()
	h := NewLambdaHandler(testConfig(), zaptest.NewLogger(t), issuer, registrar)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodGet,
		Path:       "/authorize",
		QueryStringParameters: map[string]string{
			"client_id":    "skill",
			"redirect_uri": "https://cb.example/x",
			"state":        "s",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://cb.example/x?code=C1&state=s", resp.Headers["Location"])

	resp, err = h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPut,
		Path:       "/register_user",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Unsupported operation"}`, resp.Body)
}

func TestCorsOptions(t *testing.T) {
	opts := corsOptions(nil)
	assert.Equal(t, []string{"https://*", "http://*"}, opts.AllowedOrigins)

	opts = corsOptions(&config.CORSConfiguration{
		AllowedOrigins:   []string{"https://skill.example"},
		AllowCredentials: true,
	})
	assert.Equal(t, []string{"https://skill.example"}, opts.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, opts.AllowedMethods)
	assert.True(t, opts.AllowCredentials)
}
