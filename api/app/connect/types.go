package connect

import (
	"net/http"

	"github.com/eisenwinter/veluxidp/velux"
	"github.com/go-chi/render"
)

const (
	msgMissingParameters   = "Missing required parameters"
	msgMissingBody         = "Missing request body"
	msgInvalidGrantType    = "Invalid grant type"
	msgInvalidCode         = "Invalid or expired authorization code"
	msgInvalidCredentials  = "Error validating credentials against Velux backend!"
	msgUnsupportedOperaton = "Unsupported operation"
	msgInternalServerError = "Internal server error"
)

const authorizationCodeGrant = "authorization_code"

// ErrorResponse is the error body of every endpoint, the message never contains user input
type ErrorResponse struct {
	Message    string `json:"error"`
	StatusCode int    `json:"-"`
}

func (e *ErrorResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func createError(status int, message string) *ErrorResponse {
	return &ErrorResponse{
		Message:    message,
		StatusCode: status,
	}
}

// UnsupportedOperation answers every unknown route or method
func UnsupportedOperation() *ErrorResponse {
	return createError(http.StatusNotFound, msgUnsupportedOperaton)
}

// InternalServerError answers every unexpected failure
func InternalServerError() *ErrorResponse {
	return createError(http.StatusInternalServerError, msgInternalServerError)
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (*accessTokenResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Cache-Control", "no-store")
	return nil
}

type registerUserRequest struct {
	VeluxUserID   string `json:"velux_user_id"`
	VeluxPassword string `json:"velux_password"`
}

type codeMessage struct {
	Code string `json:"code"`
}

type registerUserResponse struct {
	Message  codeMessage     `json:"message"`
	HomeInfo *velux.HomeInfo `json:"homeInfo"`
}

func (*registerUserResponse) Render(_ http.ResponseWriter, _ *http.Request) error {
	return nil
}
