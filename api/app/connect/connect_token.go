package connect

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/eisenwinter/veluxidp/sanitize"
	"github.com/eisenwinter/veluxidp/tokens"
	"go.uber.org/zap"
)

// decodeTokenBody turns the base64 encoded form body into its fields,
// anything undecodable yields no fields at all
func decodeTokenBody(body []byte) url.Values {
	raw := strings.TrimSpace(string(body))
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return url.Values{}
		}
	}
	values, err := url.ParseQuery(string(decoded))
	if err != nil {
		return url.Values{}
	}
	return values
}

func (c *ConnectRessource) token(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return err
	}
	form := decodeTokenBody(body)
	code := form.Get("code")
	clientID := form.Get("client_id")
	redirectURI := form.Get("redirect_uri")
	grantType := form.Get("grant_type")

	if code == "" || clientID == "" || redirectURI == "" || grantType == "" {
		c.logger.Info("token: missing required parameters")
		c.respond(w, r, createError(http.StatusBadRequest, msgMissingParameters))
		return nil
	}
	if grantType != authorizationCodeGrant {
		c.logger.Info("token: invalid grant type", sanitize.UserInputString("grant_type", grantType))
		c.respond(w, r, createError(http.StatusBadRequest, msgInvalidGrantType))
		return nil
	}

	issued, err := c.issuer.ExchangeAuthorizationCode(r.Context(), code, clientID, redirectURI)
	if err != nil {
		if errors.Is(err, tokens.ErrInvalidCode) {
			c.logger.Info("token: invalid or expired authorization code",
				sanitize.UserInputString("client_id", clientID))
			c.respond(w, r, createError(http.StatusBadRequest, msgInvalidCode))
			return nil
		}
		return err
	}
	c.logger.Debug("token: issued access token", zap.Time("expires_at", issued.ExpiresAt))
	c.respond(w, r, &accessTokenResponse{
		AccessToken: issued.AccessToken,
		TokenType:   tokens.TokenType,
		ExpiresIn:   issued.ExpiresInSeconds(),
	})
	return nil
}
