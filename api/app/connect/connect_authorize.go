package connect

import (
	"net/http"
	"net/url"

	"github.com/eisenwinter/veluxidp/sanitize"
)

func (c *ConnectRessource) authorize(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	clientID := q.Get("client_id")
	redirectURI := q.Get("redirect_uri")
	state := q.Get("state")
	if clientID == "" || redirectURI == "" {
		c.logger.Info("authorize: missing required parameters")
		c.respond(w, r, createError(http.StatusBadRequest, msgMissingParameters))
		return nil
	}
	callback, err := url.Parse(redirectURI)
	if err != nil {
		c.logger.Info("authorize: unparsable redirect_uri", sanitize.UserInputString("redirect_uri", redirectURI))
		c.respond(w, r, createError(http.StatusBadRequest, msgMissingParameters))
		return nil
	}

	code, err := c.issuer.IssueAuthorizationCode(r.Context(), clientID, redirectURI, "")
	if err != nil {
		return err
	}
	c.logger.Debug("authorize: issued authorization code",
		sanitize.UserInputString("client_id", clientID),
		sanitize.UserInputString("redirect_uri", redirectURI))

	params := callback.Query()
	params.Set("code", code)
	params.Set("state", state)
	callback.RawQuery = params.Encode()
	w.Header().Set("Location", callback.String())
	w.WriteHeader(http.StatusFound)
	return nil
}

