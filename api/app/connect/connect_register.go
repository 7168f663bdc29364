package connect

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/eisenwinter/veluxidp/sanitize"
	"github.com/eisenwinter/veluxidp/user"
)

func (c *ConnectRessource) registerUser(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		c.logger.Info("register_user: missing request body")
		c.respond(w, r, createError(http.StatusBadRequest, msgMissingBody))
		return nil
	}
	var req registerUserRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return err
	}
	if req.VeluxUserID == "" || req.VeluxPassword == "" {
		c.logger.Info("register_user: missing required parameters")
		c.respond(w, r, createError(http.StatusBadRequest, msgMissingParameters))
		return nil
	}

	reg, err := c.registrar.Register(r.Context(), req.VeluxUserID, req.VeluxPassword)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			c.respond(w, r, createError(http.StatusUnauthorized, msgInvalidCredentials))
			return nil
		}
		return err
	}
	c.logger.Info("register_user: registered user", sanitize.UserInputString("velux_user_id", req.VeluxUserID))
	c.respond(w, r, &registerUserResponse{
		Message:  codeMessage{Code: reg.Code},
		HomeInfo: reg.HomeInfo,
	})
	return nil
}
