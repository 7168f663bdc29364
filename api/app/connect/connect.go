package connect

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// maxBodySize bounds token and registration bodies
const maxBodySize = 64 << 10

type ConnectRessource struct {
	logger    *zap.Logger
	issuer    TokenIssuer
	registrar Registrar
}

func NewConnectRessource(logger *zap.Logger,
	issuer TokenIssuer,
	registrar Registrar) *ConnectRessource {
	return &ConnectRessource{
		logger:    logger,
		issuer:    issuer,
		registrar: registrar,
	}
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle turns unexpected handler errors into a generic 500
func (c *ConnectRessource) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		c.logger.Error("unexpected error while handling request",
			zap.String("path", r.URL.Path),
			zap.String("requestID", middleware.GetReqID(r.Context())),
			zap.Error(err))
		c.respond(w, r, InternalServerError())
	}
}

func (c *ConnectRessource) respond(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		c.logger.Error("unable to render response", zap.Error(err))
	}
}

func (c *ConnectRessource) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/authorize", c.handle(c.authorize))
	r.Post("/token", c.handle(c.token))
	r.Post("/register_user", c.handle(c.registerUser))

	return r
}
