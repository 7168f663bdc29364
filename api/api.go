package api

import (
	"net/http"
	"time"

	"github.com/eisenwinter/veluxidp/api/app/connect"
	"github.com/eisenwinter/veluxidp/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const defaultTimeout = 50 * time.Second

func corsOptions(cfg *config.CORSConfiguration) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	if cfg == nil {
		return opts
	}
	if len(cfg.AllowedOrigins) > 0 {
		opts.AllowedOrigins = cfg.AllowedOrigins
	}
	if len(cfg.AllowedMethods) > 0 {
		opts.AllowedMethods = cfg.AllowedMethods
	}
	opts.AllowCredentials = cfg.AllowCredentials
	return opts
}

func compose(logger *zap.Logger,
	cfg *config.Configuration,
	issuer connect.TokenIssuer,
	registrar connect.Registrar) *chi.Mux {

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Use(loggerMiddleware(logger))

	r.Use(recoverer(logger))

	timeout := defaultTimeout
	var corsCfg *config.CORSConfiguration
	if cfg.Server != nil {
		if cfg.Server.Timeout > 0 {
			timeout = cfg.Server.Timeout
		}
		corsCfg = cfg.Server.CORS
	}
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(corsOptions(corsCfg)))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	unsupported := func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("unsupported operation",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		if err := render.Render(w, r, connect.UnsupportedOperation()); err != nil {
			logger.Error("unable to render response", zap.Error(err))
		}
	}
	r.NotFound(unsupported)
	r.MethodNotAllowed(unsupported)

	connectRessource := connect.NewConnectRessource(
		logger.Named("connect_ressource"),
		issuer,
		registrar,
	)
	// not found handlers have to be set before mounting to be inherited
	r.Mount("/", connectRessource.Router())

	return r
}
