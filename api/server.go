package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/eisenwinter/veluxidp/api/app/connect"
	"github.com/eisenwinter/veluxidp/config"
	"go.uber.org/zap"
)

const shutdownGracePeriod = 15 * time.Second

type Server struct {
	server *http.Server
	log    *zap.Logger
}

func NewServer(
	cfg *config.Configuration,
	logger *zap.Logger,
	issuer connect.TokenIssuer,
	registrar connect.Registrar) *Server {
	api := compose(logger.Named("api"), cfg, issuer, registrar)
	bind := net.JoinHostPort(cfg.Server.Address, strconv.Itoa(cfg.Server.Port))
	srv := http.Server{
		Addr:              bind,
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &Server{
		server: &srv,
		log:    logger,
	}
}

// Start runs ListenAndServe on the http.Server with graceful shutdown.
func (srv *Server) Start() error {
	srv.log.Info("starting server")
	failed := make(chan error, 1)
	go func() {
		if err := srv.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()
	srv.log.Info("listening", zap.String("addr", srv.server.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-failed:
		srv.log.Error("server failed", zap.Error(err))
		return err
	case sig := <-quit:
		srv.log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.server.Shutdown(ctx); err != nil {
		srv.log.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	srv.log.Info("graceful shutdown completed")
	return nil
}
