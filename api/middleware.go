package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/eisenwinter/veluxidp/api/app/connect"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// loggerMiddleware writes one access log line per request, server errors are logged as warnings
func loggerMiddleware(l *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
				zap.Int("status", status),
				zap.Int("size", ww.BytesWritten()),
				zap.Duration("latency", time.Since(started)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			}
			msg := fmt.Sprintf("%s %s -> %d", r.Method, r.URL.Path, status)
			if status >= http.StatusInternalServerError {
				l.Warn(msg, fields...)
				return
			}
			l.Info(msg, fields...)
		})
	}
}

// recoverer answers panics with the generic json error instead of a bare 500
func recoverer(l *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				l.Error("recovered from panic",
					zap.Any("panic", rvr),
					zap.String("requestID", middleware.GetReqID(r.Context())),
					zap.ByteString("stack", debug.Stack()))
				if err := render.Render(w, r, connect.InternalServerError()); err != nil {
					l.Error("unable to render response", zap.Error(err))
				}
			}()
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
