package api

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/eisenwinter/veluxidp/api/app/connect"
	"github.com/eisenwinter/veluxidp/config"
	"go.uber.org/zap"
)

// LambdaHandler serves api gateway proxy events with the same router as the http server
type LambdaHandler struct {
	router http.Handler
	log    *zap.Logger
}

func NewLambdaHandler(
	cfg *config.Configuration,
	logger *zap.Logger,
	issuer connect.TokenIssuer,
	registrar connect.Registrar) *LambdaHandler {
	return &LambdaHandler{
		router: compose(logger.Named("api"), cfg, issuer, registrar),
		log:    logger,
	}
}

// Start hands control to the lambda runtime, it never returns
func (h *LambdaHandler) Start() {
	h.log.Info("starting lambda handler")
	lambda.Start(h.Handle)
}

// Handle converts the event into a http request, the body is passed on untouched
func (h *LambdaHandler) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := toRequest(ctx, ev)
	if err != nil {
		h.log.Error("could not convert api gateway event", zap.Error(err))
		return events.APIGatewayProxyResponse{}, err
	}
	rw := newResponseWriter()
	h.router.ServeHTTP(rw, req)
	return rw.proxyResponse(), nil
}

func toRequest(ctx context.Context, ev events.APIGatewayProxyRequest) (*http.Request, error) {
	query := url.Values{}
	if len(ev.MultiValueQueryStringParameters) > 0 {
		for k, vs := range ev.MultiValueQueryStringParameters {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
	} else {
		for k, v := range ev.QueryStringParameters {
			query.Set(k, v)
		}
	}
	path := ev.Path
	if path == "" {
		path = "/"
	}
	u := &url.URL{Path: path, RawQuery: query.Encode()}
	req, err := http.NewRequestWithContext(ctx, ev.HTTPMethod, u.String(), strings.NewReader(ev.Body))
	if err != nil {
		return nil, err
	}
	if len(ev.MultiValueHeaders) > 0 {
		for k, vs := range ev.MultiValueHeaders {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	} else {
		for k, v := range ev.Headers {
			req.Header.Set(k, v)
		}
	}
	if ip := ev.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = ip
	}
	if id := ev.RequestContext.RequestID; id != "" && req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", id)
	}
	return req, nil
}

// responseWriter buffers the whole response, lambda answers are not streamed
type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) proxyResponse() events.APIGatewayProxyResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}
	single := make(map[string]string, len(w.header))
	for k, vs := range w.header {
		if len(vs) > 0 {
			single[k] = vs[0]
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode:        status,
		Headers:           single,
		MultiValueHeaders: map[string][]string(w.header),
		Body:              w.body.String(),
	}
}
