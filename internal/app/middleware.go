package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/btcrunway/btcrunway/internal/config"
	"github.com/btcrunway/btcrunway/internal/metrics"
	"github.com/btcrunway/btcrunway/pkg/price_history"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const requestIdHeader = "X-Request-Id"

type requestIdKey struct{}

// RequestIdFromContext returns the id assigned by the request id middleware, or "" outside a request.
func RequestIdFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, cfg config.Application) {
	r.Use(handlers.RecoveryHandler(handlers.RecoveryLogger(log.StandardLogger())))
	r.Use(requestIdMiddleware)
	r.Use(instrumentMiddleware)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
}

// Propagate X-Request-Id, or assign one, so log lines of a single request can be correlated
func requestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(requestIdHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIdHeader, id)
		ctx := context.WithValue(req.Context(), requestIdKey{}, id)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func instrumentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, req)

		route := "unmatched"
		if current := mux.CurrentRoute(req); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(req.Method, route, rec.status, elapsed)
		log.WithFields(log.Fields{
			"requestId": RequestIdFromContext(req.Context()),
			"method":    req.Method,
			"path":      req.URL.Path,
			"status":    rec.status,
			"duration":  elapsed,
		}).Debug("Handled request")
	})
}

// CorsMiddleware answers preflight requests with 204 and sets the allow headers for the given methods.
func CorsMiddleware(cfg config.Cors, methods ...string) mux.MiddlewareFunc {
	return handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods(methods),
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.OptionStatusCode(http.StatusNoContent),
	)
}

// methodNotAllowed keeps 405 responses in the same JSON error shape as the handlers.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	log.Debugf("method %s not allowed on %s", r.Method, r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	if err := json.NewEncoder(w).Encode(price_history.ErrorDTO{Error: "Method not allowed."}); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}
