// Package api exposes the HTTP surface: the streaming search endpoint,
// health checks, and Prometheus metrics.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vnykmshr/papertrail/internal/platform/logger"
	"github.com/vnykmshr/papertrail/pkg/metrics"
)

// NewRouter builds the HTTP router. searchHandler serves the streaming
// search endpoint; registry feeds the metrics endpoint and request
// instrumentation.
func NewRouter(searchHandler *SearchHandler, registry *metrics.Registry) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(requestLogMiddleware(registry))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/search", searchHandler.ServeSearch)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// requestIDMiddleware attaches a request ID to the context so every log
// line within a request correlates.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequestID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogMiddleware logs request completion and records latency.
func requestLogMiddleware(registry *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			if registry != nil {
				registry.RequestDuration.
					WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(ww.Status())).
					Observe(elapsed.Seconds())
			}

			logger.FromContext(r.Context()).Info("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", elapsed))
		})
	}
}
