package server

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"

	"github.com/fasalvikas/fasal-vikas/internal/config"
	"github.com/fasalvikas/fasal-vikas/internal/logging"
	"github.com/fasalvikas/fasal-vikas/internal/metrics"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// requestID reuses an upstream X-Request-ID or generates one, and stores it
// in the request context for logging.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = logging.GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// statusRecorder captures the response status code
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// routeLabel is filled in by captureRoute once mux has matched a route
type routeLabel struct {
	template string
}

type routeLabelKey struct{}

// captureRoute records the matched route template for instrument. It runs
// as a mux middleware because only then is the current route known.
func captureRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if label, ok := r.Context().Value(routeLabelKey{}).(*routeLabel); ok {
			if cr := mux.CurrentRoute(r); cr != nil {
				if tmpl, err := cr.GetPathTemplate(); err == nil {
					label.template = tmpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// instrument logs every request and records Prometheus metrics labelled by
// route template so IDs in paths do not explode cardinality. It wraps the
// whole router, so 404 and 405 responses are counted as "unmatched".
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		label := &routeLabel{template: "unmatched"}

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), routeLabelKey{}, label)))

		duration := time.Since(start)
		metrics.RecordAPIRequest(r.Method, label.template, rec.status, duration)

		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("route", label.template).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// chain wraps the router with the outer middleware, outermost first:
// requestID, instrument, Recoverer, CORS.
func chain(cfg config.Config, router http.Handler) http.Handler {
	return requestID(instrument(chimiddleware.Recoverer(corsHandler(cfg.CORS, router))))
}

// corsHandler wraps h with the configured CORS policy
func corsHandler(cfg config.CORSConfig, h http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: cfg.Origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})(h)
}

// rateLimit limits requests per client IP, or does nothing when disabled
func rateLimit(cfg config.RateLimitConfig) mux.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(cfg.Requests, cfg.Window)
}
