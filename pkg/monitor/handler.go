package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/easystates/pkg/logger"
)

// Response is the JSON envelope of every console response.
type Response struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReadinessCheck reports whether a dependency of the console is usable.
type ReadinessCheck func(context.Context) error

// HandlerOption configures Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	logger *slog.Logger
	checks []ReadinessCheck
}

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(c *handlerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReadinessCheck adds a check run by GET /health/ready. Nil checks are ignored.
func WithReadinessCheck(checks ...ReadinessCheck) HandlerOption {
	return func(c *handlerConfig) {
		for _, ch := range checks {
			if ch != nil {
				c.checks = append(c.checks, ch)
			}
		}
	}
}

// Handler serves the read-only monitoring console:
//
//	GET /machines          snapshots of every registered machine
//	GET /machines/{name}   snapshot of one machine
//	GET /health/live       liveness probe
//	GET /health/ready      readiness probe running the configured checks
//
// Every response carries an X-Request-ID header.
func Handler(reg *Registry, opts ...HandlerOption) http.Handler {
	cfg := &handlerConfig{logger: logger.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(requestID(cfg.logger))

	r.Route("/machines", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, Response{Data: reg.Snapshots()})
		})
		r.Get("/{name}", func(w http.ResponseWriter, req *http.Request) {
			name := chi.URLParam(req, "name")
			m, ok := reg.Get(name)
			if !ok {
				writeJSON(w, http.StatusNotFound, Response{Error: &ErrorDetail{
					Code:    "not_found",
					Message: ErrMachineNotFound.Error() + ": " + name,
				}})
				return
			}
			writeJSON(w, http.StatusOK, Response{Data: m.Snapshot()})
		})
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, Response{Data: "ALIVE"})
		})
		r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
			for _, check := range cfg.checks {
				if err := check(req.Context()); err != nil {
					cfg.logger.ErrorContext(req.Context(), "readiness check failed",
						logger.Component("monitor"), logger.Error(err))
					writeJSON(w, http.StatusServiceUnavailable, Response{Error: &ErrorDetail{
						Code:    "not_ready",
						Message: "NOT_READY",
					}})
					return
				}
			}
			writeJSON(w, http.StatusOK, Response{Data: "READY"})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
