// Package webhook exposes the intake agent over HTTP.
package webhook

import (
	"context"
	"encoding/json"
	"net/http"

	"claim-intake/internal/common/logger"
	"claim-intake/internal/common/validation"
	"claim-intake/internal/intake"
	"claim-intake/internal/intake/replay"
	"claim-intake/internal/intake/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxWebhookBody = 1 << 20

// Pinger is anything /ready can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	UploadDir      string
	MaxUploadBytes int64
}

// Dependencies are injected by the serve command. Replay, Workflows and
// Pingers are optional.
type Dependencies struct {
	Agent     *intake.Agent
	Store     store.SessionStore
	Replay    *replay.Cache
	Workflows intake.WorkflowStarter
	Validator *validation.Validator
	Pingers   map[string]Pinger
	Logger    logger.Logger
}

type Server struct {
	config Config
	deps   Dependencies
	logger logger.Logger
}

func NewServer(cfg Config, deps Dependencies) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "data/uploads"
	}
	if deps.Validator == nil {
		deps.Validator = validation.NewWebhookValidator()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	return &Server{config: cfg, deps: deps, logger: deps.Logger}
}

// Router builds the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhook", s.handleWebhook)

	r.Get("/upload-image/{sessionID}", s.handleUploadForm)
	r.Post("/upload-image/{sessionID}", s.handleUpload)

	r.Get("/claims/{sessionID}", s.handleClaimStatus)

	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
