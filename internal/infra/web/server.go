// File: internal/infra/web/server.go
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/synapse-ai/cortex/internal/infra/redis"
	"github.com/synapse-ai/cortex/internal/usecase"
)

type Server struct {
	ingestUC     usecase.IngestionUseCase
	hydrationUC  usecase.HydrationUseCase
	graphUC      usecase.GraphUseCase
	generationUC usecase.GenerationUseCase

	apiSecret  string
	auth       *AuthManager
	limiter    *redis.RateLimiter
	rateLimit  int
	rateWindow time.Duration

	log *zerolog.Logger
}

type ServerOptions struct {
	APISecret  string
	Auth       *AuthManager
	Limiter    *redis.RateLimiter // nil disables rate limiting
	RateLimit  int
	RateWindow time.Duration
}

func NewServer(
	ingestUC usecase.IngestionUseCase,
	hydrationUC usecase.HydrationUseCase,
	graphUC usecase.GraphUseCase,
	generationUC usecase.GenerationUseCase,
	opts ServerOptions,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		ingestUC:     ingestUC,
		hydrationUC:  hydrationUC,
		graphUC:      graphUC,
		generationUC: generationUC,
		apiSecret:    opts.APISecret,
		auth:         opts.Auth,
		limiter:      opts.Limiter,
		rateLimit:    opts.RateLimit,
		rateWindow:   opts.RateWindow,
		log:          logger,
	}
}

// Router assembles the full route tree. /health and /metrics are open;
// everything else sits behind the shared secret, except the explorer read
// which also accepts a minted session.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID)
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))

	r.Get("/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/v1/auth/session", s.sessionHandler)

	r.Group(func(r chi.Router) {
		r.Use(s.secretAuth)
		r.Post("/ingest", s.ingestHandler)
		r.Get("/ingest/{jobID}", s.pollHandler)
		r.Post("/hydrate", s.hydrateHandler)
		r.Post("/v1/chat/completions", s.completionsHandler)
		r.Post("/v1/graph/correction", s.correctionHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.explorerAuth)
		r.Get("/v1/graph/{groupID}", s.graphHandler)
	})

	return r
}

func (s *Server) allowIngest(ctx context.Context, userID string) (bool, error) {
	limit := s.rateLimit
	if limit <= 0 {
		limit = 30
	}
	window := s.rateWindow
	if window <= 0 {
		window = time.Minute
	}
	return s.limiter.Allow(ctx, redis.IngestKey(userID), limit, window)
}
