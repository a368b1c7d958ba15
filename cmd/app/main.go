// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/synapse-ai/cortex/internal/config"
	"github.com/synapse-ai/cortex/internal/domain/ports/adapter"
	aiAdapters "github.com/synapse-ai/cortex/internal/infra/adapters/ai"
	"github.com/synapse-ai/cortex/internal/infra/extraction"
	"github.com/synapse-ai/cortex/internal/infra/jobstore"
	"github.com/synapse-ai/cortex/internal/infra/logging"
	"github.com/synapse-ai/cortex/internal/infra/metrics"
	neo "github.com/synapse-ai/cortex/internal/infra/neo4j"
	red "github.com/synapse-ai/cortex/internal/infra/redis"
	"github.com/synapse-ai/cortex/internal/infra/web"
	"github.com/synapse-ai/cortex/internal/infra/worker"
	"github.com/synapse-ai/cortex/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- Neo4j ----
	graph, err := neo.NewGateway(ctx, cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		logger.Fatal().Err(err).Str("uri", cfg.Neo4j.URI).Msg("neo4j connection failed")
	}
	defer func() {
		if err := graph.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("neo4j close")
		}
	}()

	// ---- Redis (optional; only the ingest rate limiter uses it) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Info().Msg("redis not configured, ingest rate limiting disabled")
	}

	// ---- Extraction service ----
	engine, err := extraction.NewGraphitiClient(cfg.Graphiti.BaseURL, cfg.Graphiti.APIKey, cfg.Graphiti.Timeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("graphiti client")
	}

	// ---- AI adapter (Gemini -> OpenAI -> disabled) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	default:
		logger.Warn().Msg("no AI provider configured, chat completions disabled")
	}

	// ---- Job store and worker pool ----
	jobs := jobstore.New()
	pool := worker.NewPool(cfg.Ingest.Workers, logger)
	pool.Start(ctx)

	// ---- Use cases ----
	hydrationUC := usecase.NewHydrationUseCase(graph, cfg.Ingest.MinDegree, logger)
	ingestionUC := usecase.NewIngestionUseCase(jobs, engine, hydrationUC, pool, cfg.Graphiti.Model, logger)
	graphUC := usecase.NewGraphUseCase(graph, engine, logger)
	generationUC := usecase.NewGenerationUseCase(ai, cfg.AI.DefaultModel, logger)

	// ---- HTTP server ----
	sessionSecret := cfg.Server.SessionSecret
	if sessionSecret == "" {
		sessionSecret = cfg.Server.APISecret
	}
	srv := web.NewServer(ingestionUC, hydrationUC, graphUC, generationUC, web.ServerOptions{
		APISecret:  cfg.Server.APISecret,
		Auth:       web.NewAuthManager(sessionSecret, !cfg.Runtime.Dev, cfg.Server.SessionTTL),
		Limiter:    limiter,
		RateLimit:  cfg.Ingest.RateLimit,
		RateWindow: cfg.Ingest.RateLimitWindow,
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	cancel()
	pool.Stop()
	logger.Info().Msg("shutdown complete")
}
