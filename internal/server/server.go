package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Mohid710/AEO-Snippet-Optimizer/db"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/cache"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/config"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/handler"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/metrics"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/repository"
	"github.com/Mohid710/AEO-Snippet-Optimizer/pkg/llm"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// NewComparer returns the upstream client for the configured provider.
func NewComparer(cfg *config.Config) llm.Comparer {
	if cfg.Provider == config.ProviderAnthropic {
		return llm.NewAnthropicClient(llm.AnthropicConfig{
			APIKey:      cfg.AnthropicAPIKey,
			BaseURL:     cfg.AnthropicURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.UpstreamTimeout,
		})
	}

	return llm.NewOpenRouterClient(llm.OpenRouterConfig{
		APIKey:      cfg.OpenRouterAPIKey,
		BaseURL:     cfg.OpenRouterURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.UpstreamTimeout,
		Referer:     cfg.AppURL,
		Title:       cfg.AppTitle,
	})
}

// newRecorder picks where finished analyses go. The queue is only used when a
// database exists for the archiver to drain it into.
func newRecorder(repo *repository.AnalysisRepository, rdb *redis.Client, useQueue bool) repository.Recorder {
	switch {
	case repo != nil && rdb != nil && useQueue:
		return repository.NewQueueRecorder(rdb)
	case repo != nil:
		return repo
	default:
		return repository.NopRecorder{}
	}
}

// Build connects the optional backing services and returns the routed engine.
// The returned cleanup func closes whatever was opened.
func Build(ctx context.Context, cfg *config.Config, middleware ...gin.HandlerFunc) (*gin.Engine, func(), error) {
	var (
		conn *sql.DB
		rdb  *redis.Client
		err  error
	)

	cleanup := func() {
		if rdb != nil {
			rdb.Close()
		}
		if conn != nil {
			conn.Close()
		}
	}

	if cfg.DatabaseURL != "" {
		conn, err = db.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connecting to DB: %w", err)
		}
		if err = db.Migrate(ctx, conn); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		slog.Info("connected to DB")
	}

	if cfg.RedisURL != "" {
		rdb, err = db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("connecting to Redis: %w", err)
		}
		slog.Info("connected to Redis")
	}

	m := metrics.New()
	comparer := NewComparer(cfg)

	var resultCache cache.Cache = cache.NopCache{}
	if rdb != nil && cfg.CacheTTL > 0 {
		resultCache = cache.NewRedisCache(rdb, cfg.CacheTTL)
	}

	var analysisRepo *repository.AnalysisRepository
	if conn != nil {
		analysisRepo = repository.NewAnalysisRepository(conn)
	}
	recorder := newRecorder(analysisRepo, rdb, cfg.ArchiveQueue)

	checks := map[string]handler.Check{}
	if conn != nil {
		checks["database"] = conn.PingContext
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	slog.Info("analysis pipeline ready",
		"provider", comparer.Provider(),
		"model", comparer.Model(),
		"cache", rdb != nil && cfg.CacheTTL > 0,
		"persistence", conn != nil,
		"recorder", fmt.Sprintf("%T", recorder),
	)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger(), gin.Recovery(), m.Middleware())
	r.Use(middleware...)
	r.NoMethod(handler.MethodNotAllowed)

	analyzeHandler := handler.NewAnalyzeHandler(comparer, resultCache, recorder, m)
	r.POST("/api/analyze", analyzeHandler.Analyze)
	r.POST("/analyze", analyzeHandler.Analyze)

	if analysisRepo != nil {
		analysisHandler := handler.NewAnalysisHandler(analysisRepo)
		r.GET("/api/analyses", analysisHandler.GetAnalyses)
		r.GET("/api/analyses/:id", analysisHandler.GetAnalysis)
	}

	r.GET("/health", handler.NewHealthHandler(checks).GetHealth)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	return r, cleanup, nil
}
