package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vnykmshr/papertrail/internal/api"
	"github.com/vnykmshr/papertrail/internal/cache"
	"github.com/vnykmshr/papertrail/internal/config"
	"github.com/vnykmshr/papertrail/internal/maintenance"
	"github.com/vnykmshr/papertrail/internal/platform/gemini"
	"github.com/vnykmshr/papertrail/internal/platform/logger"
	"github.com/vnykmshr/papertrail/internal/platform/openalex"
	"github.com/vnykmshr/papertrail/internal/platform/postgres"
	"github.com/vnykmshr/papertrail/internal/platform/rediscache"
	"github.com/vnykmshr/papertrail/internal/ranking"
	"github.com/vnykmshr/papertrail/internal/search"
	"github.com/vnykmshr/papertrail/internal/source"
	"github.com/vnykmshr/papertrail/internal/summary"
	"github.com/vnykmshr/papertrail/pkg/metrics"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log := logger.Setup(cfg.Server)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metrics.DefaultRegistry

	// Cache store: Redis when configured, in-memory otherwise.
	var store cache.Store
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		store = rediscache.New(redisClient)
		log.Info("using redis cache", "addr", cfg.Redis.Addr)
	} else {
		store = cache.NewMemoryStore()
		log.Info("using in-memory cache")
	}
	store = cache.NewInstrumentedStore(store, registry)

	library := source.NewCachedLibrary(openalex.New(openalex.Config{
		BaseURL:           cfg.Source.OpenAlexBaseURL,
		MailTo:            cfg.Source.MailTo,
		RequestsPerSecond: cfg.Source.RequestsPerSecond,
		Metrics:           registry,
	}), store)

	// Summarizer: Gemini when an API key is configured.
	var summarizer summary.Summarizer = summary.Disabled{}
	if cfg.LLM.GeminiAPIKey != "" {
		geminiSummarizer, err := gemini.NewSummarizer(ctx, log, cfg.LLM)
		if err != nil {
			return fmt.Errorf("create summarizer: %w", err)
		}
		summarizer = summary.NewCachedSummarizer(geminiSummarizer, store)
		log.Info("author summarization enabled", "model", cfg.LLM.ModelName)
	} else {
		log.Info("author summarization disabled, no API key configured")
	}

	// Topic-based author ranking: enabled when a database is configured.
	deps := search.Deps{
		Library:    library,
		Summarizer: summarizer,
		Ranker:     ranking.New(cfg.Search.TopKPublications),
		Metrics:    registry,
		Logger:     log,
	}
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer func() { _ = db.Close() }()
		deps.Topics = postgres.NewTopicStore(db, log)
		log.Info("topic-based author ranking enabled")
	}

	service := search.New(deps, cfg.Search, cfg.Source.SliceSize)
	router := api.NewRouter(api.NewSearchHandler(service, registry), registry)

	// The in-memory cache needs periodic sweeping; Redis expires natively.
	if cfg.Maintenance.CacheSweepSchedule != "" && redisClient == nil {
		janitor, err := maintenance.NewJanitor(store, cfg.Maintenance.CacheSweepSchedule, log)
		if err != nil {
			return fmt.Errorf("create cache janitor: %w", err)
		}
		janitor.Start()
		defer janitor.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("server stopped")
	return nil
}
