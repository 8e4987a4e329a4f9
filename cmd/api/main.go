package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/paulgroup/leadbot/cmd/mainconfig"
	"github.com/paulgroup/leadbot/internal/api/router"
	appconfig "github.com/paulgroup/leadbot/internal/config"
	"github.com/paulgroup/leadbot/internal/conversation"
	"github.com/paulgroup/leadbot/internal/crm"
	"github.com/paulgroup/leadbot/internal/leads"
	"github.com/paulgroup/leadbot/internal/messaging"
	"github.com/paulgroup/leadbot/internal/observability/metrics"
	"github.com/paulgroup/leadbot/internal/training"
	"github.com/paulgroup/leadbot/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Lead storage: Postgres when configured, in-memory otherwise.
	var leadsRepo leads.Repository
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		leadsRepo = leads.NewPostgresRepository(pool)
		logger.Info("using postgres lead repository")
	} else {
		leadsRepo = leads.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set, using in-memory lead repository")
	}

	// Training dataset: file seed first, Redis snapshot as fallback.
	holder := &training.Holder{}
	var snapshots *training.SnapshotStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		snapshots = training.NewSnapshotStore(redis.NewClient(opts), logger)
	}
	seedDataset(ctx, cfg, holder, snapshots, logger)
	matcher := training.NewMatcher(holder, cfg.FuzzyThreshold)

	// LLM fallback: Bedrock primary, Gemini secondary. Either may be absent.
	llmClient := buildLLMClient(ctx, cfg, logger)
	responder := conversation.NewResponder(llmClient, cfg.BedrockModelID, int32(cfg.LLMMaxTokens), cfg.LLMTimeout, logger)

	convMetrics := metrics.NewConversationMetrics(prometheus.DefaultRegisterer)
	dispatcher := crm.NewDispatcher(cfg.CRMWebhookURL, cfg.CRMTimeout, logger)
	engine := conversation.NewEngine(matcher, responder, logger)
	service := conversation.NewService(leadsRepo, engine, dispatcher, cfg.CRMTimeout, logger, convMetrics)

	messagingHandler := messaging.NewHandler(cfg.TwilioWebhookSecret, service, leadsRepo, logger)
	leadsHandler := leads.NewHandler(leadsRepo, logger)
	trainingHandler := training.NewHandler(holder, snapshots, matcher, logger)

	r := router.New(&router.Config{
		Logger:           logger,
		MessagingHandler: messagingHandler,
		LeadsHandler:     leadsHandler,
		TrainingHandler:  trainingHandler,
		AdminAuthSecret:  cfg.AdminJWTSecret,
		MetricsHandler:   promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// seedDataset loads the curated dataset from disk when a path is configured,
// otherwise restores the last uploaded snapshot from Redis. Running without
// a dataset is fine; off-script messages then go straight to the LLM.
func seedDataset(ctx context.Context, cfg *appconfig.Config, holder *training.Holder, snapshots *training.SnapshotStore, logger *logging.Logger) {
	if cfg.DatasetPath != "" {
		ds, err := training.LoadFile(cfg.DatasetPath)
		if err != nil {
			logger.Error("failed to load dataset file", "error", err, "path", cfg.DatasetPath)
		} else {
			holder.Replace(ds)
			logger.Info("dataset loaded from file", "records", ds.Len(), "path", cfg.DatasetPath)
			return
		}
	}

	if snapshots == nil {
		logger.Warn("no training dataset configured")
		return
	}

	ds, err := snapshots.Load(ctx)
	if err != nil {
		if errors.Is(err, training.ErrNoSnapshot) {
			logger.Warn("no dataset snapshot in redis")
		} else {
			logger.Error("failed to load dataset snapshot", "error", err)
		}
		return
	}
	holder.Replace(ds)
	logger.Info("dataset restored from redis snapshot", "records", ds.Len())
}

func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) conversation.LLMClient {
	var primary conversation.LLMClient
	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
		} else {
			primary = conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
			logger.Info("bedrock LLM configured", "model", cfg.BedrockModelID)
		}
	}

	var fallback conversation.LLMClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
		} else {
			fallback = gemini
			logger.Info("gemini LLM configured", "model", cfg.GeminiModelID)
		}
	}

	switch {
	case primary != nil && fallback != nil:
		return conversation.NewFallbackLLMClient(primary, fallback, logger)
	case primary != nil:
		return primary
	case fallback != nil:
		return fallback
	default:
		logger.Warn("no LLM provider configured, off-script replies use static redirect")
		return nil
	}
}
