package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/dental-ai-assistant/internal/api/router"
	"github.com/wolfman30/dental-ai-assistant/internal/chatbot"
	appconfig "github.com/wolfman30/dental-ai-assistant/internal/config"
	"github.com/wolfman30/dental-ai-assistant/internal/directory"
	"github.com/wolfman30/dental-ai-assistant/internal/gemini"
	"github.com/wolfman30/dental-ai-assistant/internal/observability/metrics"
	"github.com/wolfman30/dental-ai-assistant/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting dental-ai-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}
	store, err := setupDirectory(cfg, pool, logger)
	if err != nil {
		logger.Error("failed to set up clinic directory", "error", err)
		os.Exit(1)
	}

	redisClient := connectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	transcript := chatbot.NewTranscriptStore(redisClient, cfg.TranscriptMaxMessages, cfg.TranscriptTTL)

	metricsHandler, chatbotMetrics := setupChatbotMetrics()

	ai, closer, err := setupGemini(ctx, cfg, logger, chatbotMetrics)
	if err != nil {
		logger.Error("failed to set up gemini client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	service := chatbot.NewService(store, ai,
		chatbot.WithLocation(cfg.Location()),
		chatbot.WithServiceLogger(logger),
		chatbot.WithServiceMetrics(chatbotMetrics),
	)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatbotHandler:     chatbot.NewHandler(service, transcript, logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		JWTSecret:          cfg.ChatbotJWTSecret,
		RateLimit:          cfg.ChatbotRateLimit,
		RateBurst:          cfg.ChatbotRateBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(ai),
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "ai_enabled", ai.Configured())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func setupChatbotMetrics() (http.Handler, *metrics.ChatbotMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewChatbotMetrics(reg)
}

func connectPostgresPool(ctx context.Context, dbURL string, logger *logging.Logger) *pgxpool.Pool {
	if dbURL == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to postgres")
	return pool
}

// setupDirectory prefers Postgres and falls back to process memory, seeded
// with demo data when SEED_DEMO_DATA is set.
func setupDirectory(cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) (directory.Store, error) {
	if pool != nil {
		return directory.NewPostgresStore(pool, cfg.Location()), nil
	}
	store := directory.NewInMemoryStore()
	if cfg.SeedDemoData {
		if err := directory.SeedDemo(store, cfg.Location()); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		logger.Info("seeded in-memory directory with demo data")
	} else {
		logger.Warn("DATABASE_URL not set; using an empty in-memory directory")
	}
	return store, nil
}

func connectRedis(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set; chat transcripts disabled")
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable; chat transcripts disabled", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// setupGemini builds the intent client. Without an API key the client is
// returned unconfigured and the chatbot answers from keyword rules only.
func setupGemini(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, m *metrics.ChatbotMetrics) (*gemini.Client, io.Closer, error) {
	policy := gemini.DefaultRetryPolicy()
	if cfg.GeminiMaxAttempts > 0 {
		policy.MaxAttempts = cfg.GeminiMaxAttempts
	}
	if cfg.GeminiRetryDelay > 0 {
		policy.Delay = cfg.GeminiRetryDelay
	}
	opts := []gemini.Option{
		gemini.WithRetryPolicy(policy),
		gemini.WithAttemptTimeout(cfg.GeminiHTTPTimeout),
		gemini.WithLogger(logger),
		gemini.WithMetrics(m),
	}

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; chatbot running in rule-only mode")
		return gemini.New(nil, opts...), nopCloser{}, nil
	}

	switch cfg.GeminiTransport {
	case "sdk":
		transport, err := gemini.NewSDKTransport(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("gemini client configured", "transport", "sdk")
		return gemini.New(transport, opts...), transport, nil
	case "", "rest":
		logger.Info("gemini client configured", "transport", "rest")
		transport := gemini.NewRESTTransport(cfg.GeminiAPIKey, cfg.GeminiHTTPTimeout)
		return gemini.New(transport, opts...), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown GEMINI_TRANSPORT %q", cfg.GeminiTransport)
	}
}

// writeTimeout leaves room for a full failover sweep across every endpoint.
func writeTimeout(ai *gemini.Client) time.Duration {
	const floor = 15 * time.Second
	if ai == nil || !ai.Configured() {
		return floor
	}
	worst := ai.WorstCase() + 5*time.Second
	if worst < floor {
		return floor
	}
	return worst
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
