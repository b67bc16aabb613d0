package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/wolfman30/dental-ai-assistant/internal/config"
	"github.com/wolfman30/dental-ai-assistant/internal/directory"
	"github.com/wolfman30/dental-ai-assistant/internal/gemini"
	"github.com/wolfman30/dental-ai-assistant/pkg/logging"
)

func TestSetupChatbotMetricsExposesMetrics(t *testing.T) {
	handler, m := setupChatbotMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveMessage("rules", "text")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "dental_chatbot_messages_total") {
		t.Fatalf("expected chatbot counter to be exported")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestSetupDirectorySeedsDemoData(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{SeedDemoData: true, ClinicTimezone: "UTC"}

	store, err := setupDirectory(cfg, nil, logger)
	if err != nil {
		t.Fatalf("setup directory: %v", err)
	}
	if _, ok := store.(*directory.InMemoryStore); !ok {
		t.Fatalf("expected in-memory store, got %T", store)
	}
	n, err := store.CountPatients(context.Background())
	if err != nil || n == 0 {
		t.Fatalf("expected seeded patients, got %d (%v)", n, err)
	}
}

func TestSetupDirectoryEmptyWithoutSeed(t *testing.T) {
	store, err := setupDirectory(&appconfig.Config{}, nil, logging.New("error"))
	if err != nil {
		t.Fatalf("setup directory: %v", err)
	}
	n, _ := store.CountDentists(context.Background())
	if n != 0 {
		t.Fatalf("expected empty directory, got %d dentists", n)
	}
}

func TestConnectRedis(t *testing.T) {
	logger := logging.New("error")

	if client := connectRedis(context.Background(), &appconfig.Config{}, logger); client != nil {
		t.Fatal("expected nil client without REDIS_ADDR")
	}

	mr := miniredis.RunT(t)
	client := connectRedis(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger)
	if client == nil {
		t.Fatal("expected redis client for a reachable server")
	}
	_ = client.Close()

	mr.Close()
	if client := connectRedis(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger); client != nil {
		t.Fatal("expected nil client when redis is unreachable")
	}
}

func TestSetupGeminiWithoutKeyIsRuleOnly(t *testing.T) {
	ai, closer, err := setupGemini(context.Background(), &appconfig.Config{}, logging.New("error"), nil)
	if err != nil {
		t.Fatalf("setup gemini: %v", err)
	}
	defer closer.Close()
	if ai.Configured() {
		t.Fatal("expected unconfigured client without API key")
	}
	if got := writeTimeout(ai); got != 15*time.Second {
		t.Fatalf("expected 15s write timeout, got %s", got)
	}
}

func TestSetupGeminiRESTAppliesPolicy(t *testing.T) {
	cfg := &appconfig.Config{
		GeminiAPIKey:      "key",
		GeminiTransport:   "rest",
		GeminiMaxAttempts: 3,
		GeminiRetryDelay:  250 * time.Millisecond,
		GeminiHTTPTimeout: 10 * time.Second,
	}
	ai, closer, err := setupGemini(context.Background(), cfg, logging.New("error"), nil)
	if err != nil {
		t.Fatalf("setup gemini: %v", err)
	}
	defer closer.Close()
	if !ai.Configured() {
		t.Fatal("expected configured client")
	}
	if p := ai.Policy(); p.MaxAttempts != 3 || p.Delay != 250*time.Millisecond {
		t.Fatalf("unexpected policy %+v", p)
	}
	if ai.AttemptTimeout() != 10*time.Second {
		t.Fatalf("expected 10s attempt timeout, got %s", ai.AttemptTimeout())
	}
	want := ai.Policy().WorstCase(len(gemini.DefaultEndpoints()), 10*time.Second) + 5*time.Second
	if got := writeTimeout(ai); got != want {
		t.Fatalf("expected write timeout %s, got %s", want, got)
	}
}

func TestSetupGeminiNonPositiveTimeoutUsesDefault(t *testing.T) {
	for _, transport := range []string{"rest", "sdk"} {
		t.Run(transport, func(t *testing.T) {
			cfg := &appconfig.Config{GeminiAPIKey: "key", GeminiTransport: transport}
			ai, closer, err := setupGemini(context.Background(), cfg, logging.New("error"), nil)
			if err != nil {
				t.Fatalf("setup gemini: %v", err)
			}
			defer closer.Close()
			if ai.AttemptTimeout() != gemini.DefaultAttemptTimeout {
				t.Fatalf("expected default attempt timeout, got %s", ai.AttemptTimeout())
			}
			want := ai.Policy().WorstCase(len(gemini.DefaultEndpoints()), gemini.DefaultAttemptTimeout) + 5*time.Second
			if got := writeTimeout(ai); got != want {
				t.Fatalf("expected write timeout %s, got %s", want, got)
			}
		})
	}
}

func TestSetupGeminiUnknownTransport(t *testing.T) {
	cfg := &appconfig.Config{GeminiAPIKey: "key", GeminiTransport: "carrier-pigeon"}
	if _, _, err := setupGemini(context.Background(), cfg, logging.New("error"), nil); err == nil {
		t.Fatal("expected error for unknown transport")
	}
}
