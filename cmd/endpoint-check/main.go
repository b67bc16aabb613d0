package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/dental-ai-assistant/internal/gemini"
)

const checkMessage = "find patient Gillian"

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	transportName := flag.String("transport", "rest", "transport to check with: rest or sdk")
	timeout := flag.Duration("timeout", 30*time.Second, "per-endpoint timeout")
	flag.Parse()

	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	ctx := context.Background()
	transport, err := newTransport(ctx, *transportName, apiKey, *timeout)
	if err != nil {
		log.Fatalf("create transport: %v", err)
	}

	prompt := gemini.BuildPrompt(checkMessage, "Clinic has 0 patients and 0 dentists")
	fmt.Printf("Probing %d endpoints via %s transport\n\n", len(gemini.DefaultEndpoints()), *transportName)

	working := 0
	for i, ep := range gemini.DefaultEndpoints() {
		epCtx, cancel := context.WithTimeout(ctx, *timeout)
		start := time.Now()
		text, err := transport.Complete(epCtx, ep, prompt)
		elapsed := time.Since(start).Round(time.Millisecond)
		cancel()

		if err != nil {
			fmt.Printf("[%d] ❌ %-28s %-10s %v\n", i+1, ep.Model, gemini.ClassifyError(err), err)
			continue
		}
		env, err := gemini.DecodeEnvelope(text)
		if err != nil {
			fmt.Printf("[%d] ⚠️  %-28s %-10s %v\n", i+1, ep.Model, gemini.ClassifyError(err), err)
			continue
		}
		working++
		fmt.Printf("[%d] ✅ %-28s %-10s intent=%s (%v)\n", i+1, ep.Model, "ok", env.Intent, elapsed)
	}

	fmt.Printf("\n%d of %d endpoints usable\n", working, len(gemini.DefaultEndpoints()))
	if working == 0 {
		os.Exit(1)
	}
}

func newTransport(ctx context.Context, name, apiKey string, timeout time.Duration) (gemini.Transport, error) {
	switch name {
	case "rest":
		return gemini.NewRESTTransport(apiKey, timeout), nil
	case "sdk":
		return gemini.NewSDKTransport(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unknown transport %q", name)
	}
}
