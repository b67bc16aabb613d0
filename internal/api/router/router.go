package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/dental-ai-assistant/internal/chatbot"
	httpmiddleware "github.com/wolfman30/dental-ai-assistant/internal/http/middleware"
	"github.com/wolfman30/dental-ai-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatbotHandler     *chatbot.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Staff JWT secret for the chatbot routes. Empty disables auth.
	JWTSecret string

	// Per-client request rate for the chatbot routes. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	if cfg.ChatbotHandler != nil {
		r.Route("/chatbot", func(bot chi.Router) {
			bot.Use(httpmiddleware.StaffJWT(cfg.JWTSecret))
			bot.Use(httpmiddleware.RateLimit(cfg.RateLimit, cfg.RateBurst))
			bot.Post("/message", cfg.ChatbotHandler.HandleMessage)
			bot.Get("/help", cfg.ChatbotHandler.HandleHelp)
			bot.Get("/history", cfg.ChatbotHandler.HandleHistory)
			bot.Get("/ws", cfg.ChatbotHandler.HandleWebSocket)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
