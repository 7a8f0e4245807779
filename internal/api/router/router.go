package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mainstreetlabs/siteapi/internal/booking"
	"github.com/mainstreetlabs/siteapi/internal/contact"
	httpmiddleware "github.com/mainstreetlabs/siteapi/internal/http/middleware"
	"github.com/mainstreetlabs/siteapi/internal/newsletter"
	"github.com/mainstreetlabs/siteapi/internal/webchat"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BookingHandler     *booking.Handler
	ContactHandler     *contact.Handler
	NewsletterHandler  *newsletter.Handler
	WebChatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	RateLimiter        *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Form and booking routes, rate limited per client
	r.Group(func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
		}
		if cfg.BookingHandler != nil {
			api.Handle("/api/ai-agents/booking", cfg.BookingHandler)
		}
		if cfg.ContactHandler != nil {
			api.Handle("/api/contact", cfg.ContactHandler)
		}
		if cfg.NewsletterHandler != nil {
			api.Handle("/api/newsletter-signup", cfg.NewsletterHandler)
		}
		if cfg.WebChatHandler != nil {
			api.Post("/chat/message", cfg.WebChatHandler.HandleMessage)
		}
	})

	// Chat socket and history are long-lived or read-only
	if cfg.WebChatHandler != nil {
		r.Route("/chat", func(chat chi.Router) {
			chat.Get("/ws", cfg.WebChatHandler.HandleWebSocket)
			chat.Get("/history", cfg.WebChatHandler.HandleHistory)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
