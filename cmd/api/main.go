package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mainstreetlabs/siteapi/cmd/mainconfig"
	"github.com/mainstreetlabs/siteapi/internal/api/router"
	"github.com/mainstreetlabs/siteapi/internal/app/bootstrap"
	"github.com/mainstreetlabs/siteapi/internal/booking"
	appconfig "github.com/mainstreetlabs/siteapi/internal/config"
	"github.com/mainstreetlabs/siteapi/internal/contact"
	httpmiddleware "github.com/mainstreetlabs/siteapi/internal/http/middleware"
	"github.com/mainstreetlabs/siteapi/internal/newsletter"
	"github.com/mainstreetlabs/siteapi/internal/notify"
	"github.com/mainstreetlabs/siteapi/internal/observability/metrics"
	"github.com/mainstreetlabs/siteapi/internal/webchat"
	"github.com/mainstreetlabs/siteapi/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting siteapi server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, cleanup, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setup wires every dependency into the router. The returned cleanup closes
// database and Redis handles.
func setup(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	mode, err := booking.ParseNameMatching(cfg.BookingNameMatching)
	if err != nil {
		return nil, nil, err
	}

	dbs, err := bootstrap.ConnectDatabases(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	cleanup := func() {
		dbs.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}

	var sesClient notify.SESAPI
	if cfg.EmailProvider == "ses" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		sesClient = mainconfig.NewSESClient(awsCfg, cfg)
	}
	sender, err := bootstrap.BuildEmailSender(cfg, sesClient, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	notifier := notify.NewService(sender, notify.ServiceConfig{
		BookingRecipient: cfg.BookingNotifyEmail,
		ContactRecipient: cfg.ContactToEmail,
	}, logger)

	metricsHandler, bookingMetrics, formMetrics := setupMetrics()

	bookingHandler := booking.NewHandler(booking.NewEngine(booking.WithNameMatching(mode)), notifier, bookingMetrics, logger)
	transcripts := bootstrap.BuildTranscriptStore(redisClient, cfg, logger)
	if mem, ok := transcripts.(*webchat.MemoryTranscriptStore); ok {
		go mem.RunSweeper(ctx, time.Minute)
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.RunSweeper(ctx, time.Minute)

	r := router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     bookingHandler,
		ContactHandler:     contact.NewHandler(notifier, dbs.ContactRepository(), formMetrics, logger),
		NewsletterHandler:  newsletter.NewHandler(newsletter.NewService(dbs.NewsletterRepository(), logger), formMetrics, logger),
		WebChatHandler:     webchat.NewHandler(bookingHandler, transcripts, logger),
		MetricsHandler:     metricsHandler,
		RateLimiter:        limiter,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return r, cleanup, nil
}

func setupMetrics() (http.Handler, *metrics.BookingMetrics, *metrics.FormMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg), metrics.NewFormMetrics(reg)
}
