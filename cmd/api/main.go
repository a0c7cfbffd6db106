// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietvoyage/trip-agent/internal/agent"
	"github.com/vietvoyage/trip-agent/internal/config"
	"github.com/vietvoyage/trip-agent/internal/handler"
	"github.com/vietvoyage/trip-agent/internal/llm"
	"github.com/vietvoyage/trip-agent/internal/middleware"
	natsclient "github.com/vietvoyage/trip-agent/internal/nats"
	"github.com/vietvoyage/trip-agent/internal/search"
	"github.com/vietvoyage/trip-agent/internal/service"
	"github.com/vietvoyage/trip-agent/pkg/logger"
	"github.com/vietvoyage/trip-agent/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "trip-agent", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", "error", err)
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS
	nc, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	// Stores
	threadStore, err := natsclient.NewThreadStore(ctx, nc)
	if err != nil {
		log.Error("failed to initialize thread store", "error", err)
		os.Exit(1)
	}
	itineraryStore, err := natsclient.NewItineraryStore(ctx, nc)
	if err != nil {
		log.Error("failed to initialize itinerary store", "error", err)
		os.Exit(1)
	}

	// LLM client
	var llmClient llm.Client
	switch {
	case cfg.DefaultLLM == string(llm.ProviderAnthropic) && cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		log.Error("no LLM API key configured")
		os.Exit(1)
	}
	if err != nil {
		log.Error("failed to create LLM client", "error", err)
		os.Exit(1)
	}
	log.Info("LLM client ready", "provider", llmClient.Name())

	// Agent wiring: search tool, persistence tool, classifier, runner
	searchClient := search.NewClient(cfg.SearchURL, cfg.SearchTimeout)

	registry := agent.NewRegistry()
	if err := registry.Register(agent.NewWebSearchTool(searchClient, cfg.SearchMaxResults)); err != nil {
		log.Error("failed to register web_search", "error", err)
		os.Exit(1)
	}
	if err := registry.Register(agent.NewSaveItineraryTool(itineraryStore)); err != nil {
		log.Error("failed to register save_itinerary", "error", err)
		os.Exit(1)
	}

	classifier := agent.NewClassifier(llmClient, cfg.ClassifierModel, cfg.LLMCallTimeout, log)
	runner := agent.NewRunner(classifier, llmClient, registry, agent.RunnerConfig{
		Model:         cfg.GeneratorModel,
		Temperature:   cfg.GeneratorTemperature,
		MaxTokens:     cfg.GeneratorMaxTokens,
		MaxToolRounds: cfg.MaxToolRounds,
		CallTimeout:   cfg.LLMCallTimeout,
	}, log)

	// Services
	threadSvc := service.NewThreadService(threadStore, log)
	chatSvc := service.NewChatService(threadSvc, threadStore, itineraryStore, runner, log)

	// Handlers
	healthHandler := handler.NewHealthHandler(nc)
	threadHandler := handler.NewThreadHandler(threadSvc, log)
	messageHandler := handler.NewMessageHandler(chatSvc, threadSvc, log)
	streamHandler := handler.NewStreamHandler(chatSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Threads
		r.Route("/threads", func(r chi.Router) {
			r.Post("/", threadHandler.Create)
			r.Get("/", threadHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", threadHandler.Get)
				r.Delete("/", threadHandler.Delete)
				r.Get("/messages", messageHandler.List)
			})
		})

		// Agent turns
		r.Post("/messages", messageHandler.Send)
		r.Post("/messages/stream", streamHandler.Stream)

		// Saved itineraries
		r.Get("/itineraries", messageHandler.Itineraries)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
