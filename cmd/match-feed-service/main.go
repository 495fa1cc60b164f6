package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/cache"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/cascade"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/classifier"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/config"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/db"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/dispatch"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/health"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/middleware"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/oddsfeed"
	"github.com/XavierBriggs/fortuna/services/match-feed-service/internal/providers"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	fmt.Println("=== Fortuna Match Feed Service v0 ===")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Connect to the match store
	store, err := db.NewClient(cfg.StoreDSN)
	if err != nil {
		fmt.Printf("❌ Failed to connect to match store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fmt.Println("✓ Connected to match store")

	// Connect to Redis for cache tiers and refresh dispatch
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		fmt.Printf("❌ Failed to parse Redis URL: %v\n", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Connected to Redis")

	// Self-healing updater consuming the classifier's suggestions
	healer := classifier.NewHealer(store, 256)
	healerCtx, stopHealer := context.WithCancel(ctx)
	defer stopHealer()
	go healer.Run(healerCtx)

	clf := classifier.New(cfg, healer)

	matchCache := cache.NewMatchCache(redisClient)
	cooldown := cache.NewCooldown(redisClient, cfg.RefreshCooldown())
	dispatcher := dispatch.NewDispatcher(redisClient, cfg.RefreshStream)

	readCascade := cascade.New(store, matchCache, cooldown, dispatcher, clf, cfg)

	providerClients := []providers.Client{
		providers.NewOddsLine(getEnv("ODDSLINE_URL", "http://localhost:8091"), cfg.ProviderTimeout()),
		providers.NewBetVista(getEnv("BETVISTA_URL", "http://localhost:8092"), cfg.ProviderTimeout()),
	}
	lineups := providers.NewLineupClient(getEnv("LINEUP_URL", "http://localhost:8093"), cfg.ProviderTimeout())
	aggregator := oddsfeed.NewAggregator(providerClients, lineups, cfg.ProviderTimeout())

	monitor := health.NewMonitor(matchCache, store)

	matchesHandler := handlers.NewMatchesHandler(readCascade, monitor)
	oddsHandler := handlers.NewOddsHandler(store, aggregator, matchCache, monitor)
	healthHandler := handlers.NewHealthHandler(monitor)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	r.Get("/health", healthHandler.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/matches", matchesHandler.HandleGetMatches)
		r.Get("/matches/{matchID}/odds", oddsHandler.HandleGetMatchOdds)
	})

	// Start server
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("✓ Match feed service listening on %s\n", cfg.Addr)
		fmt.Println("  Endpoints:")
		fmt.Println("    GET  /health")
		fmt.Println("    GET  /metrics")
		fmt.Println("    GET  /api/v1/matches")
		fmt.Println("    GET  /api/v1/matches/{matchID}/odds")

		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		fmt.Printf("❌ Server error: %v\n", err)
		os.Exit(1)

	case sig := <-shutdown:
		fmt.Printf("\n⚠️  Received signal: %v\n", sig)

		// Give outstanding requests a deadline for completion
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("⚠️  Graceful shutdown failed: %v\n", err)
			if err := srv.Close(); err != nil {
				fmt.Printf("❌ Could not stop server: %v\n", err)
			}
		}
	}

	fmt.Println("✓ Shutdown complete")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
