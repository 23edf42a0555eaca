package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/librarylend/internal/events"
	"github.com/yourorg/librarylend/internal/handler"
	"github.com/yourorg/librarylend/internal/infrastructure/logger"
	"github.com/yourorg/librarylend/internal/infrastructure/redis"
	"github.com/yourorg/librarylend/internal/observability/metrics"
	"github.com/yourorg/librarylend/internal/observability/tracing"
	"github.com/yourorg/librarylend/internal/repository"
	"github.com/yourorg/librarylend/internal/security/auth"
	"github.com/yourorg/librarylend/internal/security/middleware"
	"github.com/yourorg/librarylend/internal/security/ratelimit"
	"github.com/yourorg/librarylend/internal/service"
	"github.com/yourorg/librarylend/internal/worker"
	"github.com/yourorg/librarylend/pkg/config"
	"github.com/yourorg/librarylend/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting LibraryLend server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "librarylend", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Open the Postgres pool
	pool, err := database.NewConnectionPool(ctx, &database.Config{URL: cfg.DatabaseURL}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Redis is optional; without it rate limiting falls back to in-memory
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
	} else {
		log.Info("REDIS_URL not set, using in-memory rate limiting")
	}

	// 6. Initialize repositories
	db := pool.GetDB()
	bookRepo := repository.NewPostgresBookRepository(db, log)
	borrowerRepo := repository.NewPostgresBorrowerRepository(db, log)
	borrowingRepo := repository.NewPostgresBorrowingRepository(db, log)
	librarianRepo := repository.NewPostgresLibrarianRepository(db, log)

	// 7. Initialize services
	hub := events.NewHub()
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "librarylend")
	catalogService := service.NewCatalogService(bookRepo, borrowerRepo, log)
	lendingService := service.NewLendingService(borrowingRepo, bookRepo, borrowerRepo, hub, log)
	authService := service.NewAuthService(librarianRepo, tokenManager, log)

	// 8. Initialize handlers
	bookHandler := handler.NewBookHandler(catalogService, log)
	borrowerHandler := handler.NewBorrowerHandler(catalogService, log)
	borrowingHandler := handler.NewBorrowingHandler(lendingService, log)
	authHandler := handler.NewAuthHandler(authService, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)
	activityHandler := handler.NewActivityHandler(hub, log, cfg.CORSAllowedOrigins)

	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute, log)

	// 9. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/book/register", bookHandler.Register)
	mux.HandleFunc("GET /api/v1/book/available", bookHandler.ListAvailable)
	mux.HandleFunc("GET /api/v1/book/{bookId}", bookHandler.Get)
	mux.HandleFunc("GET /api/v1/book", bookHandler.List)
	mux.HandleFunc("POST /api/v1/borrower/register", borrowerHandler.Register)
	mux.HandleFunc("GET /api/v1/borrower/{borrowerId}", borrowerHandler.Get)
	mux.HandleFunc("GET /api/v1/borrower", borrowerHandler.List)
	mux.HandleFunc("POST /api/v1/borrowing/{bookId}/borrow", borrowingHandler.Borrow)
	mux.HandleFunc("PUT /api/v1/borrowing/{borrowingId}/return", borrowingHandler.Return)
	mux.HandleFunc("GET /api/v1/borrowing/info/{borrowerId}/{bookId}", borrowingHandler.Info)
	mux.HandleFunc("GET /api/v1/borrowing/borrower/{borrowerId}", borrowingHandler.ListByBorrower)
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.Handle("GET /ws/activity", activityHandler)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	tracedMux := otelhttp.NewHandler(mux, "librarylend-http")

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		tracedMux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> JWT -> rate limit -> content type -> CORS -> mux
	rootHandler := middleware.RequestIDMiddleware(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.ValidateJSONContentType(handlerWithCORS),
				),
			),
		),
	)

	// 10. Start the open-loan scanner in the background
	loanScanner := worker.NewLoanScanner(
		borrowingRepo,
		bookRepo,
		log,
		time.Duration(cfg.ScanIntervalMin)*time.Minute,
		time.Duration(cfg.LoanPeriodDays)*24*time.Hour,
	)
	go loanScanner.Start(ctx)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitPerMinute),
		slog.String("rate_limit_window", "1m"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop the loan scanner
	rateLimiter.Stop()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
