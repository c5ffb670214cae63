package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LLAppelOffre/llao-application/db"
	"github.com/LLAppelOffre/llao-application/db/migrations"
	"github.com/LLAppelOffre/llao-application/internal/auth"
	"github.com/LLAppelOffre/llao-application/internal/config"
	"github.com/LLAppelOffre/llao-application/internal/handlers"
	"github.com/LLAppelOffre/llao-application/internal/logger"
	"github.com/LLAppelOffre/llao-application/internal/metrics"
	"github.com/LLAppelOffre/llao-application/internal/ratelimit"
	"github.com/LLAppelOffre/llao-application/internal/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "llao-api"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "llao-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(log)
	log.Info("starting server", slog.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log, tracing.Settings{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    cfg.OTelInsecure,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdownTracing(context.Background())

	store, err := db.Open(ctx, cfg.PostgresConn, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.RunMigrations {
		if err := migrations.Run(store.DB(), log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	var limiter *ratelimit.LoginLimiter
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiter = ratelimit.NewLoginLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow)
		log.Info("login throttling enabled",
			slog.Int("max_attempts", cfg.LoginMaxAttempts),
			slog.Duration("window", cfg.LoginWindow))
	} else {
		log.Info("login throttling disabled: REDIS_URL not set")
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, serviceName, cfg.TokenTTL)
	h := handlers.NewHandler(store, tokens, limiter, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger(log))
	r.Use(metrics.HTTPMetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/api", h.Routes())

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      otelhttp.NewHandler(r, serviceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("address", cfg.ServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
	return nil
}
