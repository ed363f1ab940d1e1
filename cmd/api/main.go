package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/k-amith1610/geocity-sub000/internal/adapters/http"
	natsadapter "github.com/k-amith1610/geocity-sub000/internal/adapters/nats"
	"github.com/k-amith1610/geocity-sub000/internal/adapters/postgres"
	"github.com/k-amith1610/geocity-sub000/internal/adapters/routing"
	"github.com/k-amith1610/geocity-sub000/internal/adapters/valkey"
	"github.com/k-amith1610/geocity-sub000/internal/core/ports"
	"github.com/k-amith1610/geocity-sub000/internal/core/usecases"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/config"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/logging"
	"github.com/k-amith1610/geocity-sub000/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geocity-nav-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	db.StartPoolMetrics(ctx, 15*time.Second)

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(ctx, cfg.Valkey.Addr, cfg.Valkey.Prefix)
	if err != nil {
		slog.Warn("valkey unavailable, route and state caching disabled", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS: JetStream publisher for state, plain conn for fixes and the
	// WebSocket relay.
	var (
		publisher ports.StatePublisher
		voice     ports.VoiceAnnouncer
		source    ports.PositionSource
	)
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, state publishing disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		voice = pub
	}

	natsConn, err := natsadapter.Connect(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
		source = natsadapter.NewPositionSource(natsConn)
	}

	// Routing engine
	router := routing.NewClient(cfg.Routing.BaseURL, time.Duration(cfg.Routing.Timeout)*time.Second)

	// Use cases
	routeSvc := usecases.NewRouteService(router, cacheSvc)
	sessionSvc := usecases.NewSessionService(
		postgres.NewSessionRepo(db),
		postgres.NewTraceRepo(db),
		routeSvc,
		publisher,
		voice,
		source,
		cfg.Nav.Policy(),
	)

	deps := &http.Dependencies{
		Sessions: sessionSvc,
		Routes:   routeSvc,
		NATS:     natsConn,
		DB:       db,
		Cache:    cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "GeoCity Navigation API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	// Stop live trackers so every open session is persisted with a final
	// phase before the process exits.
	sessionSvc.Shutdown(shutdownCtx)

	slog.Info("server stopped")
}
