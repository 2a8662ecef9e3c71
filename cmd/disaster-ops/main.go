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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-disaster-ops/internal/api"
	"github.com/mr1hm/go-disaster-ops/internal/config"
	internalgrpc "github.com/mr1hm/go-disaster-ops/internal/grpc"
	"github.com/mr1hm/go-disaster-ops/internal/ingestion"
	"github.com/mr1hm/go-disaster-ops/internal/logging"
	"github.com/mr1hm/go-disaster-ops/internal/metrics"
	"github.com/mr1hm/go-disaster-ops/internal/planner"
	"github.com/mr1hm/go-disaster-ops/internal/repository"
	"github.com/mr1hm/go-disaster-ops/internal/routing"
	"github.com/mr1hm/go-disaster-ops/internal/stream"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	metrics.RegisterDefault()

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "db", cfg.DB.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repository.Open(ctx, cfg.DB)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	router, err := routing.New(cfg.Routing)
	if err != nil {
		logging.Fatalf("Failed to initialize routing provider: %v", err)
	}

	engine := planner.NewEngine(db, router, cfg.Routing.Concurrency)

	// Local subscribers always hang off the broadcaster. With Redis configured,
	// publishes go through the relay so every instance sees them.
	broadcaster := stream.NewBroadcaster()
	var publisher stream.Publisher = broadcaster
	if cfg.Redis.URL != "" {
		rdb, err := stream.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logging.Fatalf("Failed to configure redis: %v", err)
		}
		defer rdb.Close()

		relay := stream.NewRedisRelay(rdb, cfg.Redis.Channel, broadcaster)
		publisher = relay
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("redis relay stopped", "error", err)
			}
		}()
	}

	replanner := planner.NewReplanner(engine, publisher, cfg.Replan.Interval)
	go replanner.Run(ctx)

	mgr := ingestion.NewManager(cfg, db, publisher, replanner)
	mgr.Start(ctx)

	grpcServer := internalgrpc.NewServer(db)
	go grpcServer.WatchStore(ctx, 15*time.Second)
	go func() {
		grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
		if err := grpcServer.Start(grpcAddr); err != nil {
			logging.Fatalf("gRPC server error: %v", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	r.Use(api.LoggingMiddleware())
	r.Use(api.MetricsMiddleware())
	r.Use(api.RateLimitMiddleware(cfg.RateLimit.RPS))

	handler := api.NewHandler(db, engine, broadcaster, publisher, replanner)
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: r,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	broadcaster.Close()
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
