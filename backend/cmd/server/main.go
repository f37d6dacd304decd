package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chirp/backend/internal/api"
	"chirp/backend/internal/cache"
	"chirp/backend/internal/graph"
	"chirp/backend/internal/memgraph"
	"chirp/backend/internal/social"
	"chirp/backend/pkg/config"
	"chirp/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...", zap.String("store", cfg.Store))

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer closeStore()

	opts := []social.Option{}
	if cfg.CacheEnabled() {
		client, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// Trending still works without the cache
			log.Warn("Redis unavailable, trending cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			opts = append(opts, social.WithTrendingCache(cache.NewTrendingCache(client, cfg.TrendingCacheTTL)))
			log.Info("Trending cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}
	svc := social.NewService(store, opts...)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewHandler(svc, log, api.Options{
		MaxPageSize:    cfg.MaxPageSize,
		RequestTimeout: cfg.RequestTimeout,
	}))

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// openStore selects the graph backend from config
func openStore(ctx context.Context, cfg *config.Config) (social.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		return memgraph.New(), func() {}, nil
	}

	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return nil, nil, err
	}
	repo := graph.NewRepository(driver, cfg.Neo4jDatabase)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = repo.Close()
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil
}
