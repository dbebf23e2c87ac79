// console/cmd/console/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enquiry-admin-console/config"
	"enquiry-admin-console/internal/api/handlers"
	"enquiry-admin-console/internal/api/routes"
	"enquiry-admin-console/internal/auth"
	"enquiry-admin-console/internal/backend"
	"enquiry-admin-console/internal/cache"
	"enquiry-admin-console/internal/console"
	"enquiry-admin-console/internal/s3"
	"enquiry-admin-console/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	logger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	// 2. Open the console cache
	store, err := openCache(cfg)
	if err != nil {
		logger.Fatal("Failed to open cache", zap.String("driver", cfg.Cache.Driver), zap.Error(err))
	}
	defer store.Close()

	// 3. Backend client, realtime hub and console state
	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, logger)
	hub := socket.NewHub(logger)
	registry := console.NewRegistry(store, client, hub, logger)
	gate := auth.NewGate(client, logger)
	tokens := auth.NewTokenStore(store)

	// 4. Optional bucket for attachments and export archives
	var files handlers.FileStore
	if cfg.S3.Enabled() {
		uploader, err := s3.NewUploader(context.Background(), cfg.S3)
		if err != nil {
			logger.Fatal("Failed to configure S3", zap.Error(err))
		}
		files = uploader
	} else {
		logger.Info("S3 bucket not configured, attachment signing and export archives are off")
	}

	router := routes.SetupRouter(cfg, logger, client, registry, gate, tokens, hub, files)

	// 5. Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	go func() {
		logger.Info("Starting console server", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Backend.URL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down console server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func openCache(cfg config.Config) (cache.Store, error) {
	switch cfg.Cache.Driver {
	case "sqlite":
		return cache.OpenSQLite(cfg.Cache.Path)
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return cache.OpenMongo(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	case "memory":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}
