package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/routegraph/internal/config"
	"github.com/agenthands/routegraph/internal/core"
	"github.com/agenthands/routegraph/internal/driver"
	"github.com/agenthands/routegraph/internal/logging"
	"github.com/agenthands/routegraph/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfg, err := config.Resolve("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := driver.Open(ctx, cfg.Graph, logger)
	if err != nil {
		logger.Fatal("failed to connect to graph database", zap.Error(err))
	}
	defer func() {
		if err := d.Close(context.Background()); err != nil {
			logger.Warn("failed to close graph driver", zap.Error(err))
		}
	}()

	if os.Getenv("BUILD_INDICES") == "true" {
		if err := d.BuildIndices(ctx); err != nil {
			logger.Warn("failed to build indices", zap.Error(err))
		}
	}

	gin.SetMode(gin.ReleaseMode)
	runner := &core.Runner{Dial: core.SharedDial(d), Logger: logger}
	srv := server.NewServer(runner, cfg.Graph, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.Server.Port))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", zap.Error(err))
	}
}
