package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movie_explorer/config"
	"movie_explorer/internal/bootstrap"
	"movie_explorer/internal/delivery"
	grpcHandler "movie_explorer/internal/delivery/grpc"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

const healthProbeInterval = 15 * time.Second

func main() {
	logger := setupLogger("info")

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s' in config, using default 'info'. Error: %v", cfg.LogLevel, err)
	} else {
		logger.SetLevel(logLevel)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("Starting Movie Explorer...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := bootstrap.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open storage: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeStore(closeCtx); err != nil {
			logger.Errorf("Error closing storage: %v", err)
		} else {
			logger.Info("Storage closed.")
		}
	}()

	app := bootstrap.NewApp(cfg, store, logger)
	logger.Info("Use cases initialized.")

	router := delivery.NewRouter(delivery.Handlers{
		Catalog:   delivery.NewCatalogHandler(app.Movies, app.Favorites, app.Images, logger),
		Favorites: delivery.NewFavoritesHandler(app.Favorites, logger),
		Auth:      delivery.NewAuthHandler(app.Auth, logger),
	}, delivery.NewClientStore(cfg.SessionSecret, cfg.IsProduction()), logger)
	logger.Info("API Routes registered.")

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting HTTP server on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	var grpcServer *grpc.Server
	var health *grpcHandler.HealthHandler
	if cfg.GrpcPort != "" {
		lis, err := net.Listen("tcp", cfg.GrpcPort)
		if err != nil {
			logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
		}
		grpcServer = grpc.NewServer()
		health = grpcHandler.NewHealthHandler(store, logger)
		health.Register(grpcServer)
		health.Probe(ctx)
		go health.Watch(ctx, healthProbeInterval)
		logger.Info("gRPC health and reflection services registered")

		go func() {
			logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				logger.Fatalf("Failed to serve gRPC: %v", err)
			}
			logger.Info("gRPC server stopped serving.")
		}()
	}

	<-ctx.Done()
	logger.Warn("Shutdown signal received...")

	if grpcServer != nil {
		health.Shutdown()
		grpcServer.GracefulStop()
		logger.Info("gRPC server gracefully stopped.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}
	logger.Info("Movie Explorer shut down gracefully.")
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
