package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movie_explorer/config"
	"movie_explorer/internal/bootstrap"
	"movie_explorer/internal/storage"

	"github.com/sirupsen/logrus"
)

func main() {
	profile := flag.String("profile", "local", "client scope used for favorites and the session")
	driver := flag.String("driver", "", "override STORAGE_DRIVER")
	flag.Parse()

	logger := setupLogger("warn")
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil && level > logrus.InfoLevel {
		logger.SetLevel(level)
	}
	if *driver != "" {
		cfg.StorageDriver = *driver
		if err := cfg.Validate(); err != nil {
			logger.Fatalf("Invalid storage driver: %v", err)
		}
	}

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
		}
	}()

	app := bootstrap.NewApp(cfg, store, logger)
	sh := newShell(app.Movies, app.Favorites, app.Auth, app.Images, cfg.SearchDebounce, os.Stdout, logger)
	if err := sh.run(storage.WithScope(ctx, *profile), os.Stdin); err != nil {
		logger.Errorf("Input error: %v", err)
	}
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stderr)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", level, err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
