// Package bootstrap opens the configured storage backend and wires the use
// cases shared by the server and the terminal explorer.
package bootstrap

import (
	"context"
	"fmt"

	"movie_explorer/config"
	"movie_explorer/internal/clients"
	"movie_explorer/internal/domain"
	"movie_explorer/internal/repository"
	"movie_explorer/internal/storage"
	"movie_explorer/internal/usecase"
	"movie_explorer/pkg/db"

	"github.com/sirupsen/logrus"
)

// CloseFunc releases whatever OpenStorage connected to.
type CloseFunc func(ctx context.Context) error

func noopClose(context.Context) error { return nil }

// OpenStorage connects the raw, unscoped backend selected by STORAGE_DRIVER.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.Backend, CloseFunc, error) {
	logger.Infof("Bootstrap: Opening %s storage backend", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case storage.DriverMemory, "":
		return storage.NewMemoryBackend(logger), noopClose, nil

	case storage.DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath, logger.IsLevelEnabled(logrus.DebugLevel))
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		backend, err := storage.NewGormBackend(gdb, logger)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return backend, func(context.Context) error { return sqlDB.Close() }, nil

	case storage.DriverPostgres:
		sqlDB, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		backend, err := storage.NewPostgresBackend(ctx, sqlDB, logger)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		return backend, func(context.Context) error { return sqlDB.Close() }, nil

	case storage.DriverMongo:
		mdb, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewMongoBackend(mdb.Database(), logger), mdb.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver '%s'", cfg.StorageDriver)
	}
}

// App holds the wired use cases.
type App struct {
	Store     storage.Backend
	Catalog   domain.CatalogClient
	Images    clients.Images
	Favorites domain.FavoritesUseCase
	Auth      domain.AuthUseCase
	Movies    usecase.MovieUseCase
}

// NewApp wires repositories and use cases over raw. Keys are namespaced by
// the client scope carried in each request context.
func NewApp(cfg *config.Config, raw storage.Backend, logger *logrus.Logger) *App {
	store := storage.NewScopedBackend(raw)

	catalog := clients.NewTMDBClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey, cfg.CatalogTimeout, logger)
	favorites := usecase.NewFavoritesUseCase(repository.NewFavoritesRepository(store, logger), nil, logger)
	auth := usecase.NewAuthUseCase(repository.NewUserRepository(store, logger), usecase.AuthSettings{
		Latency:        cfg.AuthSimulatedLatency,
		ProfileLatency: cfg.ProfileLatency(),
		VerifyPassword: cfg.AuthVerifyPassword,
	}, logger)

	return &App{
		Store:     raw,
		Catalog:   catalog,
		Images:    clients.NewImages(cfg.TMDBImageBaseURL),
		Favorites: favorites,
		Auth:      auth,
		Movies:    usecase.NewMovieUseCase(catalog, favorites, logger),
	}
}
