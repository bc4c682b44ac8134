package main

import (
	"context"
	"fmt"

	"farmdash/internal/config"
	"farmdash/internal/dashboard"
	"farmdash/internal/db"
	"farmdash/internal/records"
	"farmdash/internal/remote"
	"farmdash/internal/settings"
	"farmdash/internal/table"

	"go.uber.org/zap"
)

// stores holds the services backed by the configured storage driver.
type stores struct {
	records  *records.Service
	settings *settings.Service
	close    func(context.Context) error
}

// openStores connects the configured storage driver and returns the
// records and settings services sharing it.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.GetConnectTimeout())
	defer cancel()

	var (
		repo          records.Repo
		settingsStore settings.Store
		closeFn       func(context.Context) error
	)
	switch cfg.Storage.Driver {
	case "mongo":
		log.Info("connecting to MongoDB", zap.String("database", cfg.Storage.MongoDatabase))
		database, disconnect, err := db.ConnectMongo(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDatabase, cfg.GetConnectTimeout())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		repo, settingsStore, closeFn = records.NewMongoRepo(database), settings.NewMongoStore(database), disconnect
	case "sqlite":
		log.Info("opening SQLite", zap.String("path", cfg.Storage.SQLitePath))
		sqlDB, err := db.OpenSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		repo, settingsStore = records.NewSQLiteRepo(sqlDB), settings.NewSQLiteStore(sqlDB)
		closeFn = func(context.Context) error { return sqlDB.Close() }
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Warn("failed to ensure indexes", zap.Error(err))
	}
	if err := settingsStore.EnsureSchema(ctx); err != nil {
		log.Warn("failed to prepare settings storage", zap.Error(err))
	}
	return &stores{
		records:  records.NewService(repo),
		settings: settings.NewService(settingsStore),
		close:    closeFn,
	}, nil
}

// dashboardBackend picks where dashboard tables and the settings form read
// and write: another farmdash API when one is configured, the local
// services otherwise.
func dashboardBackend(cfg *config.Config, st *stores, log *zap.Logger) (dashboard.Source, dashboard.SettingsStore, error) {
	if cfg.Dashboard.APIBaseURL == "" {
		return func(s *table.Schema) table.Remote { return st.records.Resource(s.Category) }, st.settings, nil
	}
	client, err := remote.NewClient(cfg.Dashboard.APIBaseURL, cfg.GetRequestTimeout(), log.Named("api"))
	if err != nil {
		return nil, nil, err
	}
	log.Info("dashboard uses remote API", zap.String("url", cfg.Dashboard.APIBaseURL))
	return func(s *table.Schema) table.Remote { return client.Resource(s.Path) }, client.Settings(), nil
}
