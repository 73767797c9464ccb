package cmd

import (
	"context"
	"fmt"

	"gigflow/internal/config"
	"gigflow/internal/repository"
	"gigflow/utils"
)

// openStore connects to the configured storage backend. SQL backends are
// opened through gorm, mongo through the official driver.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		utils.Warn("using in-memory storage, data is lost on exit", nil)
		return repository.NewMemoryRepo(), nil
	case config.DriverSQLite, config.DriverPostgres, config.DriverMySQL:
		store, err := repository.OpenGorm(cfg.StorageDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.StorageDriver, err)
		}
		return store, nil
	case config.DriverMongo:
		store, err := repository.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// loadConfig reads the configuration and applies the logging settings.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := utils.ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
