package cli

import (
	"warehouse/internal/config"
	"warehouse/internal/repositories"
	"warehouse/internal/services"
	"warehouse/pkg/logger"
	"warehouse/pkg/notify"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// env bundles the resources shared by the commands that touch the store.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *repositories.GORMProductStore
	registry *notify.Registry
	service  *services.InventoryService
}

// loadConfig reads the configuration and applies the global flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return config.Config{}, failf("failed to load configuration: %w", err)
	}
	if opts.Database != "" {
		cfg.DBPath = opts.Database
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, failf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openEnv loads the configuration, builds the logger and opens the store.
func openEnv(opts *RootOptions) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		return nil, failf("failed to build logger: %w", err)
	}

	store, err := repositories.OpenProductStore(cfg.DBPath, log)
	if err != nil {
		_ = log.Sync()
		return nil, failf("failed to open database %s: %w", cfg.DBPath, err)
	}

	registry := notify.NewRegistry()
	return &env{
		cfg:      cfg,
		logger:   log,
		store:    store,
		registry: registry,
		service:  services.NewInventoryService(store, registry, log),
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Error("Error closing database", zap.Error(err))
	}
	_ = e.logger.Sync()
}
