// Package bootstrap wires GlassGov's components from configuration.
package bootstrap

import (
	"fmt"

	"github.com/StreetLamp05/glassgov-be/internal/config"
	infraconfig "github.com/StreetLamp05/glassgov-be/internal/infra/config"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
)

const defaultConfigPath = "config.yml"

// LoadConfig loads and validates configuration. An empty path falls back to
// $CONFIG_PATH and then config.yml; a missing file yields defaults.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = infraconfig.GetConfigPath(defaultConfigPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (infralogger.Logger, error) {
	logCfg := cfg.Logging
	logCfg.Development = logCfg.Development || cfg.Service.Debug
	logger, err := infralogger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger.With(infralogger.String("service", cfg.Service.Name)), nil
}
