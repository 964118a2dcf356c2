package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/StreetLamp05/glassgov-be/internal/config"
	"github.com/StreetLamp05/glassgov-be/internal/database"
	"github.com/StreetLamp05/glassgov-be/internal/discover"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
)

// RecordComponents holds the record source and, with Postgres, the rule store.
type RecordComponents struct {
	DB      *sqlx.DB
	Records discover.RecordSource
	Rules   *database.RulesRepository
	ping    func(ctx context.Context) error
}

// Close releases the database connection, if any.
func (r *RecordComponents) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// SetupRecords selects Postgres when enabled, otherwise the fixture file,
// otherwise an empty in-memory store.
func SetupRecords(cfg *config.Config, logger infralogger.Logger) (*RecordComponents, error) {
	if !cfg.Database.Enabled {
		return setupMemoryRecords(cfg.Database.FixturePath, logger)
	}

	logger.Info("Connecting to PostgreSQL database",
		infralogger.String("host", cfg.Database.Host),
		infralogger.String("port", cfg.Database.Port),
		infralogger.String("database", cfg.Database.DBName),
	)
	db, err := database.NewPostgresConnection(cfg.Database.Config)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected successfully")

	repo := database.NewRecordRepository(db)
	return &RecordComponents{
		DB:      db,
		Records: repo,
		Rules:   database.NewRulesRepository(db),
		ping:    repo.Ping,
	}, nil
}

func setupMemoryRecords(path string, logger infralogger.Logger) (*RecordComponents, error) {
	if path == "" {
		logger.Warn("No record source configured; discovery will return empty sections")
		return &RecordComponents{Records: database.NewMemoryStore(nil, nil)}, nil
	}
	store, err := database.LoadFixture(path)
	if err != nil {
		return nil, fmt.Errorf("load records fixture: %w", err)
	}
	logger.Info("Serving records from fixture", infralogger.String("path", path))
	return &RecordComponents{Records: store}, nil
}
