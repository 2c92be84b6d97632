// Package postgres implements the storage.Backend interface on a PostgreSQL
// server through the GORM backend.
package postgres

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sulloa07/orbit-sim/internal/config"
	"github.com/sulloa07/orbit-sim/internal/database"
	gormstorage "github.com/sulloa07/orbit-sim/internal/storage/gorm"
	"gorm.io/gorm"
)

const maxOpenConns = 10

// Backend wraps the GORM backend with a Postgres connection.
type Backend struct {
	*gormstorage.Backend
}

// New connects to the server described by cfg and validates the connection.
func New(cfg config.DBConfig, log zerolog.Logger) (*Backend, error) {
	log.Debug().Str("host", cfg.Host).Str("port", cfg.Port).Str("database", cfg.Database).Msg("Connecting to Postgres DB")

	db, err := database.GetPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return newWithDB(db, log)
}

func newWithDB(db *gorm.DB, log zerolog.Logger) (*Backend, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	log.Info().Str("dialect", db.Name()).Msg("Connected to database")
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log}),
	}, nil
}

// Close flushes the embedded backend and closes the connection pool.
func (b *Backend) Close() error {
	if err := b.Backend.Close(); err != nil {
		return err
	}
	sqlDB, err := b.DB().DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}
