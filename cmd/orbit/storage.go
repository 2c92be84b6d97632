package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sulloa07/orbit-sim/internal/config"
	"github.com/sulloa07/orbit-sim/internal/model"
	"github.com/sulloa07/orbit-sim/internal/storage"
	"github.com/sulloa07/orbit-sim/internal/storage/memory"
	pgstorage "github.com/sulloa07/orbit-sim/internal/storage/postgres"
	sqlitestorage "github.com/sulloa07/orbit-sim/internal/storage/sqlite"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// Storage backend names accepted by storage.type and --storage.
const (
	storageNone     = "none"
	storageMemory   = "memory"
	storageSQLite   = "sqlite"
	storagePostgres = "postgres"
)

var errNoStoredRuns = errors.New("stored runs need storage.type sqlite (with a path or dumpPath) or postgres")

// runStore is a backend that can read back what it stored.
type runStore interface {
	Runs(limit int) ([]model.Run, error)
	Run(runUUID string) (model.Run, error)
	Trajectory(runUUID string) ([]core.Sample, error)
	Close() error
}

// createStorageBackend builds the configured backend. "none" returns nil.
func createStorageBackend(storageCfg config.StorageConfig, dbCfg config.DBConfig, log zerolog.Logger) (storage.Backend, error) {
	switch storageCfg.Type {
	case "", storageNone:
		return nil, nil

	case storageMemory:
		log.Info().Str("outputDir", storageCfg.Memory.OutputDir).Msg("Memory storage backend initialized")
		return memory.New(storageCfg.Memory), nil

	case storageSQLite:
		backend, err := sqlitestorage.New(storageCfg.SQLite, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		return backend, nil

	case storagePostgres:
		backend, err := pgstorage.New(dbCfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres backend: %w", err)
		}
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// openRunStore opens the database written by earlier runs.
func openRunStore(storageCfg config.StorageConfig, dbCfg config.DBConfig, log zerolog.Logger) (runStore, error) {
	switch storageCfg.Type {
	case storageSQLite:
		cfg := storageCfg.SQLite
		if cfg.Path == "" {
			cfg.Path = cfg.DumpPath
		}
		// reading back must not overwrite the dump on Close
		cfg.DumpPath = ""
		if cfg.Path == "" {
			return nil, errNoStoredRuns
		}
		backend, err := sqlitestorage.New(cfg, log)
		if err != nil {
			return nil, err
		}
		return initStore(backend)

	case storagePostgres:
		backend, err := pgstorage.New(dbCfg, log)
		if err != nil {
			return nil, err
		}
		return initStore(backend)

	default:
		return nil, errNoStoredRuns
	}
}

// initStore migrates a freshly opened store, closing it again on failure.
func initStore(s interface {
	runStore
	Init() error
}) (runStore, error) {
	if err := s.Init(); err != nil {
		if cerr := s.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, err
	}
	return s, nil
}
