// Package gormstorage implements the storage.Backend interface on top of any
// GORM dialect. Samples and fired actions are queued while a run is active and
// written in batches; the sqlite and postgres backends wrap it.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/sulloa07/orbit-sim/internal/database"
	"github.com/sulloa07/orbit-sim/internal/model"
	"github.com/sulloa07/orbit-sim/internal/model/convert"
	"github.com/sulloa07/orbit-sim/internal/queue"
	"github.com/sulloa07/orbit-sim/internal/storage"
	"github.com/sulloa07/orbit-sim/pkg/core"
	"gorm.io/gorm"
)

// flushThreshold is the queued sample count that triggers a write mid-run.
const flushThreshold = 2000

// ErrNoDB is returned by Init when no database was injected.
var ErrNoDB = errors.New("no database connection")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Samples *queue.Queue[model.TrajectorySample]
	Fired   *queue.Queue[model.FiredAction]
}

func newQueues() *queues {
	return &queues{
		Samples: queue.New[model.TrajectorySample](),
		Fired:   queue.New[model.FiredAction](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps    Dependencies
	queues  *queues
	run     *model.Run
	written int
	mu      sync.Mutex
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return ErrNoDB
	}
	b.deps.Logger.Info().Str("dialect", b.deps.DB.Name()).Msg("Migrating schema")
	return database.Migrate(b.deps.DB)
}

// Close writes anything still queued.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.run == nil {
		return nil
	}
	return b.flush()
}

// StartRun inserts the run row so samples can reference it.
func (b *Backend) StartRun(run *core.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	gormRun := convert.CoreToRun(*run)
	if err := b.deps.DB.Create(&gormRun).Error; err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	b.run = &gormRun
	b.written = 0

	b.deps.Logger.Debug().
		Str("run", gormRun.UUID).
		Uint("rowId", gormRun.ID).
		Str("flight", gormRun.Flight).
		Msg("Run started")
	return nil
}

// RecordSample converts and queues a trajectory sample.
func (b *Backend) RecordSample(s *core.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return storage.ErrNoRun
	}
	b.queues.Samples.Push(convert.CoreToTrajectorySample(b.run.ID, *s))
	if b.queues.Samples.Len() >= flushThreshold {
		return b.flush()
	}
	return nil
}

// RecordFiredAction converts and queues a fired action.
func (b *Backend) RecordFiredAction(a *core.FiredAction) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return storage.ErrNoRun
	}
	b.queues.Fired.Push(convert.CoreToFiredAction(b.run.ID, *a))
	return nil
}

// EndRun writes the remaining queues and stores the summary on the run row.
func (b *Backend) EndRun(summary *core.RunSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return storage.ErrNoRun
	}
	if err := b.flush(); err != nil {
		return err
	}

	convert.ApplySummary(b.run, *summary, time.Now())
	if err := b.deps.DB.Save(b.run).Error; err != nil {
		return fmt.Errorf("failed to update run summary: %w", err)
	}

	b.deps.Logger.Info().
		Str("run", b.run.UUID).
		Str("samples", humanize.Comma(int64(b.written))).
		Msg("Run stored")
	b.run = nil
	return nil
}

// flush writes both queues inside one transaction and requeues them if it
// fails. Callers hold b.mu.
func (b *Backend) flush() error {
	start := time.Now()
	samples := b.queues.Samples.GetAndEmpty()
	fired := b.queues.Fired.GetAndEmpty()
	if len(samples) == 0 && len(fired) == 0 {
		return nil
	}

	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		if len(samples) > 0 {
			if err := tx.CreateInBatches(&samples, flushThreshold).Error; err != nil {
				return fmt.Errorf("failed to write trajectory samples: %w", err)
			}
		}
		if len(fired) > 0 {
			if err := tx.Create(&fired).Error; err != nil {
				return fmt.Errorf("failed to write fired actions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		b.queues.Samples.Requeue(samples)
		b.queues.Fired.Requeue(fired)
		b.deps.Logger.Error().Err(err).Msg("Flush failed")
		return err
	}

	b.written += len(samples)
	b.deps.Logger.Debug().Int("samples", len(samples)).Int("actions", len(fired)).Dur("duration", time.Since(start)).Msg("Flushed queues")
	return nil
}

// Runs returns the stored runs, newest first. A limit of zero returns all.
func (b *Backend) Runs(limit int) ([]model.Run, error) {
	var runs []model.Run
	q := b.deps.DB.Order("start_time desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Run looks up one stored run by UUID.
func (b *Backend) Run(runUUID string) (model.Run, error) {
	var run model.Run
	if err := b.deps.DB.Where("uuid = ?", runUUID).First(&run).Error; err != nil {
		return model.Run{}, fmt.Errorf("failed to find run %s: %w", runUUID, err)
	}
	return run, nil
}

// Trajectory loads the samples of the run with the given UUID, in order.
func (b *Backend) Trajectory(runUUID string) ([]core.Sample, error) {
	run, err := b.Run(runUUID)
	if err != nil {
		return nil, err
	}

	var rows []model.TrajectorySample
	if err := b.deps.DB.Where("run_id = ?", run.ID).Order("idx").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load trajectory: %w", err)
	}

	out := make([]core.Sample, len(rows))
	for i, r := range rows {
		out[i] = convert.TrajectorySampleToCore(r)
	}
	return out, nil
}
