// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/sulloa07/orbit-sim/internal/config"
	"github.com/sulloa07/orbit-sim/internal/storage"
	"github.com/sulloa07/orbit-sim/pkg/core"
)

// RunRecord groups a run with everything recorded for it
type RunRecord struct {
	Run     core.Run
	Samples []core.Sample
	Fired   []core.FiredAction
	Summary *core.RunSummary
}

// Backend keeps runs in memory and exports each finished run to a file
type Backend struct {
	cfg config.MemoryConfig

	runs    []*RunRecord
	current *RunRecord

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRun begins recording a new run
func (b *Backend) StartRun(run *core.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = &RunRecord{Run: *run}
	b.runs = append(b.runs, b.current)
	return nil
}

// RecordSample appends a trajectory sample to the active run
func (b *Backend) RecordSample(s *core.Sample) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return storage.ErrNoRun
	}
	b.current.Samples = append(b.current.Samples, *s)
	return nil
}

// RecordFiredAction appends a fired action to the active run
func (b *Backend) RecordFiredAction(a *core.FiredAction) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return storage.ErrNoRun
	}
	b.current.Fired = append(b.current.Fired, *a)
	return nil
}

// EndRun attaches the summary and exports the run
func (b *Backend) EndRun(summary *core.RunSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return storage.ErrNoRun
	}
	s := *summary
	b.current.Summary = &s

	rec := b.current
	b.current = nil
	return b.export(rec)
}

// Runs returns every run recorded so far, in start order
func (b *Backend) Runs() []RunRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]RunRecord, len(b.runs))
	for i, r := range b.runs {
		out[i] = *r
	}
	return out
}

// GetExportedFilePath returns the file written for the last finished run
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
