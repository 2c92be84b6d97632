// internal/storage/storage.go
package storage

import (
	"errors"

	"github.com/sulloa07/orbit-sim/pkg/core"
)

// ErrNoRun is returned when recording without an active run.
var ErrNoRun = errors.New("no active run")

// Backend is the interface all run storage implementations must satisfy.
// Calls for one run arrive in order: StartRun, any number of RecordSample
// and RecordFiredAction, then EndRun.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management
	StartRun(run *core.Run) error
	EndRun(summary *core.RunSummary) error

	// Recording
	RecordSample(s *core.Sample) error
	RecordFiredAction(a *core.FiredAction) error
}

// Exportable is an optional interface for backends that write each run to
// a file.
type Exportable interface {
	GetExportedFilePath() string
}
