package mission

import (
	"sync"

	"github.com/sulloa07/orbit-sim/pkg/core"
)

// Context holds the run currently being simulated, if any. Log handlers read
// it to stamp records with the run id and flight name.
type Context struct {
	mu  sync.RWMutex
	run *core.Run
}

// NewContext creates a new Context with no active run
func NewContext() *Context {
	return &Context{}
}

// GetRun returns the active run, or nil between runs
func (mc *Context) GetRun() *core.Run {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.run
}

// SetRun marks run as active
func (mc *Context) SetRun(run *core.Run) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.run = run
}

// Clear ends the active run
func (mc *Context) Clear() {
	mc.SetRun(nil)
}
