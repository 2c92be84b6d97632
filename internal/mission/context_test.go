package mission

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sulloa07/orbit-sim/pkg/core"
)

func TestContext_Lifecycle(t *testing.T) {
	ctx := NewContext()
	assert.Nil(t, ctx.GetRun())

	run := &core.Run{ID: "abc", Flight: "apollo"}
	ctx.SetRun(run)
	assert.Same(t, run, ctx.GetRun())

	ctx.Clear()
	assert.Nil(t, ctx.GetRun())
}

func TestContext_ThreadSafe(t *testing.T) {
	ctx := NewContext()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ctx.SetRun(&core.Run{ID: "run"})
		}()
		go func() {
			defer wg.Done()
			if r := ctx.GetRun(); r != nil {
				assert.Equal(t, "run", r.ID)
			}
		}()
	}
	wg.Wait()
	assert.NotNil(t, ctx.GetRun())
}
