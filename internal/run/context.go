package run

import (
	"sync"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Context holds the run currently being simulated and its active stage
type Context struct {
	mu    sync.RWMutex
	Info  *core.RunInfo
	Stage string
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		Info:  &core.RunInfo{ID: "no run started"},
		Stage: "idle",
	}
}

// GetRun returns the current run
func (rc *Context) GetRun() *core.RunInfo {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.Info
}

// GetStage returns the stage currently executing
func (rc *Context) GetStage() string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.Stage
}

// SetRun sets the current run and resets the stage
func (rc *Context) SetRun(info *core.RunInfo) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.Info = info
	rc.Stage = "started"
}

// SetStage records the stage currently executing
func (rc *Context) SetStage(stage string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.Stage = stage
}
