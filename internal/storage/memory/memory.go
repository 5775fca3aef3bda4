// internal/storage/memory/memory.go
package memory

import (
	"fmt"
	"sync"

	"github.com/asteain-ninia/ExoClim/internal/config"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// FrameRecord is a debug frame tagged with its month
type FrameRecord struct {
	Month int             `json:"month"`
	Frame core.DebugFrame `json:"frame"`
}

// RunRecord groups a run with everything recorded while it ran
type RunRecord struct {
	Info   core.RunInfo
	Stages []core.StageTiming
	Frames []FrameRecord
}

// Backend keeps runs in memory and exports each one to a JSON file when
// it ends
type Backend struct {
	cfg  config.MemoryConfig
	runs map[string]*RunRecord

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:  cfg,
		runs: make(map[string]*RunRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close drops any run that never ended
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runs = make(map[string]*RunRecord)
	return nil
}

// StartRun begins recording a new run
func (b *Backend) StartRun(info *core.RunInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.runs[info.ID]; ok {
		return fmt.Errorf("run %s already started", info.ID)
	}
	b.runs[info.ID] = &RunRecord{
		Info:   *info,
		Stages: make([]core.StageTiming, 0),
		Frames: make([]FrameRecord, 0),
	}
	return nil
}

func (b *Backend) record(runID string) (*RunRecord, error) {
	rec, ok := b.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %s not started", runID)
	}
	return rec, nil
}

// RecordStage appends a stage timing
func (b *Backend) RecordStage(runID string, timing core.StageTiming) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.record(runID)
	if err != nil {
		return err
	}
	rec.Stages = append(rec.Stages, timing)
	return nil
}

// RecordFrame appends a debug frame
func (b *Backend) RecordFrame(runID string, month int, frame core.DebugFrame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.record(runID)
	if err != nil {
		return err
	}
	rec.Frames = append(rec.Frames, FrameRecord{Month: month, Frame: frame})
	return nil
}

// EndRun exports the run and forgets it
func (b *Backend) EndRun(runID string, res *core.SimulationResult, runErr error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.record(runID)
	if err != nil {
		return err
	}
	delete(b.runs, runID)

	path, err := b.exportJSON(rec, res, runErr)
	if err != nil {
		return err
	}
	b.lastExportPath = path
	return nil
}

// ExportedFilePath returns the file written by the last EndRun
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// Run returns a copy of the record of an active run
func (b *Backend) Run(runID string) (RunRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.runs[runID]
	if !ok {
		return RunRecord{}, false
	}
	cp := *rec
	cp.Stages = append([]core.StageTiming(nil), rec.Stages...)
	cp.Frames = append([]FrameRecord(nil), rec.Frames...)
	return cp, true
}
