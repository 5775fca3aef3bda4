// internal/storage/storage.go
package storage

import (
	"github.com/asteain-ninia/ExoClim/internal/model"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Backend is the interface all run ledger implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management
	StartRun(info *core.RunInfo) error
	EndRun(runID string, res *core.SimulationResult, runErr error) error

	// Progress recording
	RecordStage(runID string, timing core.StageTiming) error
	RecordFrame(runID string, month int, frame core.DebugFrame) error
}

// Exportable is an optional interface for backends that write a file per
// run.
type Exportable interface {
	ExportedFilePath() string
}

// RunStatus returns the ledger status of a finished run.
func RunStatus(runErr error) string {
	if runErr != nil {
		return model.RunStatusFailed
	}
	return model.RunStatusComplete
}
