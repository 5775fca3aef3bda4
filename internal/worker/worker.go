// Package worker connects the run-event bus to the ledger sinks.
package worker

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/asteain-ninia/ExoClim/internal/dispatcher"
	"github.com/asteain-ninia/ExoClim/internal/influx"
	"github.com/asteain-ninia/ExoClim/internal/storage"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Queue sizes of the buffered sink handlers.
const (
	StageQueueSize = 64
	FrameQueueSize = 10000
)

// ErrUnexpectedPayload is returned when an event carries the wrong payload
// type for its kind.
var ErrUnexpectedPayload = errors.New("unexpected event payload")

// Dependencies holds the sinks fed by the manager. Nil sinks are skipped.
type Dependencies struct {
	Logger  *slog.Logger
	Backend storage.Backend
	Influx  *influx.Manager
}

// Manager forwards run events to the storage backend and influx.
type Manager struct {
	deps Dependencies
	d    *dispatcher.Dispatcher
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{deps: deps}
}

// RegisterHandlers registers every run-event handler with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	m.d = d

	// the run row must exist before anything refers to it
	d.Register(dispatcher.KindRunStart, m.handleRunStart, dispatcher.Logged())

	d.Register(dispatcher.KindStageDone, m.handleStageDone,
		dispatcher.Buffered(StageQueueSize), dispatcher.Blocking(), dispatcher.Logged())

	// frames are best effort: a full queue drops them
	d.Register(dispatcher.KindOceanFrame, m.handleOceanFrame,
		dispatcher.Buffered(FrameQueueSize))

	d.Register(dispatcher.KindRunEnd, m.handleRunEnd, dispatcher.Logged())
}

func (m *Manager) handleRunStart(e dispatcher.Event) (any, error) {
	info, ok := e.Payload.(*core.RunInfo)
	if !ok {
		return nil, fmt.Errorf("%w: %s got %T", ErrUnexpectedPayload, e.Kind, e.Payload)
	}
	if m.deps.Backend == nil {
		return nil, nil
	}
	if err := m.deps.Backend.StartRun(info); err != nil {
		return nil, fmt.Errorf("start run %s: %w", info.ID, err)
	}
	return nil, nil
}

func (m *Manager) handleStageDone(e dispatcher.Event) (any, error) {
	timing, ok := e.Payload.(core.StageTiming)
	if !ok {
		return nil, fmt.Errorf("%w: %s got %T", ErrUnexpectedPayload, e.Kind, e.Payload)
	}

	var errs []error
	if m.deps.Backend != nil {
		if err := m.deps.Backend.RecordStage(e.RunID, timing); err != nil {
			errs = append(errs, fmt.Errorf("record stage %s: %w", timing.Stage, err))
		}
	}
	if m.deps.Influx != nil {
		if err := m.deps.Influx.WriteStage(e.RunID, timing); err != nil {
			errs = append(errs, fmt.Errorf("influx stage %s: %w", timing.Stage, err))
		}
	}
	return nil, errors.Join(errs...)
}

func (m *Manager) handleOceanFrame(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(dispatcher.FramePayload)
	if !ok {
		return nil, fmt.Errorf("%w: %s got %T", ErrUnexpectedPayload, e.Kind, e.Payload)
	}
	if m.deps.Backend == nil {
		return nil, nil
	}
	if err := m.deps.Backend.RecordFrame(e.RunID, p.Month, p.Frame); err != nil {
		m.deps.Logger.Debug("Frame not recorded", "run", e.RunID, "step", p.Frame.Step, "error", err)
	}
	return nil, nil
}

// handleRunEnd waits for queued stages and frames of the run before closing
// it in every sink.
func (m *Manager) handleRunEnd(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(dispatcher.RunEndPayload)
	if !ok {
		return nil, fmt.Errorf("%w: %s got %T", ErrUnexpectedPayload, e.Kind, e.Payload)
	}
	if m.d != nil {
		m.d.Flush(dispatcher.KindStageDone)
		m.d.Flush(dispatcher.KindOceanFrame)
	}

	var errs []error
	if m.deps.Backend != nil {
		if err := m.deps.Backend.EndRun(e.RunID, p.Result, p.Err); err != nil {
			errs = append(errs, fmt.Errorf("end run %s: %w", e.RunID, err))
		} else if ex, ok := m.deps.Backend.(storage.Exportable); ok && ex.ExportedFilePath() != "" {
			m.deps.Logger.Info("Run ledger written", "run", e.RunID, "path", ex.ExportedFilePath())
		}
	}
	if m.deps.Influx != nil {
		if err := m.deps.Influx.WriteRun(e.RunID, storage.RunStatus(p.Err), p.Result); err != nil {
			errs = append(errs, fmt.Errorf("influx run %s: %w", e.RunID, err))
		}
	}
	return nil, errors.Join(errs...)
}
