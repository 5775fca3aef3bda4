package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/asteain-ninia/ExoClim/internal/storage"
	"github.com/asteain-ninia/ExoClim/pkg/core"
	"github.com/asteain-ninia/ExoClim/pkg/streaming"
)

// DefaultAckTimeout bounds the wait for start_run and end_run acks.
const DefaultAckTimeout = 10 * time.Second

// Config holds WebSocket backend configuration.
type Config struct {
	URL        string
	Secret     string
	Frames     bool // stream debug frames
	AckTimeout time.Duration
}

// Backend streams run progress to a live viewer. Start and end of a run are
// acknowledged by the viewer; stages and frames are fire-and-forget.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = DefaultAckTimeout
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the viewer.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the viewer.
func (b *Backend) Close() error {
	return b.conn.close()
}

func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartRun sends start_run and waits for the viewer's ack.
func (b *Backend) StartRun(info *core.RunInfo) error {
	data, err := marshalEnvelope(streaming.TypeStartRun, streaming.StartRunPayload{Run: info})
	if err != nil {
		return err
	}

	b.conn.mu.Lock()
	b.conn.startMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartRun, b.cfg.AckTimeout)
}

// RecordStage sends stage_done.
func (b *Backend) RecordStage(runID string, timing core.StageTiming) error {
	return b.sendEnvelope(streaming.TypeStageDone, streaming.StageDonePayload{RunID: runID, Timing: timing})
}

// RecordFrame sends ocean_frame when frame streaming is enabled.
func (b *Backend) RecordFrame(runID string, month int, frame core.DebugFrame) error {
	if !b.cfg.Frames {
		return nil
	}
	return b.sendEnvelope(streaming.TypeOceanFrame, streaming.OceanFramePayload{RunID: runID, Month: month, Frame: frame})
}

// EndRun sends the run summary and waits for the viewer's ack.
func (b *Backend) EndRun(runID string, res *core.SimulationResult, runErr error) error {
	payload := streaming.NewEndRunPayload(runID, storage.RunStatus(runErr), res, runErr)
	data, err := marshalEnvelope(streaming.TypeEndRun, payload)
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndRun, b.cfg.AckTimeout)

	b.conn.mu.Lock()
	b.conn.startMsg = nil
	b.conn.mu.Unlock()

	return err
}
