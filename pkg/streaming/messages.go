// Package streaming defines the messages a running simulator sends to a
// live viewer.
package streaming

import (
	"encoding/json"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartRun   = "start_run"
	TypeStageDone  = "stage_done"
	TypeOceanFrame = "ocean_frame"
	TypeEndRun     = "end_run"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartRunPayload carries the run inputs.
type StartRunPayload struct {
	Run *core.RunInfo `json:"run"`
}

// StageDonePayload reports one finished pipeline stage.
type StageDonePayload struct {
	RunID  string           `json:"runId"`
	Timing core.StageTiming `json:"timing"`
}

// OceanFramePayload carries one debug macro-step.
type OceanFramePayload struct {
	RunID string          `json:"runId"`
	Month int             `json:"month"`
	Frame core.DebugFrame `json:"frame"`
}

// EndRunPayload summarises a finished run.
type EndRunPayload struct {
	RunID       string            `json:"runId"`
	Status      string            `json:"status"`
	Error       string            `json:"error,omitempty"`
	Stats       []core.MonthStats `json:"stats"`
	Streamlines int               `json:"streamlines"`
	Impacts     int               `json:"impacts"`
	Diagnostics int               `json:"diagnostics"`
}

// NewEndRunPayload builds the summary of res. res may be nil when the run
// failed before the ocean stage.
func NewEndRunPayload(runID, status string, res *core.SimulationResult, runErr error) EndRunPayload {
	p := EndRunPayload{RunID: runID, Status: status, Stats: []core.MonthStats{}}
	if runErr != nil {
		p.Error = runErr.Error()
	}
	if res == nil {
		return p
	}
	if res.Ocean.Stats != nil {
		p.Stats = res.Ocean.Stats
	}
	for m := 0; m < core.Months; m++ {
		p.Streamlines += len(res.Ocean.Streamlines[m])
		p.Impacts += len(res.Ocean.Impacts[m])
	}
	p.Diagnostics = len(res.Ocean.Diagnostics)
	return p
}
