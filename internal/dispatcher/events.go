package dispatcher

import "github.com/asteain-ninia/ExoClim/pkg/core"

// FramePayload is the payload of KindOceanFrame.
type FramePayload struct {
	Month int
	Frame core.DebugFrame
}

// RunEndPayload is the payload of KindRunEnd. Result is nil when the run
// failed before producing one.
type RunEndPayload struct {
	Result *core.SimulationResult
	Err    error
}

// Payload of KindRunStart is *core.RunInfo and of KindStageDone is
// core.StageTiming.
