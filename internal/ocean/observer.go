package ocean

import (
	"sync"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Integration phases reported in frames.
const (
	PhaseCounterCurrent = 1
	PhaseEquatorial     = 2
)

// StepObserver receives a frame after every macro-step of every phase.
type StepObserver interface {
	OnStep(month int, frame core.DebugFrame)
}

// ObserverFunc adapts a function to StepObserver.
type ObserverFunc func(month int, frame core.DebugFrame)

func (f ObserverFunc) OnStep(month int, frame core.DebugFrame) { f(month, frame) }

// FrameRecorder keeps every frame it observes, grouped by month.
type FrameRecorder struct {
	mu     sync.Mutex
	frames map[int][]core.DebugFrame
}

func (r *FrameRecorder) OnStep(month int, frame core.DebugFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frames == nil {
		r.frames = make(map[int][]core.DebugFrame)
	}
	r.frames[month] = append(r.frames[month], frame)
}

// Frames returns the frames recorded for month, never nil.
func (r *FrameRecorder) Frames(month int) []core.DebugFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.DebugFrame, len(r.frames[month]))
	copy(out, r.frames[month])
	return out
}

type multiObserver []StepObserver

func (m multiObserver) OnStep(month int, frame core.DebugFrame) {
	for _, o := range m {
		o.OnStep(month, frame)
	}
}

// MultiObserver fans frames out to every non-nil observer.
func MultiObserver(observers ...StepObserver) StepObserver {
	var out multiObserver
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}
