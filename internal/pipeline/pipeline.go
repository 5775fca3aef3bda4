// Package pipeline runs the simulation stages in order and reports each one
// to the run-event bus.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/asteain-ninia/ExoClim/internal/dispatcher"
	"github.com/asteain-ninia/ExoClim/internal/geography"
	"github.com/asteain-ninia/ExoClim/internal/itcz"
	"github.com/asteain-ninia/ExoClim/internal/ocean"
	"github.com/asteain-ninia/ExoClim/internal/run"
	"github.com/asteain-ninia/ExoClim/internal/wind"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// ProgressFunc receives the overall progress in percent, a human readable
// label and the stage about to start.
type ProgressFunc func(percent int, label, stage string)

// Dependencies holds the collaborators of a Runner. Every field is optional.
type Dependencies struct {
	Logger     *slog.Logger
	Metrics    *Metrics
	Events     *dispatcher.Dispatcher
	Progress   ProgressFunc
	RunContext *run.Context
}

// Request describes one simulation run.
type Request struct {
	Rows       int
	Cols       int
	Source     geography.MaskSource
	SourceName string
	Planet     core.PlanetParams
	Atmosphere core.AtmosphereParams
	Physics    core.PhysicsParams
	Months     []int
	DebugMonth *int
	// EcLatGap, when positive, replaces the wind-derived counter-current gap.
	EcLatGap float64
	// Frames publishes every ocean macro-step as an ocean.frame event.
	Frames bool
}

// Runner executes simulation requests.
type Runner struct {
	deps Dependencies
}

// New creates a Runner. A nil logger logs to slog.Default.
func New(deps Dependencies) *Runner {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = NoopMetrics()
	}
	return &Runner{deps: deps}
}

// Run executes every stage of req. The returned result is complete only when
// the error is nil.
func (r *Runner) Run(ctx context.Context, req Request) (*core.SimulationResult, error) {
	info := core.RunInfo{
		ID:         uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		Rows:       req.Rows,
		Cols:       req.Cols,
		Source:     req.SourceName,
		Months:     req.Months,
		Planet:     req.Planet,
		Atmosphere: req.Atmosphere,
		Physics:    req.Physics,
	}
	if info.Source == "" {
		info.Source = fmt.Sprintf("%T", req.Source)
	}
	if req.DebugMonth != nil {
		info.Months = []int{*req.DebugMonth}
	}
	if r.deps.RunContext != nil {
		r.deps.RunContext.SetRun(&info)
	}

	log := r.deps.Logger.With("run", info.ID)
	log.Info("Run started", "rows", req.Rows, "cols", req.Cols, "source", info.Source, "months", info.Months)
	r.publish(dispatcher.KindRunStart, info.ID, &info)

	res := &core.SimulationResult{Run: info}
	err := r.execute(ctx, log, req, res)
	if r.deps.RunContext != nil {
		r.deps.RunContext.SetStage("done")
	}

	if err != nil {
		log.Error("Run failed", "error", err)
		r.publish(dispatcher.KindRunEnd, info.ID, dispatcher.RunEndPayload{Err: err})
		return nil, err
	}

	r.progress(100, "Done", "")
	log.Info("Run complete",
		"duration", time.Since(info.StartedAt),
		"streamlines", countStreamlines(res.Ocean),
		"impacts", countImpacts(res.Ocean),
		"diagnostics", len(res.Ocean.Diagnostics))
	r.publish(dispatcher.KindRunEnd, info.ID, dispatcher.RunEndPayload{Result: res})
	return res, nil
}

func (r *Runner) execute(ctx context.Context, log *slog.Logger, req Request, res *core.SimulationResult) error {
	runID := res.Run.ID

	err := r.stage(ctx, log, res, core.StageGeography, 5, "Building grid", func() error {
		g, err := geography.BuildGrid(req.Rows, req.Cols, req.Source)
		if err != nil {
			return err
		}
		res.Grid = g
		return nil
	})
	if err != nil {
		return err
	}

	err = r.stage(ctx, log, res, core.StageITCZ, 25, "Solving ITCZ", func() error {
		out, err := itcz.Solve(res.Grid, req.Planet, req.Atmosphere, req.Physics)
		if err != nil {
			return err
		}
		res.ITCZ = out
		return nil
	})
	if err != nil {
		return err
	}

	err = r.stage(ctx, log, res, core.StageWind, 45, "Computing wind belts", func() error {
		out, err := wind.ComputeBelts(res.Grid, res.ITCZ, req.Planet, req.Physics)
		if err != nil {
			return err
		}
		for _, c := range out.ClampInfo {
			log.Warn("Wind boundary clamped", "detail", c)
		}
		res.Wind = out
		return nil
	})
	if err != nil {
		return err
	}

	return r.stage(ctx, log, res, core.StageOcean, 65, "Tracing ocean currents", func() error {
		opts := ocean.Options{
			Months:     req.Months,
			DebugMonth: req.DebugMonth,
			EcLatGap:   oceanGap(req.EcLatGap, res.Wind),
		}
		log.Debug("Counter-current gap", "deg", opts.EcLatGap, "override", req.EcLatGap > 0)
		if req.Frames && r.deps.Events != nil && r.deps.Events.HasHandler(dispatcher.KindOceanFrame) {
			opts.Observer = ocean.ObserverFunc(func(month int, frame core.DebugFrame) {
				r.publish(dispatcher.KindOceanFrame, runID, dispatcher.FramePayload{Month: month, Frame: frame})
			})
		}
		out, err := ocean.Compute(ctx, res.Grid, res.ITCZ.Lines, req.Physics, opts)
		if err != nil {
			return err
		}
		res.Ocean = out
		r.deps.Metrics.recordOcean(ctx, out)
		for _, s := range out.Stats {
			log.Debug("Ocean month traced",
				"month", s.Month,
				"ecc", s.EccSpawned,
				"ec", s.EcSpawned,
				"impacts", s.Impacts,
				"streamlines", s.Streamlines)
		}
		if n := len(out.Diagnostics); n > 0 {
			log.Warn("Ocean diagnostics recorded", "count", n)
		}
		return nil
	})
}

// oceanGap is the counter-current gap handed to the ocean stage: a positive
// override wins, otherwise the gap the wind stage settled on.
func oceanGap(override float64, w core.WindBeltsResult) float64 {
	if override > 0 {
		return override
	}
	return w.OceanEcLatGapDerived
}

// stage runs fn as the named stage, timing it and publishing stage.done on
// success.
func (r *Runner) stage(ctx context.Context, log *slog.Logger, res *core.SimulationResult, name string, percent int, label string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if r.deps.RunContext != nil {
		r.deps.RunContext.SetStage(name)
	}
	r.progress(percent, label, name)

	started := time.Now()
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	timing := core.StageTiming{Stage: name, Started: started, Duration: time.Since(started)}
	res.Timings = append(res.Timings, timing)

	r.deps.Metrics.recordStage(ctx, timing)
	log.Info("Stage complete", "stage", name, "duration", timing.Duration)
	r.publish(dispatcher.KindStageDone, res.Run.ID, timing)
	return nil
}

func (r *Runner) progress(percent int, label, stage string) {
	if r.deps.Progress != nil {
		r.deps.Progress(percent, label, stage)
	}
}

func (r *Runner) publish(kind, runID string, payload any) {
	if r.deps.Events == nil {
		return
	}
	r.deps.Events.Publish(dispatcher.Event{Kind: kind, RunID: runID, Payload: payload})
}

func countStreamlines(o core.OceanResult) int {
	n := 0
	for _, lines := range o.Streamlines {
		n += len(lines)
	}
	return n
}

func countImpacts(o core.OceanResult) int {
	n := 0
	for _, imps := range o.Impacts {
		n += len(imps)
	}
	return n
}
