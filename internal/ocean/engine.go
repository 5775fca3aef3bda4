// Package ocean traces surface currents as agents that ride the equatorial
// flow, collide with coasts and split into poleward counter currents.
package ocean

import (
	"context"
	"fmt"
	"math"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// DefaultMonths are integrated when Options.Months is empty.
var DefaultMonths = []int{0, 6}

// Options tunes one Compute call.
type Options struct {
	// Months to integrate. Ignored when DebugMonth is set.
	Months []int
	// DebugMonth integrates only this month over the full step budget and
	// captures every frame into OceanResult.Debug.
	DebugMonth *int
	// EcLatGap overrides PhysicsParams.OceanEcLatGap when positive.
	EcLatGap float64
	Observer StepObserver
}

// engine holds the month-independent state of a Compute call.
type engine struct {
	g            *core.Grid
	field        *CollisionField
	phys         core.PhysicsParams
	gap          float64
	dt           float64
	maxSpeed     float64
	observer     StepObserver
	fullTimeline bool
}

// Compute integrates the current agents for the requested months. It writes
// the collision mask onto g.
func Compute(ctx context.Context, g *core.Grid, lines [core.Months][]float64, phys core.PhysicsParams, opts Options) (core.OceanResult, error) {
	if err := g.Validate(); err != nil {
		return core.OceanResult{}, err
	}
	if err := phys.Validate(); err != nil {
		return core.OceanResult{}, err
	}

	months := opts.Months
	if opts.DebugMonth != nil {
		months = []int{*opts.DebugMonth}
	} else if len(months) == 0 {
		months = DefaultMonths
	}
	for _, m := range months {
		if err := core.CheckMonth(m); err != nil {
			return core.OceanResult{}, err
		}
		if len(lines[m]) != g.Cols {
			return core.OceanResult{}, fmt.Errorf("%w: itcz line %d has %d columns, grid has %d",
				core.ErrDegenerateGrid, m, len(lines[m]), g.Cols)
		}
	}

	field := NewCollisionField(g, phys)
	if err := g.ApplyCollisionMask(core.StageOcean, field.Values); err != nil {
		return core.OceanResult{}, fmt.Errorf("failed to write collision mask: %w", err)
	}

	e := &engine{
		g:        g,
		field:    field,
		phys:     phys,
		gap:      phys.OceanEcLatGap,
		dt:       phys.OceanMacroDT / float64(phys.OceanSubSteps),
		maxSpeed: phys.OceanBaseSpeed * phys.OceanMaxSpeedMult,
		observer: opts.Observer,
	}
	if opts.EcLatGap > 0 {
		e.gap = opts.EcLatGap
	}
	var recorder *FrameRecorder
	if opts.DebugMonth != nil {
		recorder = &FrameRecorder{}
		e.observer = MultiObserver(recorder, opts.Observer)
		e.fullTimeline = true
	}

	res := core.OceanResult{Diagnostics: []core.Diagnostic{}, EcLatGapDeg: e.gap}
	for m := range res.Streamlines {
		res.Streamlines[m] = []core.Streamline{}
		res.Impacts[m] = []core.Impact{}
	}
	for _, m := range months {
		run := e.newMonth(m, lines[m])
		if err := run.integrate(ctx); err != nil {
			return core.OceanResult{}, err
		}
		res.Streamlines[m] = run.lines
		res.Impacts[m] = run.impacts
		res.Diagnostics = append(res.Diagnostics, run.diags...)
		res.Stats = append(res.Stats, run.stats)
	}

	if recorder != nil {
		m := *opts.DebugMonth
		res.Debug = &core.DebugData{
			Month:          m,
			Frames:         recorder.Frames(m),
			CollisionField: append([]float64(nil), field.Values...),
			Width:          g.Cols,
			Height:         g.Rows,
			ITCZLine:       append([]float64(nil), lines[m]...),
		}
	}
	return res, nil
}

// spawnPoint is a safe ocean position west of an equatorial impact.
type spawnPoint struct {
	x, y float64
}

// monthRun integrates both phases of one month.
type monthRun struct {
	*engine
	month  int
	itcz   []float64
	flow   *flowGrid
	agents []*agent
	spawns []spawnPoint

	lines      []core.Streamline
	impacts    []core.Impact
	diags      []core.Diagnostic
	stats      core.MonthStats
	frameStep  int
	ecArrivals int
}

func (e *engine) newMonth(month int, itcz []float64) *monthRun {
	return &monthRun{
		engine:  e,
		month:   month,
		itcz:    itcz,
		flow:    newFlowGrid(e.g.Rows, e.g.Cols, e.phys.OceanPruneSimilarity),
		lines:   []core.Streamline{},
		impacts: []core.Impact{},
		stats: core.MonthStats{
			Month:        month,
			Terminations: map[string]int{},
		},
	}
}

func (m *monthRun) integrate(ctx context.Context) error {
	ecc := m.spawnCounterCurrents()
	m.stats.EccSpawned = len(ecc)
	if err := m.runPhase(ctx, PhaseCounterCurrent, ecc, m.stepCounterCurrent); err != nil {
		return err
	}
	m.collect(ecc)

	ec := m.spawnEquatorial()
	m.stats.EcSpawned = len(ec)
	if err := m.runPhase(ctx, PhaseEquatorial, ec, m.stepEquatorial); err != nil {
		return err
	}
	m.collect(ec)

	m.stats.Impacts = len(m.impacts)
	m.stats.Streamlines = len(m.lines)
	return nil
}

// runPhase advances agents macro-step by macro-step. Without a full timeline
// it stops as soon as every agent has finished.
func (m *monthRun) runPhase(ctx context.Context, phase int, agents []*agent, step func(*agent)) error {
	if len(agents) == 0 {
		return nil
	}
	for s := 0; s < m.phys.OceanStreamlineSteps; s++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("ocean month %d phase %d: %w", m.month, phase, err)
		}
		if !m.fullTimeline && !anyAlive(agents) {
			break
		}
		for _, a := range agents {
			if !a.alive() {
				continue
			}
			step(a)
			if a.alive() {
				a.age++
				a.points = append(a.points, m.point(a))
			}
		}
		m.emitFrame(phase, agents)
	}
	return nil
}

func (m *monthRun) emitFrame(phase int, agents []*agent) {
	if m.observer == nil {
		return
	}
	frame := core.DebugFrame{
		Step:   m.frameStep,
		Phase:  phase,
		Agents: make([]core.AgentSnapshot, len(agents)),
	}
	for i, a := range agents {
		frame.Agents[i] = a.snapshot()
	}
	m.frameStep++
	m.observer.OnStep(m.month, frame)
}

func (m *monthRun) collect(agents []*agent) {
	for _, a := range agents {
		if len(a.points) < m.phys.OceanMinLinePoints {
			continue
		}
		m.lines = append(m.lines, core.Streamline{
			AgentID:  a.id,
			Kind:     a.kind.StreamlineKind(),
			Strength: a.strength,
			Points:   a.points,
		})
	}
}

func (m *monthRun) newAgent(kind core.AgentKind, x, y, vx, vy float64) *agent {
	a := &agent{
		id:       len(m.agents),
		kind:     kind,
		state:    core.StateActive,
		x:        x,
		y:        y,
		vx:       vx,
		vy:       vy,
		strength: m.phys.OceanStrength,
		lastX:    x,
		lastY:    y,
	}
	a.points = []core.StreamlinePoint{m.point(a)}
	m.agents = append(m.agents, a)
	return a
}

func (m *monthRun) point(a *agent) core.StreamlinePoint {
	return core.StreamlinePoint{
		X:   a.x,
		Y:   a.y,
		Lat: m.g.LatOfRow(a.y),
		Lon: core.NormalizeLon(m.g.LonOfCol(a.x)),
		VX:  a.vx,
		VY:  a.vy,
	}
}

// itczAt is the ITCZ latitude of the column containing x.
func (m *monthRun) itczAt(x float64) float64 {
	return m.itcz[m.g.WrapCol(int(math.Floor(x)))]
}

func (m *monthRun) terminate(a *agent, state core.AgentState, cause string) {
	a.state = state
	a.cause = cause
	m.stats.Terminations[cause]++
	if a.kind != core.AgentECC && cause != CauseArrival && a.age < m.phys.OceanSpawnDeathAge {
		m.diagnose(a, core.DiagEcInfantDeath, msgEcSpawnDeath)
	}
}

func (m *monthRun) diagnose(a *agent, kind core.DiagnosticKind, msg string) {
	m.diags = append(m.diags, core.Diagnostic{
		Kind:    kind,
		Month:   m.month,
		AgentID: a.id,
		X:       a.x,
		Y:       a.y,
		Lat:     m.g.LatOfRow(a.y),
		Lon:     core.NormalizeLon(m.g.LonOfCol(a.x)),
		Age:     a.age,
		Message: msg,
	})
}

func (m *monthRun) recordImpact(x, y float64, kind core.ImpactKind) {
	m.impacts = append(m.impacts, core.Impact{
		X:    x,
		Y:    y,
		Lat:  m.g.LatOfRow(y),
		Lon:  core.NormalizeLon(m.g.LonOfCol(x)),
		Kind: kind,
	})
}

// precheck runs the per-macro-step lifecycle checks and reports whether the
// agent may keep integrating.
func (m *monthRun) precheck(a *agent, stagnationLimit int) bool {
	if a.moved() < m.phys.OceanStagnationFactor*m.phys.OceanMacroDT {
		a.stagnation++
	} else {
		a.stagnation = 0
	}
	if a.stagnation > stagnationLimit {
		if a.kind == core.AgentECC {
			m.diagnose(a, core.DiagEccStuck, msgEccStagnated)
		}
		m.terminate(a, core.StateStuck, CauseStagnation)
		return false
	}
	if len(a.points) > m.phys.OceanPruneMinPoints && m.flow.visit(a.x, a.y, a.vx, a.vy) {
		m.terminate(a, core.StateDead, CausePruned)
		return false
	}
	return true
}

func (m *monthRun) clampSpeed(vx, vy float64) (float64, float64) {
	s := math.Hypot(vx, vy)
	if s > m.maxSpeed {
		k := m.maxSpeed / s
		return vx * k, vy * k
	}
	return vx, vy
}

// bisect narrows the segment from a wet point to a dry point. It returns the
// last wet sample and the first dry sample.
func (m *monthRun) bisect(x0, y0, x1, y1 float64) (wx, wy, hx, hy float64) {
	lo, hi := 0.0, 1.0
	for i := 0; i < m.phys.OceanBisectIterations; i++ {
		mid := (lo + hi) / 2
		if m.field.Environment(x0+(x1-x0)*mid, y0+(y1-y0)*mid).Dist > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return x0 + (x1-x0)*lo, y0 + (y1-y0)*lo, x0 + (x1-x0)*hi, y0 + (y1-y0)*hi
}

// escape moves an agent that is already inside the wall back toward open
// water along the negative gradient. The step is the Newton estimate of the
// distance to the zero contour, capped at one substep's travel.
func (m *monthRun) escape(a *agent, env Env) bool {
	nx, ny, gradLen := env.Normal()
	if gradLen <= m.phys.OceanMinGradient {
		return false
	}
	push := math.Min(env.Dist/gradLen+m.phys.OceanPushOut, m.maxSpeed*m.dt+m.phys.OceanPushOut)
	a.x -= nx * push
	a.y -= ny * push
	return true
}

// safeSpawnX walks west from an impact until the water is deep enough to seed
// counter currents.
func (m *monthRun) safeSpawnX(startX, y float64) float64 {
	x := startX
	for i := 0; i < m.phys.OceanSafeSpawnSearch; i++ {
		if m.field.Environment(x, y).Dist < m.phys.OceanSafeSpawnDepthKm {
			return x - m.phys.OceanSpawnOffset
		}
		x--
	}
	return startX - (m.phys.OceanSpawnOffset + m.phys.OceanSafeSpawnFallback)
}

func (m *monthRun) polarExit(a *agent, limit float64) bool {
	if math.Abs(m.g.LatOfRow(a.y)) > limit {
		m.terminate(a, core.StateDead, CausePolarExit)
		return true
	}
	return false
}

func (m *monthRun) checkZeroSpeed(a *agent) {
	if a.alive() && a.speed() < m.phys.OceanZeroSpeedEps {
		m.terminate(a, core.StateDead, CauseZeroSpeed)
	}
}
