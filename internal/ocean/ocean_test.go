package ocean

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteain-ninia/ExoClim/internal/geography"
	"github.com/asteain-ninia/ExoClim/internal/itcz"
	"github.com/asteain-ninia/ExoClim/internal/terrain"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

type flatOcean struct{}

func (flatOcean) Mask(rows, cols int) (core.Mask, error) {
	m := core.Mask{Elevation: make([]float64, rows*cols), IsLand: make([]bool, rows*cols)}
	for i := range m.Elevation {
		m.Elevation[i] = -4000
	}
	return m, nil
}

func prepare(t *testing.T, rows, cols int, src geography.MaskSource) (*core.Grid, core.ITCZResult) {
	t.Helper()
	g, err := geography.BuildGrid(rows, cols, src)
	require.NoError(t, err)
	res, err := itcz.Solve(g, core.EarthParams(), core.EarthAtmosphere(), core.DefaultPhysicsParams())
	require.NoError(t, err)
	return g, res
}

func TestCompute_FlatOcean(t *testing.T) {
	for _, cols := range []int{72, 128} {
		g, lines := prepare(t, 36, cols, flatOcean{})
		phys := core.DefaultPhysicsParams()

		res, err := Compute(context.Background(), g, lines.Lines, phys, Options{})
		require.NoError(t, err)

		interval := max(1, cols/phys.OceanSpawnColumnsDiv)
		require.Len(t, res.Stats, 2)
		for _, st := range res.Stats {
			assert.Equal(t, cols/interval, st.EccSpawned, "cols %d month %d", cols, st.Month)
			assert.Zero(t, st.EcSpawned)
			assert.Zero(t, st.Impacts)
			for cause := range st.Terminations {
				assert.Equal(t, CausePruned, cause, "open water only retires merged agents")
			}
		}
		for m := 0; m < core.Months; m++ {
			assert.NotNil(t, res.Streamlines[m])
			assert.Empty(t, res.Impacts[m])
		}
		assert.Empty(t, res.Diagnostics)

		for _, m := range DefaultMonths {
			require.NotEmpty(t, res.Streamlines[m])
			for _, sl := range res.Streamlines[m] {
				assert.Equal(t, core.StreamlineMain, sl.Kind)
				assert.Equal(t, phys.OceanStrength, sl.Strength)
				assert.GreaterOrEqual(t, len(sl.Points), phys.OceanMinLinePoints)
				for i, p := range sl.Points {
					assert.InDelta(t, lines.Lines[m][0], p.Lat, 1e-9, "agents ride the ITCZ")
					assert.GreaterOrEqual(t, p.Lon, -180.0)
					assert.Less(t, p.Lon, 180.0)
					if i > 0 {
						assert.Greater(t, p.X, sl.Points[i-1].X, "counter current flows east")
					}
				}
			}
		}
	}
}

func TestCompute_VirtualContinent(t *testing.T) {
	g, lines := prepare(t, 45, 90, terrain.VirtualContinent{})
	phys := core.DefaultPhysicsParams()
	rec := &FrameRecorder{}

	res, err := Compute(context.Background(), g, lines.Lines, phys, Options{Observer: rec})
	require.NoError(t, err)

	owner, ok := g.Owner(core.FieldCollisionMask)
	require.True(t, ok)
	assert.Equal(t, core.StageOcean, owner)

	field := NewCollisionField(g, phys)
	eccImpacts := 0
	for _, st := range res.Stats {
		ecc := 0
		for _, imp := range res.Impacts[st.Month] {
			assert.Greater(t, field.Environment(imp.X, imp.Y).Dist, 0.0, "impacts lie past the wall")
			if imp.Kind == core.ImpactECC {
				ecc++
			}
		}
		assert.Equal(t, 2*ecc, st.EcSpawned, "every ECC impact seeds one EC pair")
		eccImpacts += ecc

		for _, sl := range res.Streamlines[st.Month] {
			assert.GreaterOrEqual(t, len(sl.Points), phys.OceanMinLinePoints)
			for _, p := range sl.Points {
				assert.LessOrEqual(t, math.Abs(p.Lat), 90.0)
			}
		}
	}
	assert.Positive(t, eccImpacts)

	for _, d := range res.Diagnostics {
		assert.Contains(t, []core.DiagnosticKind{core.DiagEcInfantDeath, core.DiagEccStuck}, d.Kind)
	}

	// no agent moves further in one macro-step than its speed cap and the
	// wall push-outs allow
	bound := phys.OceanBaseSpeed*phys.OceanMaxSpeedMult*phys.OceanMacroDT +
		float64(phys.OceanSubSteps)*phys.OceanPushOut + 1e-9
	for _, m := range DefaultMonths {
		frames := rec.Frames(m)
		require.NotEmpty(t, frames)
		for i := 1; i < len(frames); i++ {
			prev, cur := frames[i-1], frames[i]
			if prev.Phase != cur.Phase {
				continue
			}
			require.Len(t, cur.Agents, len(prev.Agents))
			for j := range cur.Agents {
				a, b := prev.Agents[j], cur.Agents[j]
				require.Equal(t, a.ID, b.ID)
				assert.LessOrEqual(t, math.Hypot(b.X-a.X, b.Y-a.Y), bound, "agent %d", a.ID)
				if a.State.Terminal() {
					assert.Equal(t, a.State, b.State, "terminal states are final")
				}
			}
		}
	}
}

func TestCompute_DebugMonth(t *testing.T) {
	g, lines := prepare(t, 19, 36, flatOcean{})
	phys := core.DefaultPhysicsParams()
	phys.OceanStreamlineSteps = 40
	month := 6

	var observed int
	res, err := Compute(context.Background(), g, lines.Lines, phys, Options{
		DebugMonth: &month,
		Observer:   ObserverFunc(func(int, core.DebugFrame) { observed++ }),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Debug)

	assert.Equal(t, month, res.Debug.Month)
	assert.Len(t, res.Debug.Frames, phys.OceanStreamlineSteps, "debug months run the full timeline")
	assert.Equal(t, phys.OceanStreamlineSteps, observed)
	assert.Len(t, res.Debug.CollisionField, g.Rows*g.Cols)
	assert.Equal(t, g.Cols, res.Debug.Width)
	assert.Equal(t, g.Rows, res.Debug.Height)
	assert.Equal(t, lines.Lines[month], res.Debug.ITCZLine)

	for i, f := range res.Debug.Frames {
		assert.Equal(t, i, f.Step)
		assert.Equal(t, PhaseCounterCurrent, f.Phase)
	}
	require.Len(t, res.Stats, 1)
	assert.Empty(t, res.Streamlines[0])
	assert.NotEmpty(t, res.Streamlines[month])
}

func TestCompute_RejectsBadInput(t *testing.T) {
	g, lines := prepare(t, 19, 36, flatOcean{})
	phys := core.DefaultPhysicsParams()

	_, err := Compute(context.Background(), g, lines.Lines, phys, Options{Months: []int{12}})
	assert.True(t, errors.Is(err, core.ErrMonthOutOfRange))

	bad := -1
	_, err = Compute(context.Background(), g, lines.Lines, phys, Options{DebugMonth: &bad})
	assert.True(t, errors.Is(err, core.ErrMonthOutOfRange))

	short := lines.Lines
	short[0] = short[0][:3]
	_, err = Compute(context.Background(), g, short, phys, Options{})
	assert.True(t, errors.Is(err, core.ErrDegenerateGrid))

	phys.OceanSubSteps = 0
	_, err = Compute(context.Background(), g, lines.Lines, phys, Options{})
	assert.True(t, errors.Is(err, core.ErrInvalidParams))
}

func TestCompute_Cancelled(t *testing.T) {
	g, lines := prepare(t, 19, 36, flatOcean{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compute(ctx, g, lines.Lines, core.DefaultPhysicsParams(), Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCompute_ITCZOffGridSpawnsNothing(t *testing.T) {
	g, lines := prepare(t, 19, 36, flatOcean{})
	for c := range lines.Lines[0] {
		lines.Lines[0][c] = 95
	}
	res, err := Compute(context.Background(), g, lines.Lines, core.DefaultPhysicsParams(), Options{Months: []int{0}})
	require.NoError(t, err)
	require.Len(t, res.Stats, 1)
	assert.Zero(t, res.Stats[0].EccSpawned)
	assert.Empty(t, res.Streamlines[0])
}

func TestCompute_EcLatGapOverride(t *testing.T) {
	g, lines := prepare(t, 45, 90, terrain.VirtualContinent{})
	phys := core.DefaultPhysicsParams()
	month := 0
	res, err := Compute(context.Background(), g, lines.Lines, phys, Options{DebugMonth: &month, EcLatGap: 12})
	require.NoError(t, err)
	require.NotNil(t, res.Debug)
	assert.Equal(t, 12.0, res.EcLatGapDeg)

	for _, sl := range res.Streamlines[month] {
		if sl.Kind == core.StreamlineMain {
			continue
		}
		// equatorial agents start poleward of their spawn and never run off the map
		for _, p := range sl.Points {
			assert.LessOrEqual(t, math.Abs(p.Lat), phys.OceanEcPolarExitLat+1)
		}
	}

	res, err = Compute(context.Background(), g, lines.Lines, phys, Options{Months: []int{month}})
	require.NoError(t, err)
	assert.Equal(t, phys.OceanEcLatGap, res.EcLatGapDeg, "no override keeps the physics gap")
}

// meanLat averages the latitude of every point on streamlines of kind.
func meanLat(lines []core.Streamline, kind core.StreamlineKind) (float64, int) {
	var sum float64
	var n int
	for _, sl := range lines {
		if sl.Kind != kind {
			continue
		}
		for _, p := range sl.Points {
			sum += p.Lat
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func TestCompute_EcLatGapMovesSplitLines(t *testing.T) {
	g, lines := prepare(t, 45, 90, terrain.VirtualContinent{})
	phys := core.DefaultPhysicsParams()
	opts := func(gap float64) Options { return Options{Months: []int{0}, EcLatGap: gap} }

	narrow, err := Compute(context.Background(), g, lines.Lines, phys, opts(4))
	require.NoError(t, err)
	wide, err := Compute(context.Background(), g, lines.Lines, phys, opts(14))
	require.NoError(t, err)

	assert.Equal(t, narrow.Stats[0].EcSpawned, wide.Stats[0].EcSpawned, "the gap does not change the counter currents")
	require.Positive(t, narrow.Stats[0].EcSpawned)

	nNarrow, cnt := meanLat(narrow.Streamlines[0], core.StreamlineSplitN)
	require.Positive(t, cnt)
	nWide, cnt := meanLat(wide.Streamlines[0], core.StreamlineSplitN)
	require.Positive(t, cnt)
	assert.Greater(t, nWide, nNarrow, "a wider gap pushes the northern split line poleward")

	sNarrow, cntN := meanLat(narrow.Streamlines[0], core.StreamlineSplitS)
	sWide, cntW := meanLat(wide.Streamlines[0], core.StreamlineSplitS)
	if cntN > 0 && cntW > 0 {
		assert.Less(t, sWide, sNarrow, "a wider gap pushes the southern split line poleward")
	}
}

func TestTargetLat_UsesGap(t *testing.T) {
	g, _ := prepare(t, 19, 36, flatOcean{})
	phys := core.DefaultPhysicsParams()
	itczLine := make([]float64, g.Cols)
	for c := range itczLine {
		itczLine[c] = 3
	}
	e := &engine{g: g, field: NewCollisionField(g, phys), phys: phys, gap: 12}
	m := e.newMonth(0, itczLine)

	north := m.newAgent(core.AgentECNorth, 5, 9, 0, 0)
	south := m.newAgent(core.AgentECSouth, 5, 9, 0, 0)
	assert.Equal(t, 15.0, m.targetLat(north))
	assert.Equal(t, -9.0, m.targetLat(south))
}

// uniformField is a wet field with the same coast distance and gradient
// everywhere.
func uniformField(rows, cols int, dist, gx, gy float64) *CollisionField {
	n := rows * cols
	f := &CollisionField{
		Rows:   rows,
		Cols:   cols,
		Values: make([]float64, n),
		GradX:  make([]float64, n),
		GradY:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		f.Values[i], f.GradX[i], f.GradY[i] = dist, gx, gy
	}
	return f
}

func TestStepEquatorial_CrawlsThenDrifts(t *testing.T) {
	g, err := geography.BuildGrid(91, 180, flatOcean{})
	require.NoError(t, err)
	phys := core.DefaultPhysicsParams()
	rec := &FrameRecorder{}

	// inside coast-sense range with land to the east: a blocked agent far
	// from its target latitude crawls
	e := &engine{
		g:        g,
		field:    uniformField(g.Rows, g.Cols, phys.OceanCoastSenseKm/2, 0.5, 0),
		phys:     phys,
		gap:      phys.OceanEcLatGap,
		dt:       phys.OceanMacroDT / float64(phys.OceanSubSteps),
		maxSpeed: phys.OceanBaseSpeed * phys.OceanMaxSpeedMult,
		observer: rec,
	}
	m := e.newMonth(0, make([]float64, g.Cols))
	v := phys.OceanBaseSpeed * phys.OceanSpawnSpeedMult
	a := m.newAgent(core.AgentECNorth, 90, g.RowOfLat(0), 0, -v)

	require.NoError(t, m.runPhase(context.Background(), PhaseEquatorial, []*agent{a}, m.stepEquatorial))

	frames := rec.Frames(0)
	require.NotEmpty(t, frames)
	assert.Equal(t, core.StateCrawling, frames[0].Agents[0].State, "spawned on the equator, 7.5 degrees off target")

	exit := -1
	for i, f := range frames {
		if f.Agents[0].State == core.StateActive {
			exit = i
			break
		}
		require.Equal(t, core.StateCrawling, f.Agents[0].State, "frame %d", i)
	}
	require.Positive(t, exit, "the agent leaves the coast once near its target")
	for i := 1; i < exit; i++ {
		assert.Less(t, frames[i].Agents[0].Y, frames[i-1].Agents[0].Y, "crawling runs north toward the target")
	}

	var last core.AgentSnapshot
	for _, f := range frames[exit:] {
		assert.NotEqual(t, core.StateCrawling, f.Agents[0].State, "settled agents stay off the coast")
		if f.Agents[0].State == core.StateActive {
			last = f.Agents[0]
		}
	}
	assert.InDelta(t, phys.OceanEcLatGap, g.LatOfRow(last.Y), 0.5)
	assert.Less(t, last.X, 90.0, "drifting agents run west")
}

func TestCompute_ProceduralCoastsCrawl(t *testing.T) {
	if testing.Short() {
		t.Skip("full-size procedural run")
	}
	src, err := terrain.FromName("procedural", 1)
	require.NoError(t, err)
	g, lines := prepare(t, 90, 180, src)
	rec := &FrameRecorder{}

	_, err = Compute(context.Background(), g, lines.Lines, core.DefaultPhysicsParams(), Options{Observer: rec})
	require.NoError(t, err)

	crawling := 0
	for _, m := range DefaultMonths {
		for _, f := range rec.Frames(m) {
			for _, a := range f.Agents {
				if a.State == core.StateCrawling {
					assert.Equal(t, PhaseEquatorial, f.Phase)
					assert.NotEqual(t, core.AgentECC, a.Kind)
					crawling++
				}
			}
		}
	}
	assert.Positive(t, crawling)
}

func TestCompute_SlowWaterStagnates(t *testing.T) {
	g, lines := prepare(t, 19, 36, flatOcean{})
	phys := core.DefaultPhysicsParams()
	// below the stagnation distance per macro-step even at full speed
	phys.OceanBaseSpeed = 0.004
	phys.OceanPruneMinPoints = phys.OceanStreamlineSteps
	rec := &FrameRecorder{}

	res, err := Compute(context.Background(), g, lines.Lines, phys, Options{Months: []int{0}, Observer: rec})
	require.NoError(t, err)

	require.Len(t, res.Stats, 1)
	st := res.Stats[0]
	require.Positive(t, st.EccSpawned)
	assert.Equal(t, map[string]int{CauseStagnation: st.EccSpawned}, st.Terminations)
	assert.Zero(t, st.EcSpawned)

	require.Len(t, res.Diagnostics, st.EccSpawned)
	for _, d := range res.Diagnostics {
		assert.Equal(t, core.DiagEccStuck, d.Kind)
		assert.Equal(t, msgEccStagnated, d.Message)
		assert.Equal(t, phys.OceanEccStagnation, d.Age)
		assert.Equal(t, 0, d.Month)
	}

	frames := rec.Frames(0)
	require.Len(t, frames, phys.OceanEccStagnation+1)
	for _, a := range frames[len(frames)-2].Agents {
		assert.Equal(t, core.StateActive, a.State)
	}
	for _, a := range frames[len(frames)-1].Agents {
		assert.Equal(t, core.StateStuck, a.State)
		assert.Equal(t, CauseStagnation, a.Cause)
	}
}

func TestTerminate_EcInfantDeath(t *testing.T) {
	g, lines := prepare(t, 19, 36, flatOcean{})
	phys := core.DefaultPhysicsParams()
	e := &engine{g: g, field: NewCollisionField(g, phys), phys: phys}
	m := e.newMonth(0, lines.Lines[0])

	young := m.newAgent(core.AgentECNorth, 3, 9, 0, -1)
	m.terminate(young, core.StateDead, CausePolarExit)
	require.Len(t, m.diags, 1)
	assert.Equal(t, core.DiagEcInfantDeath, m.diags[0].Kind)
	assert.Equal(t, msgEcSpawnDeath, m.diags[0].Message)

	arrived := m.newAgent(core.AgentECSouth, 3, 9, 0, 1)
	m.terminate(arrived, core.StateDead, CauseArrival)
	assert.Len(t, m.diags, 1, "arrivals report their own diagnostic")

	ecc := m.newAgent(core.AgentECC, 3, 9, 1, 0)
	m.terminate(ecc, core.StateDead, CausePolarExit)
	assert.Len(t, m.diags, 1)

	assert.Equal(t, 2, m.stats.Terminations[CausePolarExit])
	assert.Equal(t, []int{0, 1, 2}, []int{young.id, arrived.id, ecc.id})
}

func TestEscape_IsBounded(t *testing.T) {
	g, lines := prepare(t, 45, 90, terrain.VirtualContinent{})
	phys := core.DefaultPhysicsParams()
	e := &engine{
		g:        g,
		field:    NewCollisionField(g, phys),
		phys:     phys,
		dt:       phys.OceanMacroDT / float64(phys.OceanSubSteps),
		maxSpeed: phys.OceanBaseSpeed * phys.OceanMaxSpeedMult,
	}
	m := e.newMonth(0, lines.Lines[0])
	limit := e.maxSpeed*e.dt + phys.OceanPushOut + 1e-9

	moved := 0
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			env := e.field.Environment(float64(c), float64(r))
			if env.Dist <= 0 {
				continue
			}
			a := m.newAgent(core.AgentECC, float64(c), float64(r), 0, 0)
			if !m.escape(a, env) {
				continue
			}
			moved++
			assert.LessOrEqual(t, math.Hypot(a.x-float64(c), a.y-float64(r)), limit)
		}
	}
	assert.Positive(t, moved)
}
