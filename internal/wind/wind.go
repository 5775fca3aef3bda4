// Package wind derives the zonal circulation belts, surface pressure and
// convergence wind for every month from the ITCZ position.
package wind

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// ModelLevel names the wind model implemented here.
const ModelLevel = "trade"

// minHadleyEdgeDeg keeps a scaled Hadley edge away from the equator.
const minHadleyEdgeDeg = 0.5

// Boundaries returns the poleward edge of every circulation cell, strictly
// increasing and ending at exactly 90. clamps lists any adjustment made to
// keep that guarantee.
func Boundaries(cellCount int, hadleyWidthDeg float64, phys core.PhysicsParams) (bounds []float64, clamps []string) {
	edge := hadleyWidthDeg * phys.WindHadleyWidthScale
	switch {
	case math.IsNaN(edge) || edge < minHadleyEdgeDeg:
		clamps = append(clamps, fmt.Sprintf("hadley edge %.3f raised to %.1f", edge, minHadleyEdgeDeg))
		edge = minHadleyEdgeDeg
	case edge >= 90:
		clamps = append(clamps, fmt.Sprintf("hadley edge %.3f reaches the pole; single cell", edge))
		return []float64{90}, clamps
	}

	bounds = []float64{edge}
	if cellCount > 1 {
		remaining := 90 - edge
		n := cellCount - 1
		weights := make([]float64, n)
		for i := range weights {
			weights[i] = math.Pow(float64(i+1), phys.WindJetSpacingExp)
		}
		total := floats.Sum(weights)

		lat := edge
		for _, w := range weights[:n-1] {
			lat += w / total * remaining
			bounds = append(bounds, lat)
		}
	}
	return append(bounds, 90), clamps
}

// BeltIndex returns the index of the circulation cell containing |lat|.
func BeltIndex(bounds []float64, lat float64) int {
	latAbs := math.Abs(lat)
	idx := 0
	for idx < len(bounds)-1 && latAbs > bounds[idx] {
		idx++
	}
	return idx
}

// TradePeakOffset is the distance from the ITCZ at which the trades peak.
func TradePeakOffset(hadleyEdgeDeg float64, phys core.PhysicsParams) float64 {
	if phys.WindTradePeakOffsetMode == core.TradePeakHadleyFrac {
		return hadleyEdgeDeg * phys.WindTradePeakOffsetFrac
	}
	return phys.WindTradePeakOffsetDeg
}

// OceanEcGap is the latitude gap between the ITCZ and the counter-current
// target latitude.
func OceanEcGap(tradeOffset float64, phys core.PhysicsParams) float64 {
	if phys.WindOceanEcGapMode == core.EcGapDerived {
		return math.Min(phys.WindOceanEcGapClampMax, math.Max(phys.WindOceanEcGapClampMin, tradeOffset))
	}
	return phys.OceanEcLatGap
}

// model holds the month-independent constants of the belt model.
type model struct {
	bounds      []float64
	rotSign     float64
	rotFactor   float64
	tradeOffset float64
	phys        core.PhysicsParams
}

// Pressure returns the surface pressure at lat with the ITCZ at itczLat.
func (m *model) Pressure(lat, itczLat float64) float64 {
	p := m.phys
	d := math.Abs(lat - itczLat)
	pItcz := -p.WindPressureAnomalyMax * math.Exp(-sq(d/p.WindPressureBeltWidth))

	pBelts := 0.0
	for i, b := range m.bounds[:len(m.bounds)-1] {
		sign := 1.0
		if i%2 == 1 {
			sign = -1
		}
		bLat := b
		if lat < 0 {
			bLat = -b
		}
		pBelts += sign * p.WindPressureAnomalyMax * p.WindBeltPressureFactor * math.Exp(-sq((lat-bLat)/p.WindPressureBeltWidth))
	}
	return p.WindBasePressureHPa + pItcz + pBelts
}

// ZonalWind returns the east-west wind at lat with the ITCZ at itczLat.
func (m *model) ZonalWind(lat, itczLat float64) float64 {
	p := m.phys
	if math.Abs(lat) <= m.bounds[0] {
		x := math.Abs(lat-itczLat) / math.Max(p.WindTradeMinOffsetDeg, m.tradeOffset)
		trade := p.WindBaseSpeedEasterly * x * math.Exp(1-x)
		return -math.Min(trade, p.WindTropicalUCap) * m.rotSign
	}

	if BeltIndex(m.bounds, lat)%2 == 1 {
		return p.WindBaseSpeedWesterly * m.rotFactor * m.rotSign
	}
	return -p.WindBaseSpeedEasterly * m.rotFactor * m.rotSign
}

// MeridionalWind returns the convergence wind toward the ITCZ.
func (m *model) MeridionalWind(lat, itczLat float64) float64 {
	p := m.phys
	d := lat - itczLat
	if math.Abs(d) >= p.WindItczConvergenceWidth {
		return 0
	}
	return -math.Sin(d/p.WindItczConvergenceWidth*math.Pi) * p.WindItczConvergenceSpeed
}

// ComputeBelts fills wind and pressure for all months and returns the belt
// description.
func ComputeBelts(g *core.Grid, res core.ITCZResult, planet core.PlanetParams, phys core.PhysicsParams) (core.WindBeltsResult, error) {
	if err := g.Validate(); err != nil {
		return core.WindBeltsResult{}, err
	}
	for m, line := range res.Lines {
		if len(line) != g.Cols {
			return core.WindBeltsResult{}, fmt.Errorf("%w: itcz line %d has %d columns, grid has %d",
				core.ErrDegenerateGrid, m, len(line), g.Cols)
		}
	}

	bounds, clamps := Boundaries(res.CellCount, res.HadleyWidthDeg, phys)
	rotSign := 1.0
	if planet.Retrograde {
		rotSign = -1
	}
	wm := &model{
		bounds:      bounds,
		rotSign:     rotSign,
		rotFactor:   math.Pow(phys.CellRefRotationHours/planet.RotationPeriodHours, phys.WindSpeedRotationExp),
		tradeOffset: TradePeakOffset(bounds[0], phys),
		phys:        phys,
	}

	n := g.Len()
	u, v, p := make([]float64, n), make([]float64, n), make([]float64, n)
	for m := 0; m < core.Months; m++ {
		itczLine := res.Lines[m]
		for r := 0; r < g.Rows; r++ {
			lat := g.LatOfRow(float64(r))
			for c := 0; c < g.Cols; c++ {
				i := r*g.Cols + c
				u[i] = wm.ZonalWind(lat, itczLine[c])
				v[i] = wm.MeridionalWind(lat, itczLine[c])
				p[i] = wm.Pressure(lat, itczLine[c])
			}
		}
		if err := g.ApplyWindMonth(core.StageWind, m, u, v, p); err != nil {
			return core.WindBeltsResult{}, err
		}
	}

	return core.WindBeltsResult{
		HadleyEdgeDeg:        bounds[0],
		CellBoundariesDeg:    bounds,
		DoldrumsHalfWidthDeg: phys.WindDoldrumsWidthDeg,
		TradePeakOffsetDeg:   wm.tradeOffset,
		OceanEcLatGapDerived: OceanEcGap(wm.tradeOffset, phys),
		ModelLevel:           ModelLevel,
		ClampInfo:            clamps,
		ParamsUsed: map[string]any{
			"rotationSign":       rotSign,
			"cellCount":          res.CellCount,
			"hadleyWidth":        bounds[0],
			"derivedTradeOffset": wm.tradeOffset,
		},
	}, nil
}

func sq(x float64) float64 { return x * x }
