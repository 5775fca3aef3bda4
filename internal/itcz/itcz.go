// Package itcz locates the Intertropical Convergence Zone for every month and
// longitude from the land/sea distribution and the planet's orbital inertia.
package itcz

import (
	"fmt"
	"math"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Hemisphere selects which summer extreme to solve.
type Hemisphere int

const (
	North Hemisphere = iota
	South
)

// Coefficients are the planet-level constants of one solve.
type Coefficients struct {
	CellCount      int
	HadleyWidthDeg float64
	Inertia        float64 // M, clamped
	KSea           float64
	KLand          float64
	KernelDeg      float64
	KernelCols     int
}

// CellCount estimates the number of circulation cells per hemisphere from the
// planet radius and rotation period relative to the reference planet.
func CellCount(planet core.PlanetParams, phys core.PhysicsParams) (int, float64) {
	radiusRatio := planet.RadiusKm / phys.CellRefRadiusKm
	rotRatio := phys.CellRefRotationHours / planet.RotationPeriodHours
	est := phys.CellRefCount * radiusRatio * math.Sqrt(rotRatio)

	n := int(math.Round(est))
	if math.IsNaN(est) || n < 1 {
		n = 1
	}
	if phys.CellMaxCount > 0 && n > phys.CellMaxCount {
		n = phys.CellMaxCount
	}
	return n, 90 / float64(n)
}

// NewCoefficients derives the planet constants used by the column solve.
func NewCoefficients(cols int, planet core.PlanetParams, atm core.AtmosphereParams, phys core.PhysicsParams) Coefficients {
	n, hadley := CellCount(planet, phys)

	pAtm := atm.SurfacePressureBar * 1000
	term1 := math.Pow(planet.OrbitalPeriodHours/phys.ItczRefYearHours, phys.ItczInertiaExp)
	term2 := math.Pow(phys.ItczRefPressureHPa/pAtm, phys.ItczInertiaExp)
	m := clamp(term1*term2, phys.ItczInertiaMin, phys.ItczInertiaMax)

	kernel := math.Min(phys.ItczKernelAngleDeg*(planet.RotationPeriodHours/phys.ItczRefDayHours), phys.ItczKernelMaxDeg)
	kernelCols := int(math.Ceil(kernel / (360 / float64(cols))))

	return Coefficients{
		CellCount:      n,
		HadleyWidthDeg: hadley,
		Inertia:        m,
		KSea:           math.Min(phys.ItczBaseSeaRatio*m, phys.ItczSeaRatioCap),
		KLand:          math.Min(phys.ItczBaseLandRatio*m, phys.ItczLandRatioCap),
		KernelDeg:      kernel,
		KernelCols:     max(0, kernelCols),
	}
}

// HeatMap is the per-cell heat potential: the coast distance normalised to
// [-1, 1] by the saturation distance, reduced on high land.
func HeatMap(g *core.Grid, phys core.PhysicsParams) []float64 {
	out := make([]float64, g.Len())
	for i := range g.Cells {
		cell := &g.Cells[i]
		sDist := clamp(cell.DistCoast/phys.ItczSaturationDistKm, -1, 1)
		pAlt := 1.0
		if cell.IsLand {
			pAlt = math.Max(0, 1-(cell.Elevation/1000)/phys.ItczAltitudeLimitKm)
		}
		out[i] = sDist * pAlt
	}
	return out
}

// Solve writes the heat map onto the grid and returns the monthly ITCZ lines.
func Solve(g *core.Grid, planet core.PlanetParams, atm core.AtmosphereParams, phys core.PhysicsParams) (core.ITCZResult, error) {
	if err := g.Validate(); err != nil {
		return core.ITCZResult{}, err
	}
	heat := HeatMap(g, phys)
	if err := g.ApplyHeatMap(core.StageITCZ, heat); err != nil {
		return core.ITCZResult{}, fmt.Errorf("failed to write heat map: %w", err)
	}

	coef := NewCoefficients(g.Cols, planet, atm, phys)
	north := solveHemisphere(g, heat, planet.ObliquityDeg, coef, North)
	south := solveHemisphere(g, heat, planet.ObliquityDeg, coef, South)

	res := core.ITCZResult{
		NorthPeak:      north,
		SouthPeak:      south,
		CellCount:      coef.CellCount,
		HadleyWidthDeg: coef.HadleyWidthDeg,
	}
	for m := 0; m < core.Months; m++ {
		t := SeasonalPhase(m)
		line := make([]float64, g.Cols)
		for c := range line {
			line[c] = south[c]*(1-t) + north[c]*t
		}
		res.Lines[m] = line
	}
	// month 0 and 6 are the exact extremes
	copy(res.Lines[0], south)
	copy(res.Lines[6], north)
	return res, nil
}

// SolveHemisphere returns the summer-extreme ITCZ latitude of every column for
// one hemisphere without touching the grid.
func SolveHemisphere(g *core.Grid, planet core.PlanetParams, atm core.AtmosphereParams, phys core.PhysicsParams, h Hemisphere) ([]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	coef := NewCoefficients(g.Cols, planet, atm, phys)
	return solveHemisphere(g, HeatMap(g, phys), planet.ObliquityDeg, coef, h), nil
}

// SeasonalPhase maps a month to the blend weight of the northern extreme:
// 0 in month 0, 1 in month 6.
func SeasonalPhase(month int) float64 {
	phase := -math.Cos(float64(month) * math.Pi / 6)
	return (phase + 1) / 2
}

func solveHemisphere(g *core.Grid, heat []float64, obliquity float64, coef Coefficients, h Hemisphere) []float64 {
	out := make([]float64, g.Cols)
	for c := range out {
		shift := columnShift(g, heat, obliquity, coef, c, h)
		if h == South {
			shift = -shift
		}
		out[c] = shift
	}
	return out
}

// columnShift blurs the heat map over the tropical rows of one hemisphere and
// a longitude window around c, then maps the effective land ratio to a shift.
func columnShift(g *core.Grid, heat []float64, obliquity float64, coef Coefficients, c int, h Hemisphere) float64 {
	var weighted, weights float64
	for r := 0; r < g.Rows; r++ {
		lat := g.LatOfRow(float64(r))
		if h == North && (lat < 0 || lat > obliquity) {
			continue
		}
		if h == South && (lat > 0 || lat < -obliquity) {
			continue
		}
		w := math.Cos(lat * math.Pi / 180)
		for dc := -coef.KernelCols; dc <= coef.KernelCols; dc++ {
			weighted += heat[g.Index(c+dc, r)] * w
			weights += w
		}
	}
	if weights == 0 {
		return 0
	}

	lEff := weighted / weights
	t := (lEff + 1) / 2
	ratio := (1-t)*coef.KSea + t*coef.KLand
	return obliquity * ratio
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
