package ocean

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// CollisionField is the smoothed wall field agents collide with. Values are
// positive inside land (or too close to a coast) and negative in open ocean.
// The gradient points toward land.
type CollisionField struct {
	Rows   int
	Cols   int
	Values []float64
	GradX  []float64
	GradY  []float64
}

// Env is the interpolated field sample at a continuous grid position.
type Env struct {
	Dist float64
	GX   float64
	GY   float64
}

// NewCollisionField builds the wall field from the grid's coast distance.
func NewCollisionField(g *core.Grid, phys core.PhysicsParams) *CollisionField {
	f := &CollisionField{
		Rows:   g.Rows,
		Cols:   g.Cols,
		Values: RawField(g, phys.OceanCollisionBufferKm),
	}
	for i := 0; i < phys.OceanSmoothing; i++ {
		f.Values = Smooth(f.Values, f.Rows, f.Cols)
	}
	f.computeGradient()
	return f
}

// RawField offsets every coast distance by bufferKm. Infinite distances are
// saturated so the field stays finite on grids without a coast.
func RawField(g *core.Grid, bufferKm float64) []float64 {
	limit := (float64(g.Rows) + float64(g.Cols)/2) * g.KmPerUnit()
	out := make([]float64, g.Len())
	for i := range g.Cells {
		d := g.Cells[i].DistCoast
		switch {
		case math.IsInf(d, 1):
			d = limit
		case math.IsInf(d, -1):
			d = -limit
		case math.IsNaN(d):
			d = 0
		}
		out[i] = d + bufferKm
	}
	return out
}

// Smooth applies one 3x3 box blur, wrapping columns and clamping rows.
func Smooth(field []float64, rows, cols int) []float64 {
	out := make([]float64, len(field))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sum := 0.0
			for dr := -1; dr <= 1; dr++ {
				nr := min(max(r+dr, 0), rows-1)
				for dc := -1; dc <= 1; dc++ {
					nc := ((c+dc)%cols + cols) % cols
					sum += field[nr*cols+nc]
				}
			}
			out[r*cols+c] = sum / 9
		}
	}
	return out
}

// MaxAdjacentDiff is the largest absolute difference between horizontally
// (wrapped) or vertically adjacent cells.
func MaxAdjacentDiff(field []float64, rows, cols int) float64 {
	diffs := make([]float64, 0, 2*len(field))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := field[r*cols+c]
			diffs = append(diffs, math.Abs(field[r*cols+(c+1)%cols]-v))
			if r+1 < rows {
				diffs = append(diffs, math.Abs(field[(r+1)*cols+c]-v))
			}
		}
	}
	if len(diffs) == 0 {
		return 0
	}
	return floats.Max(diffs)
}

func (f *CollisionField) index(c, r int) int {
	r = min(max(r, 0), f.Rows-1)
	c = ((c % f.Cols) + f.Cols) % f.Cols
	return r*f.Cols + c
}

// At returns the field value of a cell with wrap/clamp rules applied.
func (f *CollisionField) At(c, r int) float64 {
	return f.Values[f.index(c, r)]
}

func (f *CollisionField) computeGradient() {
	n := len(f.Values)
	f.GradX = make([]float64, n)
	f.GradY = make([]float64, n)
	for r := 0; r < f.Rows; r++ {
		for c := 0; c < f.Cols; c++ {
			i := r*f.Cols + c
			f.GradX[i] = (f.At(c+1, r) - f.At(c-1, r)) * 0.5
			f.GradY[i] = (f.At(c, r+1) - f.At(c, r-1)) * 0.5
		}
	}
}

// Environment bilinearly interpolates the field and its gradient at (x, y).
func (f *CollisionField) Environment(x, y float64) Env {
	c, r := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-float64(c), y-float64(r)

	i00 := f.index(c, r)
	i10 := f.index(c+1, r)
	i01 := f.index(c, r+1)
	i11 := f.index(c+1, r+1)
	lerp := func(v []float64) float64 {
		return v[i00]*(1-fx)*(1-fy) + v[i10]*fx*(1-fy) + v[i01]*(1-fx)*fy + v[i11]*fx*fy
	}
	return Env{Dist: lerp(f.Values), GX: lerp(f.GradX), GY: lerp(f.GradY)}
}

// Normal returns the unit gradient at e and its length. A zero-length
// gradient yields a zero normal.
func (e Env) Normal() (nx, ny, length float64) {
	length = math.Hypot(e.GX, e.GY)
	if length == 0 {
		return 0, 0, 0
	}
	return e.GX / length, e.GY / length, length
}

// Range returns the smallest and largest field values.
func (f *CollisionField) Range() (lo, hi float64) {
	if len(f.Values) == 0 {
		return 0, 0
	}
	return floats.Min(f.Values), floats.Max(f.Values)
}
