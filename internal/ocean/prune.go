package ocean

import "math"

// flowGrid remembers the first velocity recorded in each grid cell so that
// agents following an already traced path can be retired.
type flowGrid struct {
	rows, cols int
	similarity float64
	seen       []bool
	u, v       []float64
}

func newFlowGrid(rows, cols int, similarity float64) *flowGrid {
	n := rows * cols
	return &flowGrid{
		rows:       rows,
		cols:       cols,
		similarity: similarity,
		seen:       make([]bool, n),
		u:          make([]float64, n),
		v:          make([]float64, n),
	}
}

func (f *flowGrid) cell(x, y float64) int {
	c := int(math.Floor(x + 0.5))
	r := int(math.Floor(y + 0.5))
	c = ((c % f.cols) + f.cols) % f.cols
	r = min(max(r, 0), f.rows-1)
	return r*f.cols + c
}

// visit reports whether the cell at (x, y) already carries a flow whose
// direction matches (vx, vy). The first visitor claims the cell.
func (f *flowGrid) visit(x, y, vx, vy float64) bool {
	i := f.cell(x, y)
	if !f.seen[i] {
		f.seen[i] = true
		f.u[i], f.v[i] = vx, vy
		return false
	}
	l1 := math.Hypot(f.u[i], f.v[i])
	l2 := math.Hypot(vx, vy)
	cos := (f.u[i]*vx + f.v[i]*vy) / (l1*l2 + 0.0001)
	return cos > f.similarity
}
