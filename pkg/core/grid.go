// pkg/core/grid.go
package core

import (
	"errors"
	"fmt"
	"math"
)

// Months is the length of every per-month cell array.
const Months = 12

// KmPerDegree converts one degree of latitude to kilometres.
const KmPerDegree = 111.1

var (
	ErrDegenerateGrid  = errors.New("degenerate grid")
	ErrMonthOutOfRange = errors.New("month out of range")
)

// Cell is one sample of the planet surface. Static fields are fixed at grid
// construction; derived fields are written by exactly one pipeline stage.
type Cell struct {
	Lat       float64
	Lon       float64
	Elevation float64
	IsLand    bool

	DistCoast     float64 // km; >0 on land, <0 on ocean, ±Inf when no coast exists
	HeatMapVal    float64
	CollisionMask float64

	WindU    [Months]float64
	WindV    [Months]float64
	Pressure [Months]float64 // hPa
}

// Mask is the static input a grid is built from, row-major with row 0 at the
// north pole.
type Mask struct {
	Elevation []float64
	IsLand    []bool
}

// Grid is a row-major lat/lon grid. Longitude wraps, latitude clamps.
type Grid struct {
	Rows  int
	Cols  int
	Cells []Cell

	owners map[Field]string
}

// NewGrid allocates a grid and fills the static cell fields from mask.
func NewGrid(rows, cols int, mask Mask) (*Grid, error) {
	if rows < 2 || cols < 1 {
		return nil, fmt.Errorf("%w: rows=%d cols=%d", ErrDegenerateGrid, rows, cols)
	}
	n := rows * cols
	if len(mask.Elevation) != n || len(mask.IsLand) != n {
		return nil, fmt.Errorf("%w: mask has %d/%d samples, want %d",
			ErrDegenerateGrid, len(mask.Elevation), len(mask.IsLand), n)
	}

	g := &Grid{
		Rows:   rows,
		Cols:   cols,
		Cells:  make([]Cell, n),
		owners: make(map[Field]string),
	}
	for r := 0; r < rows; r++ {
		lat := g.LatOfRow(float64(r))
		for c := 0; c < cols; c++ {
			i := r*cols + c
			cell := &g.Cells[i]
			cell.Lat = lat
			cell.Lon = g.LonOfCol(float64(c))
			cell.Elevation = mask.Elevation[i]
			cell.IsLand = mask.IsLand[i]
			for m := 0; m < Months; m++ {
				cell.Pressure[m] = StandardPressureHPa
			}
		}
	}
	return g, nil
}

// Validate checks the shape invariants every stage relies on.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrDegenerateGrid)
	}
	if g.Rows < 2 || g.Cols < 1 {
		return fmt.Errorf("%w: rows=%d cols=%d", ErrDegenerateGrid, g.Rows, g.Cols)
	}
	if len(g.Cells) != g.Rows*g.Cols {
		return fmt.Errorf("%w: %d cells for %dx%d", ErrDegenerateGrid, len(g.Cells), g.Rows, g.Cols)
	}
	return nil
}

// Len returns the number of cells.
func (g *Grid) Len() int { return g.Rows * g.Cols }

// WrapCol maps any column onto [0, Cols).
func (g *Grid) WrapCol(c int) int {
	return ((c % g.Cols) + g.Cols) % g.Cols
}

// ClampRow maps any row onto [0, Rows).
func (g *Grid) ClampRow(r int) int {
	if r < 0 {
		return 0
	}
	if r >= g.Rows {
		return g.Rows - 1
	}
	return r
}

// Index returns the cell index for a column/row pair, wrapping the column and
// clamping the row.
func (g *Grid) Index(c, r int) int {
	return g.ClampRow(r)*g.Cols + g.WrapCol(c)
}

// At returns the cell at column c, row r with the same wrap/clamp rules as Index.
func (g *Grid) At(c, r int) *Cell {
	return &g.Cells[g.Index(c, r)]
}

// LatStepDeg is the latitude spacing between rows.
func (g *Grid) LatStepDeg() float64 { return 180 / float64(max(1, g.Rows-1)) }

// LonStepDeg is the longitude spacing between columns.
func (g *Grid) LonStepDeg() float64 { return 360 / float64(g.Cols) }

// KmPerUnit is the length of one grid step along a meridian.
func (g *Grid) KmPerUnit() float64 { return g.LatStepDeg() * KmPerDegree }

// LatOfRow maps a fractional row to latitude.
func (g *Grid) LatOfRow(r float64) float64 {
	return 90 - r/float64(max(1, g.Rows-1))*180
}

// RowOfLat maps latitude to a fractional row.
func (g *Grid) RowOfLat(lat float64) float64 {
	return (90 - lat) / 180 * float64(max(1, g.Rows-1))
}

// LonOfCol maps a fractional column to longitude. The result is not wrapped.
func (g *Grid) LonOfCol(c float64) float64 {
	return -180 + c/float64(g.Cols)*360
}

// NormalizeLon maps any longitude onto [-180, 180).
func NormalizeLon(lon float64) float64 {
	l := math.Mod(lon+180, 360)
	if l < 0 {
		l += 360
	}
	return l - 180
}

// CheckMonth returns ErrMonthOutOfRange unless 0 <= m < Months.
func CheckMonth(m int) error {
	if m < 0 || m >= Months {
		return fmt.Errorf("%w: %d", ErrMonthOutOfRange, m)
	}
	return nil
}
