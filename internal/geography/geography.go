// Package geography builds the simulation grid and its signed coast distance.
package geography

import (
	"errors"
	"fmt"
	"math"

	"github.com/asteain-ninia/ExoClim/internal/queue"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

var ErrMaskSize = errors.New("mask size does not match grid")

// MaskSource supplies the static land/elevation mask.
type MaskSource interface {
	Mask(rows, cols int) (core.Mask, error)
}

// minRowScale keeps east-west steps near the poles from costing nothing.
const minRowScale = 0.05

// BuildGrid builds a rows x cols grid from source and fills distCoast.
func BuildGrid(rows, cols int, source MaskSource) (*core.Grid, error) {
	if rows < 2 || cols < 1 {
		return nil, fmt.Errorf("%w: rows=%d cols=%d", core.ErrDegenerateGrid, rows, cols)
	}
	if source == nil {
		return nil, errors.New("nil mask source")
	}

	mask, err := source.Mask(rows, cols)
	if err != nil {
		return nil, fmt.Errorf("failed to build mask: %w", err)
	}
	if n := rows * cols; len(mask.Elevation) != n || len(mask.IsLand) != n {
		return nil, fmt.Errorf("%w: got %d/%d samples, want %d",
			ErrMaskSize, len(mask.Elevation), len(mask.IsLand), n)
	}

	g, err := core.NewGrid(rows, cols, mask)
	if err != nil {
		return nil, err
	}
	if err := g.ApplyDistCoast(core.StageGeography, DistanceField(g)); err != nil {
		return nil, err
	}
	return g, nil
}

// DistanceField returns the signed coast distance of every cell in km:
// positive on land (distance to nearest ocean), negative on ocean (distance
// to nearest land). Cells with no opposite-type cell anywhere get ±Inf.
func DistanceField(g *core.Grid) []float64 {
	rowScale := make([]float64, g.Rows)
	for r := range rowScale {
		lat := g.LatOfRow(float64(r))
		rowScale[r] = math.Max(minRowScale, math.Abs(math.Cos(lat*math.Pi/180)))
	}

	fromOcean := Transform(g.Rows, g.Cols, rowScale, func(i int) bool { return !g.Cells[i].IsLand })
	fromLand := Transform(g.Rows, g.Cols, rowScale, func(i int) bool { return g.Cells[i].IsLand })

	km := g.KmPerUnit()
	out := make([]float64, g.Len())
	for i := range out {
		if g.Cells[i].IsLand {
			out[i] = fromOcean[i] * km
		} else {
			out[i] = -fromLand[i] * km
		}
	}
	return out
}

// Transform is a multi-source shortest-path distance over the 4-neighbour
// graph. North/south steps cost 1, east/west steps cost rowScale[r], and
// columns wrap. Cells unreachable from any source stay +Inf.
func Transform(rows, cols int, rowScale []float64, isSource func(i int) bool) []float64 {
	n := rows * cols
	dist := make([]float64, n)
	visited := make([]bool, n)
	pq := queue.NewPriority[int](n)

	for i := range dist {
		if isSource(i) {
			pq.Push(i, 0)
		} else {
			dist[i] = math.Inf(1)
		}
	}

	for {
		idx, d, ok := pq.Pop()
		if !ok {
			break
		}
		if visited[idx] {
			continue
		}
		visited[idx] = true

		r, c := idx/cols, idx%cols
		relax := func(nIdx int, cost float64) {
			if nd := d + cost; nd < dist[nIdx] {
				dist[nIdx] = nd
				pq.Push(nIdx, nd)
			}
		}
		if r > 0 {
			relax(idx-cols, 1)
		}
		if r < rows-1 {
			relax(idx+cols, 1)
		}
		relax(r*cols+(c-1+cols)%cols, rowScale[r])
		relax(r*cols+(c+1)%cols, rowScale[r])
	}
	return dist
}
