// Package terrain provides the static land/elevation masks a grid is built from.
package terrain

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

var ErrEmptyCustomMap = errors.New("custom map is empty")

// Source produces a row-major mask for a rows x cols grid.
type Source interface {
	Name() string
	Mask(rows, cols int) (core.Mask, error)
}

// VirtualContinent places one continent centred on the middle column whose
// width in every row follows Earth's land fraction for that latitude.
type VirtualContinent struct {
	OceanDepthM float64 // elevation of ocean cells, default -4000
	LandHeightM float64
}

func (v VirtualContinent) Name() string { return "virtual_continent" }

func (v VirtualContinent) Mask(rows, cols int) (core.Mask, error) {
	depth := v.OceanDepthM
	if depth == 0 {
		depth = -4000
	}
	n := rows * cols
	mask := core.Mask{Elevation: make([]float64, n), IsLand: make([]bool, n)}
	for i := range mask.Elevation {
		mask.Elevation[i] = depth
	}

	center := cols / 2
	order := make([]int, cols)
	wrapped := func(c int) int {
		d := c - center
		if d < 0 {
			d = -d
		}
		return min(d, cols-d)
	}
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(a, b int) bool { return wrapped(order[a]) < wrapped(order[b]) })

	for r := 0; r < rows; r++ {
		landFrac, _ := LatitudeStats(90 - float64(r)/float64(max(1, rows-1))*180)
		landCount := min(cols, int(math.Floor(landFrac*float64(cols))))
		for _, c := range order[:landCount] {
			i := r*cols + c
			mask.IsLand[i] = true
			mask.Elevation[i] = v.LandHeightM
		}
	}
	return mask, nil
}

// Custom is a caller-provided mask that must match the grid size exactly.
type Custom struct {
	Elevation []float64
	IsLand    []bool
}

func (c Custom) Name() string { return "custom" }

func (c Custom) Mask(rows, cols int) (core.Mask, error) {
	if len(c.IsLand) == 0 {
		return core.Mask{}, ErrEmptyCustomMap
	}
	n := rows * cols
	if len(c.IsLand) != n || len(c.Elevation) != n {
		return core.Mask{}, fmt.Errorf("custom mask has %d/%d samples for a %dx%d grid",
			len(c.Elevation), len(c.IsLand), rows, cols)
	}
	return core.Mask{
		Elevation: append([]float64(nil), c.Elevation...),
		IsLand:    append([]bool(nil), c.IsLand...),
	}, nil
}

// Resampled maps a Width x Height source image onto the grid by nearest
// neighbour.
type Resampled struct {
	Width     int
	Height    int
	Elevation []float64
	IsLand    []bool
}

func (s Resampled) Name() string { return "resampled" }

func (s Resampled) Mask(rows, cols int) (core.Mask, error) {
	if s.Width <= 0 || s.Height <= 0 || len(s.IsLand) == 0 || len(s.Elevation) == 0 {
		return core.Mask{}, ErrEmptyCustomMap
	}
	last := min(len(s.Elevation), len(s.IsLand)) - 1
	n := rows * cols
	mask := core.Mask{Elevation: make([]float64, n), IsLand: make([]bool, n)}
	for r := 0; r < rows; r++ {
		srcR := r * s.Height / rows
		for c := 0; c < cols; c++ {
			srcC := c * s.Width / cols
			src := min(srcR*s.Width+srcC, last)
			i := r*cols + c
			mask.Elevation[i] = s.Elevation[src]
			mask.IsLand[i] = s.IsLand[src]
		}
	}
	return mask, nil
}

// FromName builds a named source. Custom maps cannot be built by name.
func FromName(name string, seed int64) (Source, error) {
	switch name {
	case "", "procedural":
		return Procedural{Seed: seed}, nil
	case "procedural_perlin":
		return Procedural{Seed: seed, Basis: NoisePerlin}, nil
	case "virtual_continent":
		return VirtualContinent{}, nil
	default:
		return nil, fmt.Errorf("unknown map source %q", name)
	}
}
