package geography

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// landAt is a mask source with land at the listed cell indices.
type landAt []int

func (l landAt) Mask(rows, cols int) (core.Mask, error) {
	m := core.Mask{Elevation: make([]float64, rows*cols), IsLand: make([]bool, rows*cols)}
	for i := range m.Elevation {
		m.Elevation[i] = -4000
	}
	for _, i := range l {
		m.IsLand[i] = true
		m.Elevation[i] = 100
	}
	return m, nil
}

type allLand struct{}

func (allLand) Mask(rows, cols int) (core.Mask, error) {
	m := core.Mask{Elevation: make([]float64, rows*cols), IsLand: make([]bool, rows*cols)}
	for i := range m.IsLand {
		m.IsLand[i] = true
	}
	return m, nil
}

type shortMask struct{}

func (shortMask) Mask(rows, cols int) (core.Mask, error) {
	return core.Mask{Elevation: make([]float64, 3), IsLand: make([]bool, 3)}, nil
}

func rowScales(g *core.Grid) []float64 {
	s := make([]float64, g.Rows)
	for r := range s {
		s[r] = math.Max(minRowScale, math.Abs(math.Cos(g.LatOfRow(float64(r))*math.Pi/180)))
	}
	return s
}

func TestBuildGrid_SignConvention(t *testing.T) {
	const rows, cols = 18, 36
	land := landAt{}
	for r := 6; r < 12; r++ {
		for c := 10; c < 20; c++ {
			land = append(land, r*cols+c)
		}
	}
	g, err := BuildGrid(rows, cols, land)
	require.NoError(t, err)

	for i, cell := range g.Cells {
		if cell.IsLand {
			assert.Greater(t, cell.DistCoast, 0.0, "land cell %d", i)
		} else {
			assert.Less(t, cell.DistCoast, 0.0, "ocean cell %d", i)
		}
		assert.False(t, math.IsInf(cell.DistCoast, 0), "cell %d", i)
	}

	owner, ok := g.Owner(core.FieldDistCoast)
	require.True(t, ok)
	assert.Equal(t, core.StageGeography, owner)
}

func TestBuildGrid_SeamWraps(t *testing.T) {
	const rows, cols = 19, 36
	const r = 9
	g, err := BuildGrid(rows, cols, landAt{r * cols})
	require.NoError(t, err)

	west := g.At(cols-1, r).DistCoast
	east := g.At(1, r).DistCoast
	assert.InDelta(t, east, west, 1e-9, "neighbours across the seam must be equally close")

	step := rowScales(g)[r] * g.KmPerUnit()
	assert.InDelta(t, -step, west, 1e-9)
}

func TestBuildGrid_DistanceGrowsAwayFromCoast(t *testing.T) {
	const rows, cols = 19, 36
	const r = 9
	g, err := BuildGrid(rows, cols, landAt{r*cols + 18})
	require.NoError(t, err)

	prev := 0.0
	for c := 19; c < 30; c++ {
		d := g.At(c, r).DistCoast
		assert.Less(t, d, prev, "col %d", c)
		prev = d
	}
}

func TestTransform_Symmetric(t *testing.T) {
	const rows, cols = 10, 16
	g, err := core.NewGrid(rows, cols, core.Mask{
		Elevation: make([]float64, rows*cols),
		IsLand:    make([]bool, rows*cols),
	})
	require.NoError(t, err)
	scale := rowScales(g)

	pairs := [][2]int{{0, 159}, {17, 94}, {5, 10}, {150, 3}, {64, 79}}
	for _, p := range pairs {
		a, b := p[0], p[1]
		fromA := Transform(rows, cols, scale, func(i int) bool { return i == a })
		fromB := Transform(rows, cols, scale, func(i int) bool { return i == b })
		assert.InDelta(t, fromA[b], fromB[a], 1e-9, "d(%d,%d)", a, b)
	}
}

func TestBuildGrid_NoCoast(t *testing.T) {
	g, err := BuildGrid(6, 12, landAt{})
	require.NoError(t, err)
	for _, cell := range g.Cells {
		assert.True(t, math.IsInf(cell.DistCoast, -1))
	}

	g, err = BuildGrid(6, 12, allLand{})
	require.NoError(t, err)
	for _, cell := range g.Cells {
		assert.True(t, math.IsInf(cell.DistCoast, 1))
	}
}

func TestBuildGrid_Errors(t *testing.T) {
	_, err := BuildGrid(1, 12, landAt{})
	assert.True(t, errors.Is(err, core.ErrDegenerateGrid))

	_, err = BuildGrid(4, 4, shortMask{})
	assert.True(t, errors.Is(err, ErrMaskSize))

	_, err = BuildGrid(4, 4, nil)
	assert.Error(t, err)
}
