package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oceanMask(rows, cols int) Mask {
	m := Mask{Elevation: make([]float64, rows*cols), IsLand: make([]bool, rows*cols)}
	for i := range m.Elevation {
		m.Elevation[i] = -4000
	}
	return m
}

func TestNewGrid_Coordinates(t *testing.T) {
	g, err := NewGrid(5, 8, oceanMask(5, 8))
	require.NoError(t, err)

	assert.Equal(t, 40, len(g.Cells))
	assert.InDelta(t, 90.0, g.At(0, 0).Lat, 1e-12)
	assert.InDelta(t, -90.0, g.At(0, 4).Lat, 1e-12)
	assert.InDelta(t, 0.0, g.At(0, 2).Lat, 1e-12)
	assert.InDelta(t, -180.0, g.At(0, 0).Lon, 1e-12)
	assert.InDelta(t, 135.0, g.At(7, 0).Lon, 1e-12)
	assert.InDelta(t, 45.0*KmPerDegree, g.KmPerUnit(), 1e-9)

	for m := 0; m < Months; m++ {
		assert.Equal(t, StandardPressureHPa, g.At(3, 3).Pressure[m])
	}
}

func TestNewGrid_Degenerate(t *testing.T) {
	_, err := NewGrid(1, 8, oceanMask(1, 8))
	assert.True(t, errors.Is(err, ErrDegenerateGrid))

	_, err = NewGrid(4, 0, Mask{})
	assert.True(t, errors.Is(err, ErrDegenerateGrid))

	_, err = NewGrid(4, 4, oceanMask(3, 4))
	assert.True(t, errors.Is(err, ErrDegenerateGrid))
}

func TestGrid_WrapAndClamp(t *testing.T) {
	g, err := NewGrid(4, 6, oceanMask(4, 6))
	require.NoError(t, err)

	assert.Equal(t, 5, g.WrapCol(-1))
	assert.Equal(t, 0, g.WrapCol(6))
	assert.Equal(t, 1, g.WrapCol(13))
	assert.Equal(t, 0, g.ClampRow(-3))
	assert.Equal(t, 3, g.ClampRow(9))
	assert.Equal(t, g.Index(5, 0), g.Index(-1, -1))
}

func TestGrid_RowLatRoundTrip(t *testing.T) {
	g, err := NewGrid(37, 72, oceanMask(37, 72))
	require.NoError(t, err)

	for _, lat := range []float64{90, 45.5, 0, -12.25, -90} {
		assert.InDelta(t, lat, g.LatOfRow(g.RowOfLat(lat)), 1e-9)
	}
}

func TestNormalizeLon(t *testing.T) {
	assert.InDelta(t, -180.0, NormalizeLon(180), 1e-12)
	assert.InDelta(t, 170.0, NormalizeLon(-190), 1e-12)
	assert.InDelta(t, 10.0, NormalizeLon(730), 1e-12)
	assert.False(t, math.IsNaN(NormalizeLon(-1e6)))
}

func TestGrid_ClaimOwnership(t *testing.T) {
	g, err := NewGrid(3, 3, oceanMask(3, 3))
	require.NoError(t, err)

	vals := make([]float64, 9)
	require.NoError(t, g.ApplyDistCoast(StageGeography, vals))
	require.NoError(t, g.ApplyDistCoast(StageGeography, vals), "same stage may rewrite")

	err = g.ApplyDistCoast(StageOcean, vals)
	assert.True(t, errors.Is(err, ErrFieldOwned))

	owner, ok := g.Owner(FieldDistCoast)
	assert.True(t, ok)
	assert.Equal(t, StageGeography, owner)

	_, ok = g.Owner(FieldCollisionMask)
	assert.False(t, ok)
}

func TestGrid_ApplyWindMonth(t *testing.T) {
	g, err := NewGrid(2, 2, oceanMask(2, 2))
	require.NoError(t, err)

	u := []float64{1, 2, 3, 4}
	v := []float64{0, 0, 0, 0}
	p := []float64{1000, 1001, 1002, 1003}
	require.NoError(t, g.ApplyWindMonth(StageWind, 6, u, v, p))
	assert.Equal(t, 3.0, g.Cells[2].WindU[6])
	assert.Equal(t, 1003.0, g.Cells[3].Pressure[6])
	assert.Equal(t, StandardPressureHPa, g.Cells[3].Pressure[5])

	err = g.ApplyWindMonth(StageWind, 12, u, v, p)
	assert.True(t, errors.Is(err, ErrMonthOutOfRange))

	err = g.ApplyWindMonth(StageWind, 0, u[:3], v, p)
	assert.True(t, errors.Is(err, ErrDegenerateGrid))
}

func TestAgentState_Terminal(t *testing.T) {
	assert.False(t, StateActive.Terminal())
	assert.False(t, StateCrawling.Terminal())
	assert.True(t, StateImpact.Terminal())
	assert.True(t, StateStuck.Terminal())
	assert.True(t, StateDead.Terminal())

	text, err := StateCrawling.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "crawling", string(text))
	assert.Equal(t, StreamlineSplitS, AgentECSouth.StreamlineKind())
}

func TestAgentEnums_TextRoundTrip(t *testing.T) {
	var k AgentKind
	require.NoError(t, k.UnmarshalText([]byte("EC_S")))
	assert.Equal(t, AgentECSouth, k)
	assert.Error(t, k.UnmarshalText([]byte("EC_X")))

	var s AgentState
	require.NoError(t, s.UnmarshalText([]byte("stuck")))
	assert.Equal(t, StateStuck, s)
	assert.Error(t, s.UnmarshalText([]byte("")))
}

func TestPhysicsParams_Validate(t *testing.T) {
	p := DefaultPhysicsParams()
	require.NoError(t, p.Validate())

	p.OceanSubSteps = 0
	assert.True(t, errors.Is(p.Validate(), ErrInvalidParams))

	p = DefaultPhysicsParams()
	p.WindOceanEcGapMode = "bogus"
	assert.True(t, errors.Is(p.Validate(), ErrInvalidParams))
}
