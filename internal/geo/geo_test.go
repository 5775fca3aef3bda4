package geo

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

func TestCoords3857From4326_Origin(t *testing.T) {
	point, err := Coords3857From4326(0, 0)
	require.NoError(t, err)

	coords, ok := point.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 0.0, coords.X, 1e-6)
	assert.InDelta(t, 0.0, coords.Y, 1e-6)
}

func TestCoords3857From4326_Quadrants(t *testing.T) {
	point, err := Coords3857From4326(10, 10)
	require.NoError(t, err)
	coords, _ := point.Coordinates()
	assert.Positive(t, coords.X)
	assert.Positive(t, coords.Y)

	point, err = Coords3857From4326(-45, -30)
	require.NoError(t, err)
	coords, _ = point.Coordinates()
	assert.Negative(t, coords.X)
	assert.Negative(t, coords.Y)
}

func TestCoords3857From4326_ClampsPoles(t *testing.T) {
	polar, err := Coords3857From4326(0, 88)
	require.NoError(t, err)
	limit, err := Coords3857From4326(0, MercatorMaxLat)
	require.NoError(t, err)

	pc, _ := polar.Coordinates()
	lc, _ := limit.Coordinates()
	assert.False(t, math.IsInf(pc.Y, 0))
	assert.InDelta(t, lc.Y, pc.Y, 1e-6)
}

func TestCoords3857From4326_Invalid(t *testing.T) {
	_, err := Coords3857From4326(math.NaN(), 0)
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))
	_, err = Coords3857From4326(0, math.Inf(1))
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))
}

func TestImpactAndDiagnosticPoints(t *testing.T) {
	p, err := ImpactPoint(core.Impact{Lon: -120, Lat: 5, Kind: core.ImpactECC})
	require.NoError(t, err)
	c, _ := p.Coordinates()
	assert.Negative(t, c.X)

	p, err = DiagnosticPoint(core.Diagnostic{Lon: 60, Lat: -12})
	require.NoError(t, err)
	c, _ = p.Coordinates()
	assert.Positive(t, c.X)
	assert.Negative(t, c.Y)
}

func TestUnwrapLongitudes(t *testing.T) {
	pts := []core.StreamlinePoint{{Lon: 170}, {Lon: 178}, {Lon: -175}, {Lon: -170}}
	assert.Equal(t, []float64{170, 178, 185, 190}, UnwrapLongitudes(pts))

	west := []core.StreamlinePoint{{Lon: -178}, {Lon: 179}, {Lon: 175}}
	assert.Equal(t, []float64{-178, -181, -185}, UnwrapLongitudes(west))
}

func TestStreamlineWKT(t *testing.T) {
	sl := core.Streamline{AgentID: 3, Points: []core.StreamlinePoint{
		{Lon: 178, Lat: 1}, {Lon: -179, Lat: 2}, {Lon: -170, Lat: 2},
	}}
	wkt, err := StreamlineWKT(sl)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(wkt, "LINESTRING("), wkt)
	assert.Contains(t, wkt, "181 2")

	_, err = StreamlineWKT(core.Streamline{Points: []core.StreamlinePoint{{}}})
	assert.Error(t, err)

	_, err = StreamlineLineString(core.Streamline{Points: []core.StreamlinePoint{{Lat: math.NaN()}, {}}})
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))
}

func TestPathLengthKm(t *testing.T) {
	quarter := core.Streamline{Points: []core.StreamlinePoint{
		{Lon: 0, Lat: 0}, {Lon: 45, Lat: 0}, {Lon: 90, Lat: 0},
	}}
	r := 6371.0
	assert.InDelta(t, math.Pi/2*r, PathLengthKm(quarter, r), 1e-6)

	seam := core.Streamline{Points: []core.StreamlinePoint{{Lon: 179, Lat: 0}, {Lon: -179, Lat: 0}}}
	assert.InDelta(t, 2*math.Pi/180*r, PathLengthKm(seam, r), 1e-6)

	assert.Zero(t, PathLengthKm(core.Streamline{}, r))
}
