package geo

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// GEO GEOMETRY
// Ledger geometry is stored as WKT in EPSG:4326 for streamlines (longitudes
// unwrapped so a line crossing the antimeridian stays continuous) and as
// EPSG:3857 points for impacts and diagnostics.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// MercatorMaxLat is the latitude limit of the Web Mercator projection.
const MercatorMaxLat = 85.05112878

// Coords3857From4326 creates a Web Mercator point from a longitude and
// latitude. Latitudes beyond the projection limit are clamped.
func Coords3857From4326(
	longitude float64,
	latitude float64,
) (
	point geom.Point,
	err error,
) {
	if math.IsNaN(longitude) || math.IsNaN(latitude) || math.IsInf(longitude, 0) || math.IsInf(latitude, 0) {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	latitude = math.Max(-MercatorMaxLat, math.Min(MercatorMaxLat, latitude))

	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	point = geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Type: geom.DimXY,
		},
	)
	return point, nil
}

// ImpactPoint projects an impact to EPSG:3857.
func ImpactPoint(imp core.Impact) (geom.Point, error) {
	return Coords3857From4326(imp.Lon, imp.Lat)
}

// DiagnosticPoint projects a diagnostic location to EPSG:3857.
func DiagnosticPoint(d core.Diagnostic) (geom.Point, error) {
	return Coords3857From4326(d.Lon, d.Lat)
}

// UnwrapLongitudes returns the longitudes of points shifted by multiples of
// 360 so consecutive values never jump by more than 180 degrees.
func UnwrapLongitudes(points []core.StreamlinePoint) []float64 {
	out := make([]float64, len(points))
	offset := 0.0
	for i, p := range points {
		if i > 0 {
			prev := points[i-1].Lon
			switch d := p.Lon - prev; {
			case d > 180:
				offset -= 360
			case d < -180:
				offset += 360
			}
		}
		out[i] = p.Lon + offset
	}
	return out
}

// StreamlineLineString converts a streamline into an EPSG:4326 LineString.
func StreamlineLineString(sl core.Streamline) (geom.LineString, error) {
	if len(sl.Points) < 2 {
		return geom.LineString{}, fmt.Errorf("streamline %d must have at least 2 points, got %d", sl.AgentID, len(sl.Points))
	}

	lons := UnwrapLongitudes(sl.Points)
	flatCoords := make([]float64, 0, len(sl.Points)*2)
	for i, p := range sl.Points {
		if math.IsNaN(lons[i]) || math.IsNaN(p.Lat) {
			return geom.LineString{}, fmt.Errorf("streamline %d point %d: %w", sl.AgentID, i, ErrInvalidCoordinates)
		}
		flatCoords = append(flatCoords, lons[i], p.Lat)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// StreamlineWKT returns the streamline geometry as WKT.
func StreamlineWKT(sl core.Streamline) (string, error) {
	ls, err := StreamlineLineString(sl)
	if err != nil {
		return "", err
	}
	return ls.AsText(), nil
}

// PathLengthKm is the great-circle length of a streamline on a sphere of the
// given radius.
func PathLengthKm(sl core.Streamline, radiusKm float64) float64 {
	total := 0.0
	for i := 1; i < len(sl.Points); i++ {
		a, b := sl.Points[i-1], sl.Points[i]
		total += haversine(a.Lat, a.Lon, b.Lat, b.Lon) * radiusKm
	}
	return total
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
