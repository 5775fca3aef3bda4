// pkg/core/ownership.go
package core

import (
	"errors"
	"fmt"
)

// ErrFieldOwned is returned when a stage writes a field another stage owns.
var ErrFieldOwned = errors.New("field owned by another stage")

// Field names a derived cell field with a single writer.
type Field int

const (
	FieldDistCoast Field = iota
	FieldHeatMap
	FieldWind
	FieldCollisionMask
)

func (f Field) String() string {
	switch f {
	case FieldDistCoast:
		return "distCoast"
	case FieldHeatMap:
		return "heatMapVal"
	case FieldWind:
		return "wind"
	case FieldCollisionMask:
		return "collisionMask"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Pipeline stage names used as field owners.
const (
	StageGeography = "geography"
	StageITCZ      = "itcz"
	StageWind      = "wind"
	StageOcean     = "ocean"
)

// Claim records stage as the writer of f. Claiming again from the same stage
// is allowed; any other stage gets ErrFieldOwned.
func (g *Grid) Claim(f Field, stage string) error {
	if g.owners == nil {
		g.owners = make(map[Field]string)
	}
	if owner, ok := g.owners[f]; ok && owner != stage {
		return fmt.Errorf("%w: %s is written by %s, not %s", ErrFieldOwned, f, owner, stage)
	}
	g.owners[f] = stage
	return nil
}

// Owner returns the stage that claimed f, if any.
func (g *Grid) Owner(f Field) (string, bool) {
	owner, ok := g.owners[f]
	return owner, ok
}

func (g *Grid) checkLen(f Field, n int) error {
	if n != g.Len() {
		return fmt.Errorf("%w: %s has %d values for %d cells", ErrDegenerateGrid, f, n, g.Len())
	}
	return nil
}

// ApplyDistCoast writes the signed coast distance of every cell.
func (g *Grid) ApplyDistCoast(stage string, vals []float64) error {
	if err := g.checkLen(FieldDistCoast, len(vals)); err != nil {
		return err
	}
	if err := g.Claim(FieldDistCoast, stage); err != nil {
		return err
	}
	for i, v := range vals {
		g.Cells[i].DistCoast = v
	}
	return nil
}

// ApplyHeatMap writes the ITCZ heat potential of every cell.
func (g *Grid) ApplyHeatMap(stage string, vals []float64) error {
	if err := g.checkLen(FieldHeatMap, len(vals)); err != nil {
		return err
	}
	if err := g.Claim(FieldHeatMap, stage); err != nil {
		return err
	}
	for i, v := range vals {
		g.Cells[i].HeatMapVal = v
	}
	return nil
}

// ApplyWindMonth writes one month of wind and pressure.
func (g *Grid) ApplyWindMonth(stage string, month int, u, v, p []float64) error {
	if err := CheckMonth(month); err != nil {
		return err
	}
	for _, vals := range [][]float64{u, v, p} {
		if err := g.checkLen(FieldWind, len(vals)); err != nil {
			return err
		}
	}
	if err := g.Claim(FieldWind, stage); err != nil {
		return err
	}
	for i := range g.Cells {
		g.Cells[i].WindU[month] = u[i]
		g.Cells[i].WindV[month] = v[i]
		g.Cells[i].Pressure[month] = p[i]
	}
	return nil
}

// ApplyCollisionMask writes the smoothed ocean collision field.
func (g *Grid) ApplyCollisionMask(stage string, vals []float64) error {
	if err := g.checkLen(FieldCollisionMask, len(vals)); err != nil {
		return err
	}
	if err := g.Claim(FieldCollisionMask, stage); err != nil {
		return err
	}
	for i, v := range vals {
		g.Cells[i].CollisionMask = v
	}
	return nil
}
