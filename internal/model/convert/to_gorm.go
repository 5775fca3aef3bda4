// Package convert maps simulator results onto the GORM ledger models
package convert

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/asteain-ninia/ExoClim/internal/geo"
	"github.com/asteain-ninia/ExoClim/internal/model"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// toJSON marshals v for a JSON column, falling back to fallback on error.
func toJSON(v any, fallback string) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return datatypes.JSON(fallback)
	}
	return datatypes.JSON(data)
}

// CoreToRun converts the run info into a ledger row in the running state.
func CoreToRun(info core.RunInfo) model.Run {
	return model.Run{
		ID:         info.ID,
		StartedAt:  info.StartedAt,
		Status:     model.RunStatusRunning,
		Rows:       info.Rows,
		Cols:       info.Cols,
		Source:     info.Source,
		Months:     toJSON(info.Months, "[]"),
		Planet:     toJSON(info.Planet, "{}"),
		Atmosphere: toJSON(info.Atmosphere, "{}"),
		Physics:    toJSON(info.Physics, "{}"),
	}
}

// CoreToStageTiming converts a stage timing.
func CoreToStageTiming(runID string, st core.StageTiming) model.StageTiming {
	return model.StageTiming{
		RunID:      runID,
		Stage:      st.Stage,
		StartedAt:  st.Started,
		DurationMs: float64(st.Duration.Microseconds()) / 1000,
	}
}

// CoreToMonthStat converts the outcome counters of one month.
func CoreToMonthStat(runID string, s core.MonthStats) model.MonthStat {
	return model.MonthStat{
		RunID:        runID,
		Month:        s.Month,
		EccSpawned:   s.EccSpawned,
		EcSpawned:    s.EcSpawned,
		Impacts:      s.Impacts,
		Streamlines:  s.Streamlines,
		Terminations: toJSON(s.Terminations, "{}"),
	}
}

// CoreToStreamline converts a streamline and measures its length on a sphere
// of radiusKm.
func CoreToStreamline(runID string, month int, sl core.Streamline, radiusKm float64) (model.StreamlineRecord, error) {
	ls, err := geo.StreamlineLineString(sl)
	if err != nil {
		return model.StreamlineRecord{}, err
	}
	return model.StreamlineRecord{
		RunID:      runID,
		Month:      month,
		AgentID:    sl.AgentID,
		Kind:       string(sl.Kind),
		Strength:   sl.Strength,
		PointCount: len(sl.Points),
		LengthKm:   geo.PathLengthKm(sl, radiusKm),
		Path:       ls,
		PathWKT:    ls.AsText(),
	}, nil
}

// CoreToImpact converts an impact.
func CoreToImpact(runID string, month int, imp core.Impact) (model.ImpactRecord, error) {
	pt, err := geo.ImpactPoint(imp)
	if err != nil {
		return model.ImpactRecord{}, err
	}
	return model.ImpactRecord{
		RunID:    runID,
		Month:    month,
		Kind:     string(imp.Kind),
		X:        imp.X,
		Y:        imp.Y,
		Lat:      imp.Lat,
		Lon:      imp.Lon,
		Position: pt,
	}, nil
}

// CoreToDiagnostic converts a diagnostic.
func CoreToDiagnostic(runID string, d core.Diagnostic) (model.DiagnosticRecord, error) {
	pt, err := geo.DiagnosticPoint(d)
	if err != nil {
		return model.DiagnosticRecord{}, err
	}
	return model.DiagnosticRecord{
		RunID:    runID,
		Month:    d.Month,
		Kind:     string(d.Kind),
		AgentID:  d.AgentID,
		Age:      d.Age,
		Lat:      d.Lat,
		Lon:      d.Lon,
		Message:  d.Message,
		Position: pt,
	}, nil
}

// CoreToFrame converts a debug frame.
func CoreToFrame(runID string, month int, f core.DebugFrame) model.FrameRecord {
	return model.FrameRecord{
		RunID:  runID,
		Month:  month,
		Step:   f.Step,
		Phase:  f.Phase,
		Agents: toJSON(f.Agents, "[]"),
	}
}

// Ledger is every row derived from a finished simulation.
type Ledger struct {
	Stats       []model.MonthStat
	Streamlines []model.StreamlineRecord
	Impacts     []model.ImpactRecord
	Diagnostics []model.DiagnosticRecord
}

// CoreToLedger converts the ocean output of a run. Entries whose geometry
// cannot be built are skipped and counted in skipped.
func CoreToLedger(runID string, ocean core.OceanResult, radiusKm float64) (l Ledger, skipped int) {
	for _, s := range ocean.Stats {
		l.Stats = append(l.Stats, CoreToMonthStat(runID, s))
	}
	for m := 0; m < core.Months; m++ {
		for _, sl := range ocean.Streamlines[m] {
			rec, err := CoreToStreamline(runID, m, sl, radiusKm)
			if err != nil {
				skipped++
				continue
			}
			l.Streamlines = append(l.Streamlines, rec)
		}
		for _, imp := range ocean.Impacts[m] {
			rec, err := CoreToImpact(runID, m, imp)
			if err != nil {
				skipped++
				continue
			}
			l.Impacts = append(l.Impacts, rec)
		}
	}
	for _, d := range ocean.Diagnostics {
		rec, err := CoreToDiagnostic(runID, d)
		if err != nil {
			skipped++
			continue
		}
		l.Diagnostics = append(l.Diagnostics, rec)
	}
	return l, skipped
}

// ApplyResult copies the stage outputs that summarise a run onto r.
func ApplyResult(r *model.Run, res core.SimulationResult) {
	r.CellCount = res.ITCZ.CellCount
	r.HadleyWidth = res.ITCZ.HadleyWidthDeg
	r.HadleyEdge = res.Wind.HadleyEdgeDeg
	r.EcLatGap = res.Ocean.EcLatGapDeg
	r.ItczLines = toJSON(res.ITCZ.Lines, "[]")
	r.CellBoundary = toJSON(res.Wind.CellBoundariesDeg, "[]")
}
