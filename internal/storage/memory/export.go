// internal/storage/memory/export.go
package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/asteain-ninia/ExoClim/internal/geo"
	"github.com/asteain-ninia/ExoClim/internal/storage"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Compression names accepted in MemoryConfig.Compression.
const (
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

// RunExport is the root JSON structure of an exported run
type RunExport struct {
	Run         core.RunInfo          `json:"run"`
	Status      string                `json:"status"`
	Error       string                `json:"error,omitempty"`
	Timings     []core.StageTiming    `json:"timings"`
	ITCZ        *ITCZSummary          `json:"itcz,omitempty"`
	Wind        *core.WindBeltsResult `json:"wind,omitempty"`
	Stats       []core.MonthStats     `json:"stats"`
	Streamlines []StreamlineJSON      `json:"streamlines"`
	Impacts     []ImpactJSON          `json:"impacts"`
	Diagnostics []core.Diagnostic     `json:"diagnostics"`
	Frames      []FrameRecord         `json:"frames,omitempty"`
}

// ITCZSummary is the part of the ITCZ result kept in the ledger
type ITCZSummary struct {
	CellCount      int     `json:"cellCount"`
	HadleyWidthDeg float64 `json:"hadleyWidth"`
}

// StreamlineJSON summarises one streamline
type StreamlineJSON struct {
	Month      int     `json:"month"`
	AgentID    int     `json:"agentId"`
	Type       string  `json:"type"`
	Strength   float64 `json:"strength"`
	PointCount int     `json:"pointCount"`
	LengthKm   float64 `json:"lengthKm"`
	WKT        string  `json:"wkt,omitempty"`
}

// ImpactJSON is an impact tagged with its month
type ImpactJSON struct {
	Month int `json:"month"`
	core.Impact
}

func (b *Backend) buildExport(rec *RunRecord, res *core.SimulationResult, runErr error) RunExport {
	export := RunExport{
		Run:         rec.Info,
		Status:      storage.RunStatus(runErr),
		Timings:     rec.Stages,
		Stats:       make([]core.MonthStats, 0),
		Streamlines: make([]StreamlineJSON, 0),
		Impacts:     make([]ImpactJSON, 0),
		Diagnostics: make([]core.Diagnostic, 0),
		Frames:      rec.Frames,
	}
	if runErr != nil {
		export.Error = runErr.Error()
	}
	if res == nil {
		return export
	}

	export.ITCZ = &ITCZSummary{CellCount: res.ITCZ.CellCount, HadleyWidthDeg: res.ITCZ.HadleyWidthDeg}
	wind := res.Wind
	export.Wind = &wind
	if res.Ocean.Stats != nil {
		export.Stats = res.Ocean.Stats
	}
	if res.Ocean.Diagnostics != nil {
		export.Diagnostics = res.Ocean.Diagnostics
	}

	radius := rec.Info.Planet.RadiusKm
	for m := 0; m < core.Months; m++ {
		for _, sl := range res.Ocean.Streamlines[m] {
			wkt, _ := geo.StreamlineWKT(sl)
			export.Streamlines = append(export.Streamlines, StreamlineJSON{
				Month:      m,
				AgentID:    sl.AgentID,
				Type:       string(sl.Kind),
				Strength:   sl.Strength,
				PointCount: len(sl.Points),
				LengthKm:   geo.PathLengthKm(sl, radius),
				WKT:        wkt,
			})
		}
		for _, imp := range res.Ocean.Impacts[m] {
			export.Impacts = append(export.Impacts, ImpactJSON{Month: m, Impact: imp})
		}
	}
	return export
}

// exportJSON writes the run to a JSON file and returns its path
func (b *Backend) exportJSON(rec *RunRecord, res *core.SimulationResult, runErr error) (string, error) {
	export := b.buildExport(rec, res, runErr)

	timestamp := rec.Info.StartedAt.UTC().Format("20060102_150405")
	filename := fmt.Sprintf("exoclim_%s_%s.json", timestamp, rec.Info.ID)
	if b.cfg.CompressOutput {
		switch b.cfg.Compression {
		case CompressionZstd:
			filename += ".zst"
		default:
			filename += ".gz"
		}
	}
	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := b.encode(f, export); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return outputPath, nil
}

func (b *Backend) encode(w io.Writer, data RunExport) error {
	if !b.cfg.CompressOutput {
		return json.NewEncoder(w).Encode(data)
	}

	var cw io.WriteCloser
	switch b.cfg.Compression {
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		cw = zw
	case CompressionGzip, "":
		cw = gzip.NewWriter(w)
	default:
		return fmt.Errorf("unknown compression: %s", b.cfg.Compression)
	}

	if err := json.NewEncoder(cw).Encode(data); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

// ReadExport decodes an exported run file, detecting compression from the
// file extension.
func ReadExport(path string) (RunExport, error) {
	var out RunExport

	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer f.Close()

	var r io.Reader = f
	switch filepath.Ext(path) {
	case ".gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			return out, err
		}
		defer gr.Close()
		r = gr
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return out, err
		}
		defer zr.Close()
		r = zr
	}

	err = json.NewDecoder(r).Decode(&out)
	return out, err
}
