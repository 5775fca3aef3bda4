package influx

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteain-ninia/ExoClim/internal/config"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{Enabled: false})
	assert.True(t, errors.Is(m.Connect(context.Background()), ErrDisabled))
	assert.Error(t, m.WritePoint(StagePoint("r", core.StageTiming{})))
	assert.NoError(t, m.Close())
}

func TestServerURL(t *testing.T) {
	m := NewManager(zerolog.Nop(), config.InfluxConfig{Protocol: "https", Host: "influx", Port: "8086"})
	assert.Equal(t, "https://influx:8086", m.ServerURL())
}

func TestStagePoint(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := StagePoint("r1", core.StageTiming{Stage: core.StageWind, Started: started, Duration: 2500 * time.Microsecond})

	assert.Equal(t, MeasurementStage, p.Name())
	assert.Equal(t, started, p.Time())
	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{"run": "r1", "stage": core.StageWind}, tags)
	require.Len(t, p.FieldList(), 1)
	assert.Equal(t, 2.5, p.FieldList()[0].Value)
}

func TestMonthPoints(t *testing.T) {
	pts := MonthPoints("r1", core.MonthStats{
		Month:        6,
		EccSpawned:   4,
		Terminations: map[string]int{"Stagnation": 1, "Coastal Impact": 3},
	}, time.Now())

	require.Len(t, pts, 3)
	assert.Equal(t, MeasurementOceanMonth, pts[0].Name())
	assert.Len(t, pts[0].FieldList(), 4)
	for _, p := range pts[1:] {
		assert.Equal(t, MeasurementTermination, p.Name())
	}
}

func TestRunPoint(t *testing.T) {
	p := RunPoint("r1", "failed", nil, time.Now())
	assert.Len(t, p.FieldList(), 1)

	res := &core.SimulationResult{}
	res.Ocean.Streamlines[0] = make([]core.Streamline, 2)
	p = RunPoint("r1", "complete", res, time.Now())
	assert.Len(t, p.FieldList(), 5)
}

func TestConnect_BackupWhenUnreachable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "influx_backup.lp.gz")
	m := NewManager(zerolog.Nop(), config.InfluxConfig{
		Enabled:    true,
		Protocol:   "http",
		Host:       "127.0.0.1",
		Port:       "1",
		Org:        "exoclim",
		Bucket:     "exoclim_runs",
		BackupPath: path,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.IsValid)

	require.NoError(t, m.WriteStage("r1", core.StageTiming{Stage: core.StageOcean, Duration: time.Millisecond}))
	res := &core.SimulationResult{}
	res.Ocean.Stats = []core.MonthStats{{Month: 0, Terminations: map[string]int{"Stagnation": 2}}}
	require.NoError(t, m.WriteRun("r1", "complete", res))
	require.NoError(t, m.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gr)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "stage_timing,run=r1,stage=ocean "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "run,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "ocean_month,"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "ocean_termination,"), lines[3])
}
