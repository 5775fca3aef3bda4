// Package influx writes per-run stage timings and ocean outcome counts as
// InfluxDB points, falling back to a gzip line-protocol file when the server
// is unreachable.
package influx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"github.com/asteain-ninia/ExoClim/internal/config"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Measurement names.
const (
	MeasurementStage       = "stage_timing"
	MeasurementOceanMonth  = "ocean_month"
	MeasurementTermination = "ocean_termination"
	MeasurementRun         = "run"
	retentionSeconds       = 60 * 60 * 24 * 90
)

// ErrDisabled is returned by Connect when influx output is switched off.
var ErrDisabled = errors.New("influx output disabled")

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client  influxdb2.Client
	Writer  influxdb2_api.WriteAPI
	IsValid bool
	Logger  zerolog.Logger

	cfg        config.InfluxConfig
	mu         sync.Mutex
	backupFile *os.File
	backup     *gzip.Writer
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig) *Manager {
	return &Manager{
		Logger: log,
		cfg:    cfg,
	}
}

// ServerURL is the HTTP address of the configured server.
func (m *Manager) ServerURL() string {
	return fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port)
}

// Connect pings the server and prepares the org, bucket and writer. When
// the server cannot be reached, points go to the gzip backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.ServerURL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Warn().Err(err).Str("backupPath", m.cfg.BackupPath).
			Msg("InfluxDB unreachable, writing to backup file")
		return m.openBackup()
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())

	m.IsValid = true
	m.Logger.Info().Str("url", m.ServerURL()).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backup != nil {
		return nil
	}
	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backup = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := m.Client.OrganizationsAPI()

	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.Logger.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			return fmt.Errorf("create organization %s: %w", m.cfg.Org, err)
		}
	}

	if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err != nil {
		m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSeconds,
		})
		if err != nil {
			return fmt.Errorf("create bucket %s: %w", m.cfg.Bucket, err)
		}
	}
	return nil
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backup == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	line := strings.TrimRight(influxdb2_write.PointToLineProtocol(point, time.Nanosecond), "\n") + "\n"
	if _, err := m.backup.Write([]byte(line)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// StagePoint builds the timing point of one pipeline stage.
func StagePoint(runID string, st core.StageTiming) *influxdb2_write.Point {
	ts := st.Started
	if ts.IsZero() {
		ts = time.Now()
	}
	return influxdb2.NewPoint(MeasurementStage,
		map[string]string{"run": runID, "stage": st.Stage},
		map[string]interface{}{"duration_ms": float64(st.Duration.Microseconds()) / 1000},
		ts,
	)
}

// MonthPoints builds the outcome points of one integrated month.
func MonthPoints(runID string, s core.MonthStats, ts time.Time) []*influxdb2_write.Point {
	month := strconv.Itoa(s.Month)
	points := []*influxdb2_write.Point{
		influxdb2.NewPoint(MeasurementOceanMonth,
			map[string]string{"run": runID, "month": month},
			map[string]interface{}{
				"ecc_spawned": s.EccSpawned,
				"ec_spawned":  s.EcSpawned,
				"impacts":     s.Impacts,
				"streamlines": s.Streamlines,
			},
			ts,
		),
	}
	for cause, n := range s.Terminations {
		points = append(points, influxdb2.NewPoint(MeasurementTermination,
			map[string]string{"run": runID, "month": month, "cause": cause},
			map[string]interface{}{"count": n},
			ts,
		))
	}
	return points
}

// RunPoint builds the summary point of a finished run.
func RunPoint(runID, status string, res *core.SimulationResult, ts time.Time) *influxdb2_write.Point {
	fields := map[string]interface{}{"ok": status == "complete"}
	if res != nil {
		streamlines, impacts := 0, 0
		for mo := 0; mo < core.Months; mo++ {
			streamlines += len(res.Ocean.Streamlines[mo])
			impacts += len(res.Ocean.Impacts[mo])
		}
		fields["streamlines"] = streamlines
		fields["impacts"] = impacts
		fields["diagnostics"] = len(res.Ocean.Diagnostics)
		fields["cell_count"] = res.ITCZ.CellCount
	}
	return influxdb2.NewPoint(MeasurementRun,
		map[string]string{"run": runID, "status": status},
		fields,
		ts,
	)
}

// WriteStage records a stage timing.
func (m *Manager) WriteStage(runID string, st core.StageTiming) error {
	return m.WritePoint(StagePoint(runID, st))
}

// WriteRun records the summary and per-month outcomes of a run.
func (m *Manager) WriteRun(runID, status string, res *core.SimulationResult) error {
	now := time.Now()
	var errs []error
	if err := m.WritePoint(RunPoint(runID, status, res, now)); err != nil {
		errs = append(errs, err)
	}
	if res != nil {
		for _, s := range res.Ocean.Stats {
			for _, p := range MonthPoints(runID, s, now) {
				if err := m.WritePoint(p); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backup == nil {
		return nil
	}
	err := errors.Join(m.backup.Close(), m.backupFile.Close())
	m.backup, m.backupFile = nil, nil
	return err
}
