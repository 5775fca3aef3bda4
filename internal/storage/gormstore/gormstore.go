// Package gormstore implements the storage.Backend interface on GORM. The
// same backend serves Postgres (PostGIS geometry columns) and SQLite, where
// the in-memory database is dumped to disk with VACUUM INTO when a run ends.
package gormstore

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteain-ninia/ExoClim/internal/database"
	"github.com/asteain-ninia/ExoClim/internal/model"
	"github.com/asteain-ninia/ExoClim/internal/model/convert"
	"github.com/asteain-ninia/ExoClim/internal/queue"
	"github.com/asteain-ninia/ExoClim/internal/storage"
	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// batchSize bounds a single INSERT of ledger rows.
const batchSize = 500

// Config holds configuration for the GORM storage backend.
type Config struct {
	DumpPath string // VACUUM INTO target when running on SQLite; empty disables
}

// Backend writes the run ledger through GORM.
type Backend struct {
	manager *database.Manager
	cfg     Config

	mu     sync.Mutex
	radius map[string]float64
	frames map[string]*queue.Queue[model.FrameRecord]
}

// New creates a backend over an already connected manager.
func New(manager *database.Manager, cfg Config) *Backend {
	return &Backend{
		manager: manager,
		cfg:     cfg,
		radius:  make(map[string]float64),
		frames:  make(map[string]*queue.Queue[model.FrameRecord]),
	}
}

func (b *Backend) db() *gorm.DB {
	return b.manager.DB.Omit(clause.Associations)
}

// Init migrates the ledger schema.
func (b *Backend) Init() error {
	if b.manager == nil || b.manager.DB == nil {
		return fmt.Errorf("gorm backend: database not connected")
	}
	return b.manager.Setup()
}

// Close closes the database connection.
func (b *Backend) Close() error {
	return b.manager.Close()
}

// StartRun inserts the run row.
func (b *Backend) StartRun(info *core.RunInfo) error {
	row := convert.CoreToRun(*info)
	if err := b.db().Create(&row).Error; err != nil {
		return fmt.Errorf("insert run %s: %w", info.ID, err)
	}

	b.mu.Lock()
	b.radius[info.ID] = info.Planet.RadiusKm
	b.frames[info.ID] = queue.New[model.FrameRecord]()
	b.mu.Unlock()
	return nil
}

// RecordStage inserts a stage timing.
func (b *Backend) RecordStage(runID string, timing core.StageTiming) error {
	row := convert.CoreToStageTiming(runID, timing)
	if err := b.db().Create(&row).Error; err != nil {
		return fmt.Errorf("insert stage %s: %w", timing.Stage, err)
	}
	return nil
}

// RecordFrame queues a debug frame; queued frames are written by EndRun.
func (b *Backend) RecordFrame(runID string, month int, frame core.DebugFrame) error {
	b.mu.Lock()
	q, ok := b.frames[runID]
	b.mu.Unlock()

	if !ok {
		return fmt.Errorf("run %s not started", runID)
	}
	q.Push(convert.CoreToFrame(runID, month, frame))
	return nil
}

// EndRun writes the ledger rows of res and closes the run row.
func (b *Backend) EndRun(runID string, res *core.SimulationResult, runErr error) error {
	b.mu.Lock()
	var frames []model.FrameRecord
	if q, ok := b.frames[runID]; ok {
		frames = q.Drain()
	}
	radius := b.radius[runID]
	delete(b.frames, runID)
	delete(b.radius, runID)
	b.mu.Unlock()

	log := b.manager.Logger
	err := b.manager.DB.Transaction(func(tx *gorm.DB) error {
		tx = tx.Omit(clause.Associations)

		var run model.Run
		if err := tx.First(&run, "id = ?", runID).Error; err != nil {
			return fmt.Errorf("load run %s: %w", runID, err)
		}
		now := time.Now().UTC()
		run.EndedAt = &now
		run.Status = storage.RunStatus(runErr)
		if runErr != nil {
			run.Error = runErr.Error()
		}
		if res != nil {
			convert.ApplyResult(&run, *res)
		}
		if err := tx.Save(&run).Error; err != nil {
			return fmt.Errorf("update run %s: %w", runID, err)
		}

		if len(frames) > 0 {
			if err := tx.CreateInBatches(frames, batchSize).Error; err != nil {
				return fmt.Errorf("insert frames: %w", err)
			}
		}
		if res == nil {
			return nil
		}

		ledger, skipped := convert.CoreToLedger(runID, res.Ocean, radius)
		if skipped > 0 {
			log.Warn().Str("run", runID).Int("skipped", skipped).Msg("Ledger rows without valid geometry skipped")
		}
		if len(ledger.Stats) > 0 {
			if err := tx.CreateInBatches(ledger.Stats, batchSize).Error; err != nil {
				return fmt.Errorf("insert month stats: %w", err)
			}
		}
		if len(ledger.Streamlines) > 0 {
			if err := tx.CreateInBatches(ledger.Streamlines, batchSize).Error; err != nil {
				return fmt.Errorf("insert streamlines: %w", err)
			}
		}
		if len(ledger.Impacts) > 0 {
			if err := tx.CreateInBatches(ledger.Impacts, batchSize).Error; err != nil {
				return fmt.Errorf("insert impacts: %w", err)
			}
		}
		if len(ledger.Diagnostics) > 0 {
			if err := tx.CreateInBatches(ledger.Diagnostics, batchSize).Error; err != nil {
				return fmt.Errorf("insert diagnostics: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.manager.DB.Dialector.Name() == "sqlite" {
		b.manager.SqliteFilePath = b.cfg.DumpPath
		if err := b.manager.DumpMemoryToDisk(); err != nil {
			return err
		}
	}
	return nil
}

// ExportedFilePath returns the SQLite dump path, if any.
func (b *Backend) ExportedFilePath() string {
	if b.manager.DB == nil || b.manager.DB.Dialector.Name() != "sqlite" {
		return ""
	}
	return b.cfg.DumpPath
}
