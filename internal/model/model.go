// Package model holds the GORM schema of the run ledger.
package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Run{},
	&StageTiming{},
	&MonthStat{},
	&StreamlineRecord{},
	&ImpactRecord{},
	&DiagnosticRecord{},
	&FrameRecord{},
}

// DatabaseModelsSQLite is the schema migrated on SQLite. Geometry columns
// hold WKB blobs there.
var DatabaseModelsSQLite = DatabaseModels

// Run status values.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"
)

// Run is one pipeline invocation and the parameters it used
type Run struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	StartedAt    time.Time      `json:"startedAt" gorm:"index:idx_run_started"`
	EndedAt      *time.Time     `json:"endedAt"`
	Status       string         `json:"status" gorm:"size:16;default:running"`
	Error        string         `json:"error" gorm:"size:1024"`
	Rows         int            `json:"rows"`
	Cols         int            `json:"cols"`
	Source       string         `json:"source" gorm:"size:64"`
	Months       datatypes.JSON `json:"months"`
	Planet       datatypes.JSON `json:"planet"`
	Atmosphere   datatypes.JSON `json:"atmosphere"`
	Physics      datatypes.JSON `json:"physics"`
	CellCount    int            `json:"cellCount"`
	HadleyWidth  float64        `json:"hadleyWidth"`
	HadleyEdge   float64        `json:"hadleyEdge"`
	EcLatGap     float64        `json:"ecLatGap"`
	ItczLines    datatypes.JSON `json:"itczLines"`
	CellBoundary datatypes.JSON `json:"cellBoundaries"`
}

func (*Run) TableName() string {
	return "runs"
}

// StageTiming is the wall time spent in one pipeline stage
type StageTiming struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID      string    `json:"runId" gorm:"size:36;index:idx_stagetiming_run_id"`
	Run        Run       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Stage      string    `json:"stage" gorm:"size:32"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs float64   `json:"durationMs"`
}

func (*StageTiming) TableName() string {
	return "stage_timings"
}

// MonthStat counts the ocean agent outcomes of one month
type MonthStat struct {
	ID           uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID        string         `json:"runId" gorm:"size:36;index:idx_monthstat_run_id"`
	Run          Run            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Month        int            `json:"month"`
	EccSpawned   int            `json:"eccSpawned"`
	EcSpawned    int            `json:"ecSpawned"`
	Impacts      int            `json:"impacts"`
	Streamlines  int            `json:"streamlines"`
	Terminations datatypes.JSON `json:"terminations"`
}

func (*MonthStat) TableName() string {
	return "month_stats"
}

// StreamlineRecord is one recorded agent trajectory
type StreamlineRecord struct {
	ID         uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID      string          `json:"runId" gorm:"size:36;index:idx_streamline_run_month"`
	Run        Run             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Month      int             `json:"month" gorm:"index:idx_streamline_run_month"`
	AgentID    int             `json:"agentId"`
	Kind       string          `json:"type" gorm:"size:16"`
	Strength   float64         `json:"strength"`
	PointCount int             `json:"pointCount"`
	LengthKm   float64         `json:"lengthKm"`
	Path       geom.LineString `json:"-" gorm:"type:geometry"` // EPSG:4326, longitudes unwrapped
	PathWKT    string          `json:"path" gorm:"type:text"`
}

func (*StreamlineRecord) TableName() string {
	return "streamlines"
}

// ImpactRecord is a coastal collision of an ocean agent
type ImpactRecord struct {
	ID       uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID    string     `json:"runId" gorm:"size:36;index:idx_impact_run_month"`
	Run      Run        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Month    int        `json:"month" gorm:"index:idx_impact_run_month"`
	Kind     string     `json:"type" gorm:"size:8"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Position geom.Point `json:"position" gorm:"type:geometry"` // EPSG:3857
}

func (*ImpactRecord) TableName() string {
	return "impacts"
}

// DiagnosticRecord is an anomaly reported by the current engine
type DiagnosticRecord struct {
	ID       uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID    string     `json:"runId" gorm:"size:36;index:idx_diagnostic_run_id"`
	Run      Run        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Month    int        `json:"month"`
	Kind     string     `json:"type" gorm:"size:32"`
	AgentID  int        `json:"agentId"`
	Age      int        `json:"age"`
	Lat      float64    `json:"lat"`
	Lon      float64    `json:"lon"`
	Message  string     `json:"message" gorm:"size:255"`
	Position geom.Point `json:"position" gorm:"type:geometry"` // EPSG:3857
}

func (*DiagnosticRecord) TableName() string {
	return "diagnostics"
}

// FrameRecord is one debug macro-step with every agent snapshot
type FrameRecord struct {
	ID     uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID  string         `json:"runId" gorm:"size:36;index:idx_frame_run_step"`
	Run    Run            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	Month  int            `json:"month"`
	Step   int            `json:"step" gorm:"index:idx_frame_run_step"`
	Phase  int            `json:"phase"`
	Agents datatypes.JSON `json:"agents"`
}

func (*FrameRecord) TableName() string {
	return "ocean_frames"
}
