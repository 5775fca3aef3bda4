// pkg/core/results.go
package core

import "time"

// ITCZResult is the seasonal ITCZ latitude for every month and column.
type ITCZResult struct {
	Lines          [Months][]float64 `json:"itczLines"`
	NorthPeak      []float64         `json:"northPeak"` // northern summer extreme, equals Lines[6]
	SouthPeak      []float64         `json:"southPeak"` // southern summer extreme, equals Lines[0]
	CellCount      int               `json:"cellCount"`
	HadleyWidthDeg float64           `json:"hadleyWidth"`
}

// WindBeltsResult describes the circulation belts and the wind parameters
// actually used.
type WindBeltsResult struct {
	HadleyEdgeDeg        float64        `json:"hadleyEdgeDeg"`
	CellBoundariesDeg    []float64      `json:"cellBoundariesDeg"`
	DoldrumsHalfWidthDeg float64        `json:"doldrumsHalfWidthDeg"`
	TradePeakOffsetDeg   float64        `json:"tradePeakOffsetDeg"`
	OceanEcLatGapDerived float64        `json:"oceanEcLatGapDerived"`
	ModelLevel           string         `json:"modelLevel"`
	ClampInfo            []string       `json:"clampInfo,omitempty"`
	ParamsUsed           map[string]any `json:"paramsUsed,omitempty"`
}

// StreamlinePoint is one recorded agent position. X is continuous and may leave
// [0, cols); Lon is normalised.
type StreamlinePoint struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	VX  float64 `json:"vx"`
	VY  float64 `json:"vy"`
}

// Streamline is the recorded trajectory of one ocean agent.
type Streamline struct {
	AgentID  int               `json:"agentId"`
	Kind     StreamlineKind    `json:"type"`
	Strength float64           `json:"strength"`
	Points   []StreamlinePoint `json:"points"`
}

// Impact is a coastal collision that may seed counter currents.
type Impact struct {
	X    float64    `json:"x"`
	Y    float64    `json:"y"`
	Lat  float64    `json:"lat"`
	Lon  float64    `json:"lon"`
	Kind ImpactKind `json:"type"`
}

// Diagnostic records an anomaly found while integrating currents.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"type"`
	Month   int            `json:"month"`
	AgentID int            `json:"agentId"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Lat     float64        `json:"lat"`
	Lon     float64        `json:"lon"`
	Age     int            `json:"age"`
	Message string         `json:"message"`
}

// AgentSnapshot is the state of one agent at the end of a macro-step.
type AgentSnapshot struct {
	ID    int        `json:"id"`
	Kind  AgentKind  `json:"type"`
	State AgentState `json:"state"`
	Cause string     `json:"cause,omitempty"`
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	VX    float64    `json:"vx"`
	VY    float64    `json:"vy"`
	Age   int        `json:"age"`
}

// DebugFrame holds every agent of one macro-step, including finished ones.
type DebugFrame struct {
	Step   int             `json:"step"`
	Phase  int             `json:"phase"`
	Agents []AgentSnapshot `json:"agents"`
}

// DebugData is the full-timeline capture of a single month.
type DebugData struct {
	Month          int          `json:"month"`
	Frames         []DebugFrame `json:"frames"`
	CollisionField []float64    `json:"collisionField"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	ITCZLine       []float64    `json:"itczLine"`
}

// MonthStats counts agent outcomes for one integrated month.
type MonthStats struct {
	Month        int            `json:"month"`
	EccSpawned   int            `json:"eccSpawned"`
	EcSpawned    int            `json:"ecSpawned"`
	Impacts      int            `json:"impacts"`
	Streamlines  int            `json:"streamlines"`
	Terminations map[string]int `json:"terminations"`
}

// OceanResult is the output of the current engine. Months that were not
// integrated hold empty, non-nil slices.
type OceanResult struct {
	Streamlines [Months][]Streamline `json:"streamlines"`
	Impacts     [Months][]Impact     `json:"impactPoints"`
	Diagnostics []Diagnostic         `json:"diagnostics"`
	Stats       []MonthStats         `json:"stats"`
	Debug       *DebugData           `json:"debugData,omitempty"`
	EcLatGapDeg float64              `json:"ecLatGapDeg"` // counter-current target gap actually traced with
}

// StageTiming is the wall time of one pipeline stage.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// RunInfo identifies one pipeline run and the inputs it was started with.
type RunInfo struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"startedAt"`
	Rows       int              `json:"rows"`
	Cols       int              `json:"cols"`
	Source     string           `json:"source"`
	Months     []int            `json:"months"`
	Planet     PlanetParams     `json:"planet"`
	Atmosphere AtmosphereParams `json:"atmosphere"`
	Physics    PhysicsParams    `json:"physics"`
}

// SimulationResult bundles the grid and every stage output of one run.
type SimulationResult struct {
	Run     RunInfo         `json:"run"`
	Grid    *Grid           `json:"-"`
	ITCZ    ITCZResult      `json:"itcz"`
	Wind    WindBeltsResult `json:"wind"`
	Ocean   OceanResult     `json:"ocean"`
	Timings []StageTiming   `json:"timings"`
}
