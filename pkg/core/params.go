// pkg/core/params.go
package core

import (
	"errors"
	"fmt"
)

// StandardPressureHPa is the sea-level reference pressure.
const StandardPressureHPa = 1013.0

// ErrInvalidParams is returned by Validate for unusable parameter sets.
var ErrInvalidParams = errors.New("invalid parameters")

// PlanetParams describes the planet body and its orbit.
type PlanetParams struct {
	RadiusKm            float64 `json:"radius" mapstructure:"radius"`
	Gravity             float64 `json:"gravity" mapstructure:"gravity"`
	RotationPeriodHours float64 `json:"rotationPeriod" mapstructure:"rotationPeriod"`
	ObliquityDeg        float64 `json:"obliquity" mapstructure:"obliquity"`
	Eccentricity        float64 `json:"eccentricity" mapstructure:"eccentricity"`
	SemiMajorAxisAU     float64 `json:"semiMajorAxis" mapstructure:"semiMajorAxis"`
	SolarLuminosity     float64 `json:"solarLuminosity" mapstructure:"solarLuminosity"`
	PerihelionAngleDeg  float64 `json:"perihelionAngle" mapstructure:"perihelionAngle"`
	Retrograde          bool    `json:"isRetrograde" mapstructure:"isRetrograde"`
	OrbitalPeriodHours  float64 `json:"orbitalPeriod" mapstructure:"orbitalPeriod"`
}

// AtmosphereParams describes the atmosphere bulk properties.
type AtmosphereParams struct {
	SurfacePressureBar  float64 `json:"surfacePressure" mapstructure:"surfacePressure"`
	GreenhouseFactor    float64 `json:"greenhouseFactor" mapstructure:"greenhouseFactor"`
	AlbedoLand          float64 `json:"albedoLand" mapstructure:"albedoLand"`
	AlbedoOcean         float64 `json:"albedoOcean" mapstructure:"albedoOcean"`
	AlbedoIce           float64 `json:"albedoIce" mapstructure:"albedoIce"`
	LapseRate           float64 `json:"lapseRate" mapstructure:"lapseRate"`
	HeatCapacityOcean   float64 `json:"heatCapacityOcean" mapstructure:"heatCapacityOcean"`
	MeridionalTransport float64 `json:"meridionalTransport" mapstructure:"meridionalTransport"`
}

// TradePeakOffsetMode selects how the trade-wind peak offset is derived.
type TradePeakOffsetMode string

const (
	TradePeakAbs        TradePeakOffsetMode = "abs"
	TradePeakHadleyFrac TradePeakOffsetMode = "hadleyFrac"
)

// EcGapMode selects how the equatorial counter-current target gap is chosen.
type EcGapMode string

const (
	EcGapManual  EcGapMode = "manual"
	EcGapDerived EcGapMode = "derivedFromTradePeak"
)

// PhysicsParams holds every tunable of the heuristic model.
type PhysicsParams struct {
	// ITCZ
	ItczSaturationDistKm float64 `json:"itczSaturationDist" mapstructure:"itczSaturationDist"`
	ItczAltitudeLimitKm  float64 `json:"itczAltitudeLimit" mapstructure:"itczAltitudeLimit"`
	ItczRefPressureHPa   float64 `json:"itczRefPressure" mapstructure:"itczRefPressure"`
	ItczRefYearHours     float64 `json:"itczRefYear" mapstructure:"itczRefYear"`
	ItczRefDayHours      float64 `json:"itczRefDay" mapstructure:"itczRefDay"`
	ItczInertiaExp       float64 `json:"itczInertiaExp" mapstructure:"itczInertiaExp"`
	ItczInertiaMin       float64 `json:"itczInertiaMin" mapstructure:"itczInertiaMin"`
	ItczInertiaMax       float64 `json:"itczInertiaMax" mapstructure:"itczInertiaMax"`
	ItczBaseSeaRatio     float64 `json:"itczBaseSeaRatio" mapstructure:"itczBaseSeaRatio"`
	ItczBaseLandRatio    float64 `json:"itczBaseLandRatio" mapstructure:"itczBaseLandRatio"`
	ItczSeaRatioCap      float64 `json:"itczSeaRatioCap" mapstructure:"itczSeaRatioCap"`
	ItczLandRatioCap     float64 `json:"itczLandRatioCap" mapstructure:"itczLandRatioCap"`
	ItczKernelAngleDeg   float64 `json:"itczKernelAngle" mapstructure:"itczKernelAngle"`
	ItczKernelMaxDeg     float64 `json:"itczKernelMax" mapstructure:"itczKernelMax"`
	CellRefRadiusKm      float64 `json:"cellRefRadius" mapstructure:"cellRefRadius"`
	CellRefRotationHours float64 `json:"cellRefRotation" mapstructure:"cellRefRotation"`
	CellRefCount         float64 `json:"cellRefCount" mapstructure:"cellRefCount"`
	CellMaxCount         int     `json:"cellMaxCount" mapstructure:"cellMaxCount"`

	// Wind
	WindHadleyWidthScale     float64             `json:"windHadleyWidthScale" mapstructure:"windHadleyWidthScale"`
	WindJetSpacingExp        float64             `json:"windJetSpacingExp" mapstructure:"windJetSpacingExp"`
	WindBaseSpeedEasterly    float64             `json:"windBaseSpeedEasterly" mapstructure:"windBaseSpeedEasterly"`
	WindBaseSpeedWesterly    float64             `json:"windBaseSpeedWesterly" mapstructure:"windBaseSpeedWesterly"`
	WindSpeedRotationExp     float64             `json:"windSpeedRotationExp" mapstructure:"windSpeedRotationExp"`
	WindItczConvergenceSpeed float64             `json:"windItczConvergenceSpeed" mapstructure:"windItczConvergenceSpeed"`
	WindItczConvergenceWidth float64             `json:"windItczConvergenceWidth" mapstructure:"windItczConvergenceWidth"`
	WindPressureAnomalyMax   float64             `json:"windPressureAnomalyMax" mapstructure:"windPressureAnomalyMax"`
	WindPressureBeltWidth    float64             `json:"windPressureBeltWidth" mapstructure:"windPressureBeltWidth"`
	WindBeltPressureFactor   float64             `json:"windBeltPressureFactor" mapstructure:"windBeltPressureFactor"`
	WindBasePressureHPa      float64             `json:"windBasePressure" mapstructure:"windBasePressure"`
	WindDoldrumsWidthDeg     float64             `json:"windDoldrumsWidthDeg" mapstructure:"windDoldrumsWidthDeg"`
	WindTradePeakOffsetMode  TradePeakOffsetMode `json:"windTradePeakOffsetMode" mapstructure:"windTradePeakOffsetMode"`
	WindTradePeakOffsetDeg   float64             `json:"windTradePeakOffsetDeg" mapstructure:"windTradePeakOffsetDeg"`
	WindTradePeakOffsetFrac  float64             `json:"windTradePeakOffsetFrac" mapstructure:"windTradePeakOffsetFrac"`
	WindTradePeakWidthDeg    float64             `json:"windTradePeakWidthDeg" mapstructure:"windTradePeakWidthDeg"`
	WindTradeMinOffsetDeg    float64             `json:"windTradeMinOffsetDeg" mapstructure:"windTradeMinOffsetDeg"`
	WindTropicalUCap         float64             `json:"windTropicalUCap" mapstructure:"windTropicalUCap"`
	WindOceanEcGapMode       EcGapMode           `json:"windOceanEcGapMode" mapstructure:"windOceanEcGapMode"`
	WindOceanEcGapClampMin   float64             `json:"windOceanEcGapClampMin" mapstructure:"windOceanEcGapClampMin"`
	WindOceanEcGapClampMax   float64             `json:"windOceanEcGapClampMax" mapstructure:"windOceanEcGapClampMax"`

	// Ocean: integration
	OceanStreamlineSteps int     `json:"oceanStreamlineSteps" mapstructure:"oceanStreamlineSteps"`
	OceanSubSteps        int     `json:"oceanSubSteps" mapstructure:"oceanSubSteps"`
	OceanMacroDT         float64 `json:"oceanMacroDt" mapstructure:"oceanMacroDt"`
	OceanBaseSpeed       float64 `json:"oceanBaseSpeed" mapstructure:"oceanBaseSpeed"`
	OceanMaxSpeedMult    float64 `json:"oceanMaxSpeedMultiplier" mapstructure:"oceanMaxSpeedMultiplier"`
	OceanZeroSpeedEps    float64 `json:"oceanZeroSpeedEps" mapstructure:"oceanZeroSpeedEps"`
	OceanStrength        float64 `json:"oceanStrength" mapstructure:"oceanStrength"`

	// Ocean: collision field
	OceanCollisionBufferKm float64 `json:"oceanCollisionBuffer" mapstructure:"oceanCollisionBuffer"`
	OceanSmoothing         int     `json:"oceanSmoothing" mapstructure:"oceanSmoothing"`
	OceanBisectIterations  int     `json:"oceanBisectIterations" mapstructure:"oceanBisectIterations"`
	OceanPushOut           float64 `json:"oceanPushOut" mapstructure:"oceanPushOut"`
	OceanMinGradient       float64 `json:"oceanMinGradient" mapstructure:"oceanMinGradient"`
	OceanImpactThreshold   float64 `json:"oceanImpactThreshold" mapstructure:"oceanImpactThreshold"`
	OceanCoastFacing       float64 `json:"oceanCoastFacing" mapstructure:"oceanCoastFacing"`

	// Ocean: phase 1 (equatorial currents)
	OceanPatternForce      float64 `json:"oceanPatternForce" mapstructure:"oceanPatternForce"`
	OceanEccDrive          float64 `json:"oceanEccDrive" mapstructure:"oceanEccDrive"`
	OceanDeflectLat        float64 `json:"oceanDeflectLat" mapstructure:"oceanDeflectLat"`
	OceanSpawnMinDepthKm   float64 `json:"oceanSpawnMinDepth" mapstructure:"oceanSpawnMinDepth"`
	OceanSpawnColumnsDiv   int     `json:"oceanSpawnColumnsDivisor" mapstructure:"oceanSpawnColumnsDivisor"`
	OceanEccStagnation     int     `json:"oceanEccStagnation" mapstructure:"oceanEccStagnation"`
	OceanEccPolarExitLat   float64 `json:"oceanEccPolarExitLat" mapstructure:"oceanEccPolarExitLat"`
	OceanSpawnOffset       float64 `json:"oceanSpawnOffset" mapstructure:"oceanSpawnOffset"`
	OceanSafeSpawnDepthKm  float64 `json:"oceanSafeSpawnDepth" mapstructure:"oceanSafeSpawnDepth"`
	OceanSafeSpawnSearch   int     `json:"oceanSafeSpawnSearch" mapstructure:"oceanSafeSpawnSearch"`
	OceanSafeSpawnFallback float64 `json:"oceanSafeSpawnFallback" mapstructure:"oceanSafeSpawnFallback"`

	// Ocean: phase 2 (counter currents)
	OceanEcLatGap          float64 `json:"oceanEcLatGap" mapstructure:"oceanEcLatGap"`
	OceanEcPatternForce    float64 `json:"oceanEcPatternForce" mapstructure:"oceanEcPatternForce"`
	OceanEcDamping         float64 `json:"oceanEcDamping" mapstructure:"oceanEcDamping"`
	OceanSpawnSpeedMult    float64 `json:"oceanSpawnSpeedMultiplier" mapstructure:"oceanSpawnSpeedMultiplier"`
	OceanCrawlSpeedMult    float64 `json:"oceanCrawlSpeedMultiplier" mapstructure:"oceanCrawlSpeedMultiplier"`
	OceanCrawlGain         float64 `json:"oceanCrawlGain" mapstructure:"oceanCrawlGain"`
	OceanCrawlRepulse      float64 `json:"oceanCrawlRepulse" mapstructure:"oceanCrawlRepulse"`
	OceanCrawlFallbackGain float64 `json:"oceanCrawlFallbackGain" mapstructure:"oceanCrawlFallbackGain"`
	OceanCrawlLatDeg       float64 `json:"oceanCrawlLatThreshold" mapstructure:"oceanCrawlLatThreshold"`
	OceanCoastSenseKm      float64 `json:"oceanCoastSense" mapstructure:"oceanCoastSense"`
	OceanInertiaX          float64 `json:"oceanInertiaX" mapstructure:"oceanInertiaX"`
	OceanRepulseStrength   float64 `json:"oceanRepulseStrength" mapstructure:"oceanRepulseStrength"`
	OceanArrivalMinSpeed   float64 `json:"oceanArrivalMinSpeed" mapstructure:"oceanArrivalMinSpeed"`
	OceanSlideFriction     float64 `json:"oceanSlideFriction" mapstructure:"oceanSlideFriction"`
	OceanEcStagnation      int     `json:"oceanEcStagnation" mapstructure:"oceanEcStagnation"`
	OceanEcPolarExitLat    float64 `json:"oceanEcPolarExitLat" mapstructure:"oceanEcPolarExitLat"`
	OceanEcImpactStride    int     `json:"oceanEcImpactStride" mapstructure:"oceanEcImpactStride"`

	// Ocean: lifecycle
	OceanStagnationFactor float64 `json:"oceanStagnationFactor" mapstructure:"oceanStagnationFactor"`
	OceanPruneSimilarity  float64 `json:"oceanPruneSimilarity" mapstructure:"oceanPruneSimilarity"`
	OceanPruneMinPoints   int     `json:"oceanPruneMinPoints" mapstructure:"oceanPruneMinPoints"`
	OceanMinLinePoints    int     `json:"oceanMinLinePoints" mapstructure:"oceanMinLinePoints"`
	OceanSpawnDeathAge    int     `json:"oceanSpawnDeathAge" mapstructure:"oceanSpawnDeathAge"`
	OceanEarlyArrivalAge  int     `json:"oceanEarlyArrivalAge" mapstructure:"oceanEarlyArrivalAge"`
}

// EarthParams returns the planet parameters of Earth.
func EarthParams() PlanetParams {
	return PlanetParams{
		RadiusKm:            6371,
		Gravity:             9.81,
		RotationPeriodHours: 24,
		ObliquityDeg:        23.44,
		Eccentricity:        0.0167,
		SemiMajorAxisAU:     1,
		SolarLuminosity:     1,
		PerihelionAngleDeg:  283,
		Retrograde:          false,
		OrbitalPeriodHours:  8760,
	}
}

// EarthAtmosphere returns the atmosphere parameters of Earth.
func EarthAtmosphere() AtmosphereParams {
	return AtmosphereParams{
		SurfacePressureBar:  1.0,
		GreenhouseFactor:    1.0,
		AlbedoLand:          0.28,
		AlbedoOcean:         0.06,
		AlbedoIce:           0.55,
		LapseRate:           6.5,
		HeatCapacityOcean:   1.0,
		MeridionalTransport: 35,
	}
}

// DefaultPhysicsParams returns the tuned defaults for an Earth-like planet.
func DefaultPhysicsParams() PhysicsParams {
	return PhysicsParams{
		ItczSaturationDistKm: 2000,
		ItczAltitudeLimitKm:  5,
		ItczRefPressureHPa:   1013,
		ItczRefYearHours:     8760,
		ItczRefDayHours:      24,
		ItczInertiaExp:       0.5,
		ItczInertiaMin:       0.05,
		ItczInertiaMax:       1.5,
		ItczBaseSeaRatio:     0.2,
		ItczBaseLandRatio:    0.9,
		ItczSeaRatioCap:      0.8,
		ItczLandRatioCap:     1.0,
		ItczKernelAngleDeg:   15,
		ItczKernelMaxDeg:     60,
		CellRefRadiusKm:      6371,
		CellRefRotationHours: 24,
		CellRefCount:         3,
		CellMaxCount:         15,

		WindHadleyWidthScale:     1.0,
		WindJetSpacingExp:        1.2,
		WindBaseSpeedEasterly:    5.0,
		WindBaseSpeedWesterly:    8.0,
		WindSpeedRotationExp:     0.5,
		WindItczConvergenceSpeed: 2.0,
		WindItczConvergenceWidth: 10.0,
		WindPressureAnomalyMax:   20.0,
		WindPressureBeltWidth:    8.0,
		WindBeltPressureFactor:   0.8,
		WindBasePressureHPa:      StandardPressureHPa,
		WindDoldrumsWidthDeg:     6.0,
		WindTradePeakOffsetMode:  TradePeakAbs,
		WindTradePeakOffsetDeg:   8.0,
		WindTradePeakOffsetFrac:  0.25,
		WindTradePeakWidthDeg:    10.0,
		WindTradeMinOffsetDeg:    0.1,
		WindTropicalUCap:         10.0,
		WindOceanEcGapMode:       EcGapManual,
		WindOceanEcGapClampMin:   2.0,
		WindOceanEcGapClampMax:   20.0,

		OceanStreamlineSteps: 500,
		OceanSubSteps:        10,
		OceanMacroDT:         0.5,
		OceanBaseSpeed:       1.0,
		OceanMaxSpeedMult:    3.0,
		OceanZeroSpeedEps:    1e-6,
		OceanStrength:        2.0,

		OceanCollisionBufferKm: 200,
		OceanSmoothing:         2,
		OceanBisectIterations:  4,
		OceanPushOut:           0.1,
		OceanMinGradient:       1e-4,
		OceanImpactThreshold:   0.05,
		OceanCoastFacing:       -0.2,

		OceanPatternForce:      0.1,
		OceanEccDrive:          0.05,
		OceanDeflectLat:        15,
		OceanSpawnMinDepthKm:   -20,
		OceanSpawnColumnsDiv:   64,
		OceanEccStagnation:     20,
		OceanEccPolarExitLat:   88,
		OceanSpawnOffset:       15,
		OceanSafeSpawnDepthKm:  -30,
		OceanSafeSpawnSearch:   60,
		OceanSafeSpawnFallback: 10,

		OceanEcLatGap:          7.5,
		OceanEcPatternForce:    0.15,
		OceanEcDamping:         0.2,
		OceanSpawnSpeedMult:    0.8,
		OceanCrawlSpeedMult:    1.2,
		OceanCrawlGain:         0.2,
		OceanCrawlRepulse:      0.1,
		OceanCrawlFallbackGain: 0.05,
		OceanCrawlLatDeg:       2,
		OceanCoastSenseKm:      -60,
		OceanInertiaX:          0.05,
		OceanRepulseStrength:   0.5,
		OceanArrivalMinSpeed:   0.1,
		OceanSlideFriction:     0.9,
		OceanEcStagnation:      30,
		OceanEcPolarExitLat:    85,
		OceanEcImpactStride:    5,

		OceanStagnationFactor: 0.05,
		OceanPruneSimilarity:  0.95,
		OceanPruneMinPoints:   5,
		OceanMinLinePoints:    6,
		OceanSpawnDeathAge:    5,
		OceanEarlyArrivalAge:  20,
	}
}

// Validate rejects parameter sets the ocean integrator cannot run with.
func (p PhysicsParams) Validate() error {
	switch {
	case p.OceanSubSteps < 1:
		return fmt.Errorf("%w: oceanSubSteps must be >= 1", ErrInvalidParams)
	case p.OceanMacroDT <= 0:
		return fmt.Errorf("%w: oceanMacroDt must be > 0", ErrInvalidParams)
	case p.OceanStreamlineSteps < 0:
		return fmt.Errorf("%w: oceanStreamlineSteps must be >= 0", ErrInvalidParams)
	case p.OceanSmoothing < 0:
		return fmt.Errorf("%w: oceanSmoothing must be >= 0", ErrInvalidParams)
	case p.OceanEcImpactStride < 1:
		return fmt.Errorf("%w: oceanEcImpactStride must be >= 1", ErrInvalidParams)
	case p.OceanSpawnColumnsDiv < 1:
		return fmt.Errorf("%w: oceanSpawnColumnsDivisor must be >= 1", ErrInvalidParams)
	case p.WindTradePeakOffsetMode != TradePeakAbs && p.WindTradePeakOffsetMode != TradePeakHadleyFrac:
		return fmt.Errorf("%w: unknown windTradePeakOffsetMode %q", ErrInvalidParams, p.WindTradePeakOffsetMode)
	case p.WindOceanEcGapMode != EcGapManual && p.WindOceanEcGapMode != EcGapDerived:
		return fmt.Errorf("%w: unknown windOceanEcGapMode %q", ErrInvalidParams, p.WindOceanEcGapMode)
	}
	return nil
}
