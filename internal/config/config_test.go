package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"simulation": { "rows": 45, "source": "virtual_continent" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 45, viper.GetInt("simulation.rows"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "debug", viper.GetString("logFileLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "exoclim", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./runs", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "exoclim", viper.GetString("otel.serviceName"))
	assert.Equal(t, "5s", viper.GetString("otel.batchTimeout"))
	assert.Equal(t, true, viper.GetBool("otel.insecure"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	var notFound viper.ConfigFileNotFoundError
	assert.True(t, errors.As(err, &notFound), "callers can tolerate a missing file")

	// defaults are still registered
	assert.Equal(t, 90, viper.GetInt("simulation.rows"))
}

func TestGetters(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	viper.Set("testInt", 42)
	viper.Set("testBool", true)

	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 42, GetInt("testInt"))
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetSimulationConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"simulation": { "cols": 72, "seed": 7, "months": [0, 3, 6, 9], "debugMonth": 6, "ecLatGap": 7.5 }
	}`)))

	sc := GetSimulationConfig()
	assert.Equal(t, 90, sc.Rows)
	assert.Equal(t, 72, sc.Cols)
	assert.Equal(t, "procedural", sc.Source)
	assert.Equal(t, int64(7), sc.Seed)
	assert.Equal(t, []int{0, 3, 6, 9}, sc.Months)
	assert.Equal(t, 6, sc.DebugMonth)
	assert.Equal(t, 7.5, sc.EcLatGap)
}

func TestGetParams_OverlayDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"planet": { "radius": 3389.5, "isRetrograde": true },
		"atmosphere": { "surfacePressure": 0.006 },
		"physics": { "oceanSubSteps": 20, "windOceanEcGapMode": "derivedFromTradePeak" }
	}`)))

	planet, err := GetPlanetParams()
	require.NoError(t, err)
	assert.Equal(t, 3389.5, planet.RadiusKm)
	assert.True(t, planet.Retrograde)
	assert.Equal(t, core.EarthParams().ObliquityDeg, planet.ObliquityDeg)

	atm, err := GetAtmosphereParams()
	require.NoError(t, err)
	assert.Equal(t, 0.006, atm.SurfacePressureBar)

	phys, err := GetPhysicsParams()
	require.NoError(t, err)
	assert.Equal(t, 20, phys.OceanSubSteps)
	assert.Equal(t, core.EcGapDerived, phys.WindOceanEcGapMode)
	assert.Equal(t, core.DefaultPhysicsParams().OceanMacroDT, phys.OceanMacroDT)
}

func TestGetPhysicsParams_Invalid(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{ "physics": { "oceanSubSteps": 0 } }`)))

	_, err := GetPhysicsParams()
	assert.True(t, errors.Is(err, core.ErrInvalidParams))
}

func TestGetStorageConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetStorageConfig()
	assert.Equal(t, "memory", cfg.Type)
	assert.Equal(t, "./runs", cfg.Memory.OutputDir)
	assert.Equal(t, true, cfg.Memory.CompressOutput)
	assert.Equal(t, "gzip", cfg.Memory.Compression)
	assert.Equal(t, "./runs/exoclim.db", cfg.SQLite.DumpPath)
	assert.False(t, cfg.WebSocket.Frames)
}

func TestGetStorageConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false, "compression": "zstd" },
			"sqlite": { "dumpPath": "/tmp/runs.db" },
			"websocket": { "url": "ws://viewer/stream", "secret": "s3", "frames": true }
		}
	}`)))

	sc := GetStorageConfig()
	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/out", sc.Memory.OutputDir)
	assert.Equal(t, false, sc.Memory.CompressOutput)
	assert.Equal(t, "zstd", sc.Memory.Compression)
	assert.Equal(t, "/tmp/runs.db", sc.SQLite.DumpPath)
	assert.Equal(t, StreamConfig{URL: "ws://viewer/stream", Secret: "s3", Frames: true}, sc.WebSocket)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "exoclim", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetInfluxAndGraylogConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"influx": { "enabled": true, "host": "influx", "bucket": "runs" },
		"graylog": { "enabled": true, "address": "graylog:12201" }
	}`)))

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "influx", ic.Host)
	assert.Equal(t, "8086", ic.Port)
	assert.Equal(t, "runs", ic.Bucket)
	assert.Equal(t, "exoclim", ic.Org)

	gc := GetGraylogConfig()
	assert.Equal(t, GraylogConfig{Enabled: true, Address: "graylog:12201", Level: "info"}, gc)

	db := GetDBConfig()
	assert.Equal(t, "disable", db.SSLMode)
}
