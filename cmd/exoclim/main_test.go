package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteain-ninia/ExoClim/internal/config"
	"github.com/asteain-ninia/ExoClim/internal/storage/gormstore"
	"github.com/asteain-ninia/ExoClim/internal/storage/memory"
	wsstorage "github.com/asteain-ninia/ExoClim/internal/storage/websocket"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFlagsOverrideDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()

	fs, opts := newFlagSet()
	require.NoError(t, fs.Parse([]string{
		"--config-dir", "/tmp/cfg",
		"--rows", "19",
		"--months", "3,9",
		"--source", "virtual_continent",
		"-s", "sqlite",
	}))
	require.NoError(t, bindFlags(fs))

	assert.Equal(t, "/tmp/cfg", opts.configDir)
	sim := config.GetSimulationConfig()
	assert.Equal(t, 19, sim.Rows)
	assert.Equal(t, 180, sim.Cols, "unset flags keep the config default")
	assert.Equal(t, []int{3, 9}, sim.Months)
	assert.Equal(t, "virtual_continent", sim.Source)
	assert.Equal(t, "sqlite", config.GetStorageConfig().Type)
}

func TestFlagBindingsExist(t *testing.T) {
	fs, _ := newFlagSet()
	for name := range flagBindings {
		assert.NotNil(t, fs.Lookup(name), name)
	}
}

func TestBuildRequest(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	viper.Set("simulation.source", "virtual_continent")
	viper.Set("simulation.debugMonth", 6)

	req, err := buildRequest()
	require.NoError(t, err)
	assert.Equal(t, 90, req.Rows)
	assert.Equal(t, "virtual_continent", req.SourceName)
	require.NotNil(t, req.DebugMonth)
	assert.Equal(t, 6, *req.DebugMonth)
	assert.True(t, req.Frames)
	assert.Equal(t, 6371.0, req.Planet.RadiusKm)
}

func TestBuildRequest_UnknownSource(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	viper.Set("simulation.source", "atlantis")

	_, err := buildRequest()
	assert.Error(t, err)
}

func TestCreateStorageBackend(t *testing.T) {
	cfg := config.StorageConfig{Memory: config.MemoryConfig{OutputDir: t.TempDir()}}

	b, err := createStorageBackend(cfg, zerolog.Nop(), quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	cfg.Type = "sqlite"
	b, err = createStorageBackend(cfg, zerolog.Nop(), quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &gormstore.Backend{}, b)
	require.NoError(t, b.Close())

	cfg.Type = "websocket"
	b, err = createStorageBackend(cfg, zerolog.Nop(), quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &wsstorage.Backend{}, b)

	cfg.Type = "carrier-pigeon"
	_, err = createStorageBackend(cfg, zerolog.Nop(), quietLogger())
	assert.Error(t, err)
}
