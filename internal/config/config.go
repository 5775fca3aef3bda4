package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// FileName is the config file looked up in the config directory.
const FileName = "exoclim.cfg.json"

// SimulationConfig selects the grid, mask source and months of a run
type SimulationConfig struct {
	Rows       int     `json:"rows" mapstructure:"rows"`
	Cols       int     `json:"cols" mapstructure:"cols"`
	Source     string  `json:"source" mapstructure:"source"`
	Seed       int64   `json:"seed" mapstructure:"seed"`
	Months     []int   `json:"months" mapstructure:"months"`
	DebugMonth int     `json:"debugMonth" mapstructure:"debugMonth"` // negative disables
	EcLatGap   float64 `json:"ecLatGap" mapstructure:"ecLatGap"`     // 0 uses physics.oceanEcLatGap
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
	Compression    string `json:"compression" mapstructure:"compression"` // gzip or zstd
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	DumpPath string `json:"dumpPath" mapstructure:"dumpPath"`
}

// StreamConfig holds websocket streaming settings
type StreamConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
	Frames bool   `json:"frames" mapstructure:"frames"`
}

// StorageConfig holds storage backend configuration
type StorageConfig struct {
	Type      string       `json:"type" mapstructure:"type"`
	Memory    MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
	WebSocket StreamConfig `json:"websocket" mapstructure:"websocket"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"sslmode" mapstructure:"sslmode"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds InfluxDB settings
type InfluxConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Host       string `json:"host" mapstructure:"host"`
	Port       string `json:"port" mapstructure:"port"`
	Protocol   string `json:"protocol" mapstructure:"protocol"`
	Token      string `json:"token" mapstructure:"token"`
	Org        string `json:"org" mapstructure:"org"`
	Bucket     string `json:"bucket" mapstructure:"bucket"`
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// GraylogConfig holds GELF output settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
	Level   string `json:"level" mapstructure:"level"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFileLevel", "debug")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("simulation.rows", 90)
	viper.SetDefault("simulation.cols", 180)
	viper.SetDefault("simulation.source", "procedural")
	viper.SetDefault("simulation.seed", 42)
	viper.SetDefault("simulation.months", []int{0, 6})
	viper.SetDefault("simulation.debugMonth", -1)
	viper.SetDefault("simulation.ecLatGap", 0.0)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "exoclim")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "exoclim")
	viper.SetDefault("influx.bucket", "exoclim_runs")
	viper.SetDefault("influx.backupPath", "./logs/influx_backup.lp.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
	viper.SetDefault("graylog.level", "info")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./runs")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.memory.compression", "gzip")
	viper.SetDefault("storage.sqlite.dumpPath", "./runs/exoclim.db")
	viper.SetDefault("storage.websocket.url", "ws://localhost:5000/api/v1/stream")
	viper.SetDefault("storage.websocket.secret", "")
	viper.SetDefault("storage.websocket.frames", false)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "exoclim")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetSimulationConfig returns the run selection.
func GetSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Rows:       viper.GetInt("simulation.rows"),
		Cols:       viper.GetInt("simulation.cols"),
		Source:     viper.GetString("simulation.source"),
		Seed:       viper.GetInt64("simulation.seed"),
		Months:     viper.GetIntSlice("simulation.months"),
		DebugMonth: viper.GetInt("simulation.debugMonth"),
		EcLatGap:   viper.GetFloat64("simulation.ecLatGap"),
	}
}

// GetPlanetParams returns the planet overlaid on Earth's defaults.
func GetPlanetParams() (core.PlanetParams, error) {
	p := core.EarthParams()
	if err := viper.UnmarshalKey("planet", &p); err != nil {
		return p, fmt.Errorf("error decoding planet: %w", err)
	}
	return p, nil
}

// GetAtmosphereParams returns the atmosphere overlaid on Earth's defaults.
func GetAtmosphereParams() (core.AtmosphereParams, error) {
	a := core.EarthAtmosphere()
	if err := viper.UnmarshalKey("atmosphere", &a); err != nil {
		return a, fmt.Errorf("error decoding atmosphere: %w", err)
	}
	return a, nil
}

// GetPhysicsParams returns the tunables overlaid on the defaults.
func GetPhysicsParams() (core.PhysicsParams, error) {
	p := core.DefaultPhysicsParams()
	if err := viper.UnmarshalKey("physics", &p); err != nil {
		return p, fmt.Errorf("error decoding physics: %w", err)
	}
	return p, p.Validate()
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
			Compression:    viper.GetString("storage.memory.compression"),
		},
		SQLite: SQLiteConfig{
			DumpPath: viper.GetString("storage.sqlite.dumpPath"),
		},
		WebSocket: GetStreamConfig(),
	}
}

// GetStreamConfig returns the websocket streaming configuration.
func GetStreamConfig() StreamConfig {
	return StreamConfig{
		URL:    viper.GetString("storage.websocket.url"),
		Secret: viper.GetString("storage.websocket.secret"),
		Frames: viper.GetBool("storage.websocket.frames"),
	}
}

// GetDBConfig returns the Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
		SSLMode:  viper.GetString("db.sslmode"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetGraylogConfig returns the GELF output configuration.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
		Level:   viper.GetString("graylog.level"),
	}
}
