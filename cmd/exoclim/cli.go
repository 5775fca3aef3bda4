package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagBindings maps command line flags to config keys.
var flagBindings = map[string]string{
	"log-level":      "logLevel",
	"log-file-level": "logFileLevel",
	"logs-dir":       "logsDir",
	"rows":           "simulation.rows",
	"cols":           "simulation.cols",
	"source":         "simulation.source",
	"seed":           "simulation.seed",
	"months":         "simulation.months",
	"debug-month":    "simulation.debugMonth",
	"ec-lat-gap":     "simulation.ecLatGap",
	"storage":        "storage.type",
	"output-dir":     "storage.memory.outputDir",
	"stream-url":     "storage.websocket.url",
	"frames":         "storage.websocket.frames",
	"influx":         "influx.enabled",
	"otel":           "otel.enabled",
}

// options are the flags that are not config keys.
type options struct {
	configDir string
	version   bool
}

func newFlagSet() (*pflag.FlagSet, *options) {
	opts := &options{}
	fs := pflag.NewFlagSet("exoclim", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: exoclim [flags]\n\nRuns one climate simulation and records it in the configured ledger.\n\n")
		fs.PrintDefaults()
	}

	fs.StringVarP(&opts.configDir, "config-dir", "c", ".", "directory containing exoclim.cfg.json")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	fs.String("log-level", "info", "console log level (debug, info, warn, error)")
	fs.String("log-file-level", "debug", "run log file level")
	fs.String("logs-dir", "./logs", "directory for run log files")
	fs.Int("rows", 90, "grid rows")
	fs.Int("cols", 180, "grid columns")
	fs.String("source", "procedural", "map source (procedural, procedural_perlin, virtual_continent)")
	fs.Int64("seed", 42, "procedural map seed")
	fs.IntSlice("months", []int{0, 6}, "months to trace ocean currents for")
	fs.Int("debug-month", -1, "trace only this month and capture every frame")
	fs.Float64("ec-lat-gap", 0, "counter-current latitude gap override in degrees")
	fs.StringP("storage", "s", "memory", "ledger backend (memory, sqlite, postgres, websocket)")
	fs.String("output-dir", "./runs", "output directory of the memory backend")
	fs.String("stream-url", "ws://localhost:5000/api/v1/stream", "viewer websocket URL")
	fs.Bool("frames", false, "stream ocean frames to the viewer")
	fs.Bool("influx", false, "write run metrics to InfluxDB")
	fs.Bool("otel", false, "export logs through OpenTelemetry")
	return fs, opts
}

// bindFlags binds every flag in flagBindings into viper.
func bindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagBindings {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
