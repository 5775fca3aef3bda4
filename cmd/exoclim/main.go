package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/asteain-ninia/ExoClim/internal/config"
	"github.com/asteain-ninia/ExoClim/internal/dispatcher"
	"github.com/asteain-ninia/ExoClim/internal/influx"
	"github.com/asteain-ninia/ExoClim/internal/logging"
	intOtel "github.com/asteain-ninia/ExoClim/internal/otel"
	"github.com/asteain-ninia/ExoClim/internal/pipeline"
	"github.com/asteain-ninia/ExoClim/internal/run"
	"github.com/asteain-ninia/ExoClim/internal/storage"
	"github.com/asteain-ninia/ExoClim/internal/terrain"
	"github.com/asteain-ninia/ExoClim/internal/worker"
)

// BuildDate can be set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "unknown"

	AppName = "exoclim"
)

var (
	SlogManager *logging.SlogManager
	Logger      *slog.Logger

	OTelProvider *intOtel.Provider

	SessionStartTime = time.Now()
	LogFilePath      string

	// runCtx carries the active run into every log record
	runCtx *run.Context
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "exoclim:", err)
		os.Exit(1)
	}
}

func execute(args []string) error {
	fs, opts := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.version {
		fmt.Printf("exoclim %s (built %s)\n", Version, BuildDate)
		return nil
	}

	// console logging until the config is known
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(opts.configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}
	if err := bindFlags(fs); err != nil {
		return err
	}

	logFile, closeLogs := setupLogging()
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return simulate(ctx, logFile)
}

// setupLogging opens the run log file and rebuilds the logger with every
// configured output. The returned func flushes and closes them.
func setupLogging() (io.Writer, func()) {
	level := viper.GetString("logLevel")
	logsDir := viper.GetString("logsDir")

	var logFile *os.File
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		Logger.Error("Failed to create logs directory", "error", err, "path", logsDir)
	} else {
		LogFilePath = logging.LogFilePath(logsDir, AppName, SessionStartTime)
		logFile, err = os.OpenFile(LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			Logger.Error("Failed to create/open log file!", "error", err, "path", LogFilePath)
		}
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		var w io.Writer
		if logFile != nil {
			w = logFile
		}
		var err error
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			RunID:        SessionStartTime.Format("20060102_150405"),
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    w,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
			OTelProvider = nil
		} else {
			Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	var extra []logging.Sink
	if logFile != nil {
		extra = append(extra, logging.ConsoleSink(level))
	}
	if gl := config.GetGraylogConfig(); gl.Enabled {
		sink, err := logging.NewGelfSink(gl.Address, gl.Level)
		if err != nil {
			Logger.Error("Failed to set up Graylog output", "error", err)
		} else {
			extra = append(extra, sink)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	runCtx = run.NewContext()
	SlogManager.SetContextProvider(logging.RunAttrs(runCtx))
	SlogManager.SetFileLevel(viper.GetString("logFileLevel"))
	var out io.Writer
	if logFile != nil {
		out = logFile
	}
	SlogManager.Setup(out, level, otelLogProvider, extra...)
	Logger = SlogManager.Logger()
	if logFile != nil {
		Logger.Info("Logging to file", "path", LogFilePath)
	}

	var zw io.Writer = os.Stderr
	if logFile != nil {
		zw = logFile
	}
	return zw, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := SlogManager.Flush(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "failed to flush logs:", err)
		}
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "failed to shut down otel:", err)
		}
		if logFile != nil {
			logFile.Close()
		}
	}
}

// simulate wires the sinks, runs the pipeline and closes the sinks again.
func simulate(ctx context.Context, zlogOut io.Writer) error {
	level := viper.GetString("logLevel")

	req, err := buildRequest()
	if err != nil {
		return err
	}

	eventDispatcher, err := dispatcher.New(logging.NewEventLogger(logging.NewZerolog(zlogOut, level, "dispatcher")))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	storageCfg := config.GetStorageConfig()
	backend, err := createStorageBackend(storageCfg, logging.NewZerolog(zlogOut, level, "database"), Logger)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		// a run without a ledger still produces its summary
		Logger.Error("Failed to initialize storage backend, continuing without it", "type", storageCfg.Type, "error", err)
		backend = nil
	}

	var influxManager *influx.Manager
	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		influxManager = influx.NewManager(logging.NewZerolog(zlogOut, level, "influx"), influxCfg)
		if err := influxManager.Connect(ctx); err != nil {
			Logger.Warn("InfluxDB unavailable", "error", err)
			influxManager = nil
		}
	}

	workerManager := worker.NewManager(worker.Dependencies{
		Logger:  Logger,
		Backend: backend,
		Influx:  influxManager,
	})
	workerManager.RegisterHandlers(eventDispatcher)

	metrics := pipeline.NoopMetrics()
	if OTelProvider != nil {
		metrics, err = pipeline.NewMetrics(OTelProvider.Meter("github.com/asteain-ninia/ExoClim/internal/pipeline"))
		if err != nil {
			return err
		}
	}

	runner := pipeline.New(pipeline.Dependencies{
		Logger:     Logger,
		Metrics:    metrics,
		Events:     eventDispatcher,
		RunContext: runCtx,
		Progress: func(percent int, label, stage string) {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", percent, label)
		},
	})

	res, runErr := runner.Run(ctx, req)

	// drain queued sink work before closing the sinks
	eventDispatcher.Close()
	closeSinks(backend, influxManager)

	if runErr != nil {
		return runErr
	}

	streamlines, impacts := 0, 0
	for m := range res.Ocean.Streamlines {
		streamlines += len(res.Ocean.Streamlines[m])
		impacts += len(res.Ocean.Impacts[m])
	}
	fmt.Printf("run %s: %d cells, %d itcz cells, %d streamlines, %d impacts, %d diagnostics\n",
		res.Run.ID, res.Grid.Len(), res.ITCZ.CellCount, streamlines, impacts, len(res.Ocean.Diagnostics))
	if ex, ok := backend.(storage.Exportable); ok && ex.ExportedFilePath() != "" {
		fmt.Printf("ledger: %s\n", ex.ExportedFilePath())
	}
	return nil
}

func closeSinks(backend storage.Backend, influxManager *influx.Manager) {
	if backend != nil {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}
	if influxManager != nil {
		if err := influxManager.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB", "error", err)
		}
	}
}

// buildRequest assembles the pipeline request from the loaded config.
func buildRequest() (pipeline.Request, error) {
	sim := config.GetSimulationConfig()

	planet, err := config.GetPlanetParams()
	if err != nil {
		return pipeline.Request{}, err
	}
	atm, err := config.GetAtmosphereParams()
	if err != nil {
		return pipeline.Request{}, err
	}
	phys, err := config.GetPhysicsParams()
	if err != nil {
		return pipeline.Request{}, err
	}

	source, err := terrain.FromName(sim.Source, sim.Seed)
	if err != nil {
		return pipeline.Request{}, err
	}

	req := pipeline.Request{
		Rows:       sim.Rows,
		Cols:       sim.Cols,
		Source:     source,
		SourceName: source.Name(),
		Planet:     planet,
		Atmosphere: atm,
		Physics:    phys,
		Months:     sim.Months,
		EcLatGap:   sim.EcLatGap,
		Frames:     config.GetStreamConfig().Frames,
	}
	if sim.DebugMonth >= 0 {
		month := sim.DebugMonth
		req.DebugMonth = &month
		req.Frames = true
	}
	return req, nil
}
