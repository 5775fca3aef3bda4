package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// swapped by tests
var (
	osStdout = os.Stdout
	osPipe   = os.Pipe
)

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider

	contextProvider ContextProvider
	fileLevel       string
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// handlerOptions formats times as UTC RFC3339.
func handlerOptions(lvl slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}
}

// SetContextProvider installs a provider whose attributes are added to every
// record. It takes effect on the next Setup.
func (m *SlogManager) SetContextProvider(p ContextProvider) {
	m.contextProvider = p
}

// SetFileLevel sets the threshold of the file sink. Empty follows the level
// passed to Setup. It takes effect on the next Setup.
func (m *SlogManager) SetFileLevel(level string) {
	m.fileLevel = level
}

// ConsoleSink writes text records to stdout at or above level.
func ConsoleSink(level string) Sink {
	return NewTextSink("console", osStdout, level)
}

// Setup initializes the logging system. Records go to file when one is given,
// to stdout otherwise, and additionally to OTel (if provider is non-nil) and
// every extra sink.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider, extra ...Sink) {
	m.logProvider = provider

	var sinks []Sink

	if file != nil {
		fileLevel := level
		if m.fileLevel != "" {
			fileLevel = m.fileLevel
		}
		sinks = append(sinks, NewTextSink("file", file, fileLevel))
	} else {
		sinks = append(sinks, ConsoleSink(level))
	}

	if provider != nil {
		otelHandler := otelslog.NewHandler("exoclim", otelslog.WithLoggerProvider(provider))
		sinks = append(sinks, NewSink("otel", otelHandler, level))
	}

	sinks = append(sinks, extra...)

	var h slog.Handler = NewMultiHandler(sinks...)
	if m.contextProvider != nil {
		h = NewContextHandler(h, m.contextProvider)
	}

	m.logger = slog.New(h)
	m.logger.Info("Logging initialized", "level", level)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
