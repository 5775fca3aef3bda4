package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGelfSink returns a sink that ships JSON records at or above level to a
// Graylog GELF UDP input at addr.
func NewGelfSink(addr, level string) (Sink, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return Sink{}, fmt.Errorf("failed to open gelf writer %s: %w", addr, err)
	}
	w.Facility = "exoclim"
	return NewSink("graylog", slog.NewJSONHandler(w, handlerOptions(slog.LevelDebug)), level), nil
}
