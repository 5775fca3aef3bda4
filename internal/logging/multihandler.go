package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sink is one named output of a MultiHandler. Records below Min never reach
// Handler, so the console, the run file and Graylog can each keep their own
// threshold while sharing one logger. A nil Min defers to Handler.Enabled.
type Sink struct {
	Name    string
	Handler slog.Handler
	Min     slog.Leveler
}

// NewSink wraps h as a sink gated at the named level.
func NewSink(name string, h slog.Handler, level string) Sink {
	return Sink{Name: name, Handler: h, Min: parseLevel(level)}
}

// NewTextSink writes text records to w at or above level.
func NewTextSink(name string, w io.Writer, level string) Sink {
	return NewSink(name, slog.NewTextHandler(w, handlerOptions(slog.LevelDebug)), level)
}

func (s Sink) enabled(ctx context.Context, level slog.Level) bool {
	if s.Min != nil && level < s.Min.Level() {
		return false
	}
	return s.Handler.Enabled(ctx, level)
}

// MultiHandler routes each record to every sink whose level admits it.
type MultiHandler struct {
	sinks []Sink
}

// NewMultiHandler drops sinks without a handler.
func NewMultiHandler(sinks ...Sink) *MultiHandler {
	valid := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s.Handler != nil {
			valid = append(valid, s)
		}
	}
	return &MultiHandler{sinks: valid}
}

// Enabled reports whether any sink takes records at level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range m.sinks {
		if s.enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle writes r to every admitting sink. A failing sink does not stop the
// others; the failures come back joined and tagged with the sink name.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range m.sinks {
		if !s.enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// WithAttrs applies attrs to every sink, keeping its level.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup opens the group on every sink.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return m
	}
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	sinks := make([]Sink, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = Sink{Name: s.Name, Handler: fn(s.Handler), Min: s.Min}
	}
	return &MultiHandler{sinks: sinks}
}
