package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

// Metrics holds the pipeline instruments.
type Metrics struct {
	stageDuration metric.Float64Histogram
	spawned       metric.Int64Counter
	impacts       metric.Int64Counter
	diagnostics   metric.Int64Counter
}

// NewMetrics creates the pipeline instruments on m.
func NewMetrics(m metric.Meter) (*Metrics, error) {
	var (
		out Metrics
		err error
	)

	out.stageDuration, err = m.Float64Histogram(
		"pipeline.stage.duration",
		metric.WithDescription("Duration of one pipeline stage"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stage histogram: %w", err)
	}

	out.spawned, err = m.Int64Counter(
		"ocean.agents.spawned",
		metric.WithDescription("Ocean agents spawned"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating spawned counter: %w", err)
	}

	out.impacts, err = m.Int64Counter(
		"ocean.impacts",
		metric.WithDescription("Coastal impacts recorded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating impacts counter: %w", err)
	}

	out.diagnostics, err = m.Int64Counter(
		"ocean.diagnostics",
		metric.WithDescription("Ocean engine diagnostics recorded"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating diagnostics counter: %w", err)
	}

	return &out, nil
}

// NoopMetrics returns instruments that record nothing.
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.Meter{})
	return m
}

func (m *Metrics) recordStage(ctx context.Context, t core.StageTiming) {
	m.stageDuration.Record(ctx, float64(t.Duration.Microseconds())/1000,
		metric.WithAttributes(attribute.String("stage", t.Stage)))
}

func (m *Metrics) recordOcean(ctx context.Context, o core.OceanResult) {
	for _, s := range o.Stats {
		month := attribute.Int("month", s.Month)
		m.spawned.Add(ctx, int64(s.EccSpawned),
			metric.WithAttributes(month, attribute.String("kind", "ecc")))
		m.spawned.Add(ctx, int64(s.EcSpawned),
			metric.WithAttributes(month, attribute.String("kind", "ec")))
		m.impacts.Add(ctx, int64(s.Impacts), metric.WithAttributes(month))
	}
	for _, d := range o.Diagnostics {
		m.diagnostics.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(d.Kind))))
	}
}
