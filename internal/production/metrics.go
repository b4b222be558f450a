package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/lsystemx/internal/core"
)

// MetricsPublisher records generation events as Prometheus metrics, labelled by
// grammar ID.
type MetricsPublisher struct {
	generations *prometheus.CounterVec
	fired       *prometheus.CounterVec
	length      *prometheus.GaugeVec
	stable      *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
}

// NewMetricsPublisher registers the metrics with reg (prometheus.DefaultRegisterer if
// nil). Registering twice against one registry reuses the existing collectors.
func NewMetricsPublisher(reg prometheus.Registerer) (*MetricsPublisher, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"grammar"}
	m := &MetricsPublisher{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lsystem_generations_total",
			Help: "Rewrite passes that produced a new generation.",
		}, labels),
		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lsystem_rules_fired_total",
			Help: "Occurrences replaced by a matching rule.",
		}, labels),
		length: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lsystem_sequence_length",
			Help: "Modules in the latest generation.",
		}, labels),
		stable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lsystem_stable",
			Help: "1 once a pass left the sequence unchanged.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lsystem_pass_duration_seconds",
			Help:    "Time spent in one rewrite pass.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, labels),
	}
	var err error
	m.generations, err = register(reg, m.generations)
	if err != nil {
		return nil, err
	}
	if m.fired, err = register(reg, m.fired); err != nil {
		return nil, err
	}
	if m.length, err = register(reg, m.length); err != nil {
		return nil, err
	}
	if m.stable, err = register(reg, m.stable); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register metrics: %w", err)
	}
	return c, nil
}

func (m *MetricsPublisher) Publish(_ context.Context, event core.GenerationEvent) error {
	grammar := event.GrammarID
	if grammar == "" {
		grammar = "unknown"
	}
	m.duration.WithLabelValues(grammar).Observe(event.Duration.Seconds())
	m.fired.WithLabelValues(grammar).Add(float64(event.Fired))
	m.length.WithLabelValues(grammar).Set(float64(event.Length))
	if event.Stable {
		m.stable.WithLabelValues(grammar).Set(1)
		return nil
	}
	m.stable.WithLabelValues(grammar).Set(0)
	m.generations.WithLabelValues(grammar).Inc()
	return nil
}

func (m *MetricsPublisher) Close() error { return nil }
