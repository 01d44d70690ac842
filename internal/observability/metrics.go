package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CoverageCollector bundles Prometheus metrics for coverage runs. It
// implements core.CoverageRecorder.
type CoverageCollector struct {
	gatherer prometheus.Gatherer

	Runs         *prometheus.CounterVec
	RunDurations prometheus.Histogram
	Spacecraft   prometheus.Gauge

	FieldPoints     *prometheus.CounterVec
	SingularSamples *prometheus.CounterVec

	CoveredFraction prometheus.Gauge
	MaxAcquired     prometheus.Gauge
}

// NewCoverageCollector registers coverage metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCoverageCollector(reg prometheus.Registerer) (*CoverageCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dinosim_coverage_runs_total",
		Help: "Coverage evaluations, labeled by outcome (ok or error).",
	}, []string{"outcome"}), "dinosim_coverage_runs_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dinosim_coverage_run_duration_seconds",
		Help:    "Wall time of a coverage evaluation across all spacecraft.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}), "dinosim_coverage_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	spacecraft, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dinosim_coverage_spacecraft",
		Help: "Number of spacecraft in the most recent coverage evaluation.",
	}), "dinosim_coverage_spacecraft")
	if err != nil {
		return nil, err
	}

	points, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dinosim_field_points_total",
		Help: "Grid samples evaluated, labeled by spacecraft.",
	}, []string{"spacecraft"}), "dinosim_field_points_total")
	if err != nil {
		return nil, err
	}

	singular, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dinosim_field_singular_samples_total",
		Help: "Grid samples clamped to the minimum path-loss range, labeled by spacecraft.",
	}, []string{"spacecraft"}), "dinosim_field_singular_samples_total")
	if err != nil {
		return nil, err
	}

	fraction, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dinosim_coverage_fraction",
		Help: "Share of grid samples acquired by at least one spacecraft.",
	}), "dinosim_coverage_fraction")
	if err != nil {
		return nil, err
	}

	maxAcquired, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dinosim_coverage_max_acquired",
		Help: "Largest number of spacecraft acquired at any grid sample.",
	}), "dinosim_coverage_max_acquired")
	if err != nil {
		return nil, err
	}

	return &CoverageCollector{
		gatherer:        gatherer,
		Runs:            runs,
		RunDurations:    durations,
		Spacecraft:      spacecraft,
		FieldPoints:     points,
		SingularSamples: singular,
		CoveredFraction: fraction,
		MaxAcquired:     maxAcquired,
	}, nil
}

// ObserveRun records one coverage evaluation.
func (c *CoverageCollector) ObserveRun(d time.Duration, spacecraft int, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.Runs.WithLabelValues(outcome).Inc()
	c.RunDurations.Observe(d.Seconds())
	c.Spacecraft.Set(float64(spacecraft))
}

// ObserveField records the samples of one spacecraft's power field.
func (c *CoverageCollector) ObserveField(spacecraft string, points, singular int) {
	if c == nil {
		return
	}
	c.FieldPoints.WithLabelValues(spacecraft).Add(float64(points))
	c.SingularSamples.WithLabelValues(spacecraft).Add(float64(singular))
}

// SetCoverage publishes the aggregate coverage of the last run.
func (c *CoverageCollector) SetCoverage(fraction float64, maxAcquired int) {
	if c == nil {
		return
	}
	c.CoveredFraction.Set(fraction)
	c.MaxAcquired.Set(float64(maxAcquired))
}

// Gatherer returns the registry the collector publishes to.
func (c *CoverageCollector) Gatherer() prometheus.Gatherer {
	if c == nil || c.gatherer == nil {
		return prometheus.DefaultGatherer
	}
	return c.gatherer
}

// WriteTextfile dumps the current metrics in the text exposition format,
// suitable for node_exporter's textfile collector.
func (c *CoverageCollector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.Gatherer()); err != nil {
		return fmt.Errorf("write metrics textfile %q: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
