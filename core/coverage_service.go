// core/coverage_service.go
package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/dinosim/internal/logging"
)

const tracerName = "github.com/signalsfoundry/dinosim/core"

// SpacecraftLister supplies the spacecraft a coverage run evaluates.
type SpacecraftLister interface {
	ListSpacecraft() []*Spacecraft
}

// CoverageRecorder receives per-run measurements. The Prometheus collector in
// internal/observability implements it.
type CoverageRecorder interface {
	ObserveRun(d time.Duration, spacecraft int, err error)
	ObserveField(spacecraft string, points, singular int)
	SetCoverage(fraction float64, maxAcquired int)
}

// Coverage is the result of one coverage run.
type Coverage struct {
	Request     FieldRequest
	MinPowerDBm float64

	// Fields holds one power field per spacecraft, in lister order.
	Fields   []*PowerField
	Best     *Field
	Acquired *Field
}

// CoveredFraction returns the share of samples acquired by at least
// minCount spacecraft.
func (c *Coverage) CoveredFraction(minCount int) float64 {
	r, cols := c.Acquired.Dims()
	if r*cols == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			if int(c.Acquired.Value.At(i, j)) >= minCount {
				hits++
			}
		}
	}
	return float64(hits) / float64(r*cols)
}

// MaxAcquired returns the largest acquisition count on the grid.
func (c *Coverage) MaxAcquired() int {
	return int(c.Acquired.Max())
}

// CoverageService computes received-power coverage for every spacecraft the
// source lists and aggregates the best-power and acquisition-count maps.
type CoverageService struct {
	Source SpacecraftLister

	// MinPowerDBm is the acquisition threshold.
	MinPowerDBm float64

	Log     logging.Logger
	Metrics CoverageRecorder
	Tracer  trace.Tracer
}

func NewCoverageService(src SpacecraftLister) *CoverageService {
	return &CoverageService{
		Source:      src,
		MinPowerDBm: DefaultMinPowerDBm,
		Log:         logging.Noop(),
		Tracer:      otel.Tracer(tracerName),
	}
}

// Evaluate runs one coverage computation over req. Any spacecraft without
// comm params fails the whole run with ErrCommParamsNotSet.
func (cs *CoverageService) Evaluate(ctx context.Context, req FieldRequest) (cov *Coverage, err error) {
	ctx, log := logging.WithRunLogger(ctx, cs.logger())
	tracer := cs.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	ctx, span := tracer.Start(ctx, "coverage.Evaluate", trace.WithAttributes(
		attribute.Int("grid.num_points", req.NumPoints),
		attribute.Bool("grid.antenna_correction", req.AntennaCorrection),
		attribute.Float64("coverage.min_power_dbm", cs.MinPowerDBm),
	))
	start := time.Now()
	var crafts []*Spacecraft
	defer func() {
		if cs.Metrics != nil {
			cs.Metrics.ObserveRun(time.Since(start), len(crafts), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Error(ctx, "coverage run failed", logging.Err(err))
		}
		span.End()
	}()

	if cs.Source == nil {
		return nil, fmt.Errorf("%w: coverage service has no spacecraft source", ErrInvalidParameter)
	}
	crafts = cs.Source.ListSpacecraft()
	span.SetAttributes(attribute.Int("coverage.spacecraft", len(crafts)))
	if len(crafts) == 0 {
		return nil, fmt.Errorf("%w: no spacecraft to evaluate", ErrInvalidParameter)
	}

	fields, err := ComputePowerFields(ctx, req, crafts)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		r, c := f.Dims()
		if cs.Metrics != nil {
			cs.Metrics.ObserveField(f.Spacecraft, r*c, f.Singular)
		}
		if f.Singular > 0 {
			log.Warn(ctx, "samples clamped to minimum range",
				logging.String("spacecraft", f.Spacecraft),
				logging.Int("samples", f.Singular),
				logging.Float64("min_distance_m", MinDistanceM),
			)
		}
	}

	best, err := BestPower(fields...)
	if err != nil {
		return nil, err
	}
	acquired, err := AcquisitionCount(cs.MinPowerDBm, fields...)
	if err != nil {
		return nil, err
	}

	cov = &Coverage{
		Request:     req,
		MinPowerDBm: cs.MinPowerDBm,
		Fields:      fields,
		Best:        best,
		Acquired:    acquired,
	}
	fraction := cov.CoveredFraction(1)
	if cs.Metrics != nil {
		cs.Metrics.SetCoverage(fraction, cov.MaxAcquired())
	}
	span.SetAttributes(attribute.Float64("coverage.fraction", fraction))
	log.Info(ctx, "coverage computed",
		logging.Int("spacecraft", len(crafts)),
		logging.Int("num_points", req.NumPoints),
		logging.Bool("antenna_correction", req.AntennaCorrection),
		logging.Float64("covered_fraction", fraction),
		logging.Int("max_acquired", cov.MaxAcquired()),
		logging.Float64("best_power_dbm", best.Max()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return cov, nil
}

func (cs *CoverageService) logger() logging.Logger {
	if cs.Log == nil {
		return logging.Noop()
	}
	return cs.Log
}
