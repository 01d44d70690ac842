package core

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/signalsfoundry/dinosim/internal/logging"
)

// DefaultMinPowerDBm is the acquisition threshold used when none is given.
const DefaultMinPowerDBm = -135.0

func checkShapes(fields []*PowerField) (int, int, error) {
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("%w: no fields to aggregate", ErrInvalidParameter)
	}
	for i, f := range fields {
		if f == nil || f.Value == nil {
			return 0, 0, fmt.Errorf("%w: field %d is nil", ErrInvalidParameter, i)
		}
	}
	r, c := fields[0].Dims()
	for _, f := range fields[1:] {
		if fr, fc := f.Dims(); fr != r || fc != c {
			return 0, 0, fmt.Errorf("%w: %s is %dx%d, %s is %dx%d",
				ErrShapeMismatch, fields[0].Spacecraft, r, c, f.Spacecraft, fr, fc)
		}
	}
	return r, c, nil
}

// BestPower returns the element-wise maximum of the given power fields.
func BestPower(fields ...*PowerField) (*Field, error) {
	r, c, err := checkShapes(fields)
	if err != nil {
		return nil, err
	}
	best := mat.NewDense(r, c, nil)
	best.Copy(fields[0].Value)
	for _, f := range fields[1:] {
		best.Apply(func(i, j int, v float64) float64 {
			return math.Max(v, f.Value.At(i, j))
		}, best)
	}
	return &Field{X: fields[0].X, Y: fields[0].Y, Value: best, Label: PowerLabel}, nil
}

// AcquisitionCount returns, for every sample, how many fields reach at least
// minPowerDBm there.
func AcquisitionCount(minPowerDBm float64, fields ...*PowerField) (*Field, error) {
	r, c, err := checkShapes(fields)
	if err != nil {
		return nil, err
	}
	count := mat.NewDense(r, c, nil)
	for _, f := range fields {
		count.Apply(func(i, j int, v float64) float64 {
			if f.Value.At(i, j) >= minPowerDBm {
				return v + 1
			}
			return v
		}, count)
	}
	return &Field{X: fields[0].X, Y: fields[0].Y, Value: count, Label: AcquiredLabel}, nil
}

// ComputePowerFields computes one power field per spacecraft over the same
// grid. Spacecraft are evaluated concurrently; the result is ordered like
// crafts. The first error (in crafts order) is returned. Progress is logged
// at debug level to the logger carried by ctx, if any.
func ComputePowerFields(ctx context.Context, req FieldRequest, crafts []*Spacecraft) ([]*PowerField, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx, nil)
	out := make([]*PowerField, len(crafts))
	errs := make([]error, len(crafts))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(crafts) {
		workers = len(crafts)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				start := time.Now()
				out[idx], errs[idx] = ComputePowerField(req, crafts[idx])
				if errs[idx] == nil {
					log.Debug(ctx, "power field computed",
						logging.String("spacecraft", out[idx].Spacecraft),
						logging.Int("singular", out[idx].Singular),
						logging.Duration("elapsed", time.Since(start)),
					)
				}
			}
		}()
	}
	for idx := range crafts {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
