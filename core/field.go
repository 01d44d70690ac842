package core

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/signalsfoundry/dinosim/model"
)

// DefaultNumPoints is the default grid resolution per axis.
const DefaultNumPoints = 100

// Labels used by the presentation layer for colour scales.
const (
	PowerLabel    = "Power Received (dBm)"
	AcquiredLabel = "Number of Satellites Acquired"
)

// Grid is a uniform NumPoints x NumPoints mesh over a rectangle. Row i holds
// y[i] and column j holds x[j], so X varies along rows and Y down columns.
type Grid struct {
	X *mat.Dense
	Y *mat.Dense
}

// linspace returns n evenly spaced values over [lo, hi] with both end points
// included exactly; a single sample sits at lo.
func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	dst := floats.Span(make([]float64, n), lo, hi)
	dst[n-1] = hi
	return dst
}

// NewGrid builds the sample mesh for bounds at n points per axis.
func NewGrid(bounds model.Bounds, n int) (*Grid, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: grid resolution must be positive, got %d", ErrInvalidParameter, n)
	}
	if !bounds.Valid() {
		return nil, fmt.Errorf("%w: bounds %+v", ErrInvalidParameter, bounds)
	}
	xs := linspace(bounds.XMin, bounds.XMax, n)
	ys := linspace(bounds.YMin, bounds.YMax, n)

	X := mat.NewDense(n, n, nil)
	Y := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			X.Set(i, j, xs[j])
			Y.Set(i, j, ys[i])
		}
	}
	return &Grid{X: X, Y: Y}, nil
}

// Size returns the number of points per axis.
func (g *Grid) Size() int {
	r, _ := g.X.Dims()
	return r
}

// Point returns the map coordinates of sample (i, j).
func (g *Grid) Point(i, j int) Vec2 {
	return Vec2{X: g.X.At(i, j), Y: g.Y.At(i, j)}
}

// FieldRequest describes the region and resolution of a field computation.
type FieldRequest struct {
	Bounds            model.Bounds
	NumPoints         int
	AntennaCorrection bool
}

// DefaultFieldRequest covers the default viewport at the default
// resolution, with antenna correction enabled.
func DefaultFieldRequest() FieldRequest {
	return FieldRequest{
		Bounds:            model.DefaultViewport(),
		NumPoints:         DefaultNumPoints,
		AntennaCorrection: true,
	}
}

// Validate checks resolution and bounds.
func (r FieldRequest) Validate() error {
	if r.NumPoints <= 0 {
		return fmt.Errorf("%w: grid resolution must be positive, got %d", ErrInvalidParameter, r.NumPoints)
	}
	if !r.Bounds.Valid() {
		return fmt.Errorf("%w: bounds %+v", ErrInvalidParameter, r.Bounds)
	}
	return nil
}

// Field is a scalar value sampled on a Grid. X, Y and Value share a shape.
type Field struct {
	X     *mat.Dense
	Y     *mat.Dense
	Value *mat.Dense
	Label string
}

// Dims returns the shape of the field.
func (f *Field) Dims() (int, int) {
	return f.Value.Dims()
}

// Max returns the largest sample value.
func (f *Field) Max() float64 {
	return mat.Max(f.Value)
}

// PowerField is the received power (dBm) from one spacecraft.
type PowerField struct {
	Field
	Spacecraft string

	// Singular counts samples closer than MinDistanceM to the spacecraft,
	// which were evaluated at MinDistanceM.
	Singular int
}

// ComputePowerField samples the received power from craft over the request
// grid: free-space path loss from the spacecraft's global position, plus
// the antenna gain toward each sample when AntennaCorrection is set.
func ComputePowerField(req FieldRequest, craft *Spacecraft) (*PowerField, error) {
	if craft == nil {
		return nil, fmt.Errorf("%w: nil spacecraft", ErrInvalidParameter)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	link, err := craft.linkEval()
	if err != nil {
		return nil, err
	}
	grid, err := NewGrid(req.Bounds, req.NumPoints)
	if err != nil {
		return nil, err
	}

	n := grid.Size()
	power := mat.NewDense(n, n, nil)
	singular := 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v, clamped := link.receivedPower(grid.Point(i, j), req.AntennaCorrection)
			if clamped {
				singular++
			}
			power.Set(i, j, v)
		}
	}

	return &PowerField{
		Field: Field{
			X:     grid.X,
			Y:     grid.Y,
			Value: power,
			Label: PowerLabel,
		},
		Spacecraft: craft.Name,
		Singular:   singular,
	}, nil
}
