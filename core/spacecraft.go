package core

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/signalsfoundry/dinosim/model"
)

// DirectionVectorLength is the length (map units) of the boresight arrow
// drawn from each spacecraft marker.
const DirectionVectorLength = 40.0

// Spacecraft is a relay spacecraft ("DINO") parked at a fixed angular
// position around a body. Its kinematic fields are plain values; its radio is
// attached later with SetCommParams.
//
// A spacecraft without comm params is kinematic-only: position queries work,
// but every gain, pattern and power query returns ErrCommParamsNotSet.
type Spacecraft struct {
	Name string
	Body *model.Body

	// Altitude above the body's surface, in map units.
	Altitude float64
	// AngleGlobal is the angular position around Body in degrees; 0 lies on
	// the +x axis.
	AngleGlobal float64
	// PointingAngle offsets the antenna boresight from the outward radial
	// direction, in degrees.
	PointingAngle float64

	// comm is replaced atomically; field workers may read it during a
	// reconfiguration.
	comm atomic.Pointer[CommParams]
}

// NewSpacecraft constructs a kinematic-only spacecraft orbiting body.
func NewSpacecraft(name string, body *model.Body, altitude, angleGlobal, pointingAngle float64) (*Spacecraft, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: spacecraft %q has no orbiting body", ErrInvalidParameter, name)
	}
	for _, v := range []float64{altitude, angleGlobal, pointingAngle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: spacecraft %q has non-finite placement", ErrInvalidParameter, name)
		}
	}
	return &Spacecraft{
		Name:          name,
		Body:          body,
		Altitude:      altitude,
		AngleGlobal:   angleGlobal,
		PointingAngle: pointingAngle,
	}, nil
}

// SetCommParams attaches radio parameters. Calling it again overwrites the
// previous values. Invalid parameters are rejected and leave the spacecraft
// unchanged.
func (s *Spacecraft) SetCommParams(p CommParams) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("spacecraft %q: %w", s.Name, err)
	}
	s.comm.Store(&p)
	return nil
}

// HasCommParams reports whether SetCommParams has succeeded at least once.
func (s *Spacecraft) HasCommParams() bool {
	return s.comm.Load() != nil
}

// CommParams returns the configured radio parameters.
func (s *Spacecraft) CommParams() (CommParams, error) {
	p := s.comm.Load()
	if p == nil {
		return CommParams{}, s.notConfigured()
	}
	return *p, nil
}

func (s *Spacecraft) notConfigured() error {
	return fmt.Errorf("spacecraft %q: %w; call SetCommParams first", s.Name, ErrCommParamsNotSet)
}

// OrbitRadius is the distance from the body centre to the spacecraft.
func (s *Spacecraft) OrbitRadius() float64 {
	return s.Altitude + s.Body.Radius
}

// GlobalPosition returns the spacecraft position in map coordinates.
func (s *Spacecraft) GlobalPosition() Vec2 {
	centre := Vec2{X: s.Body.X, Y: s.Body.Y}
	return centre.Add(Unit(Radians(s.AngleGlobal)).Scale(s.OrbitRadius()))
}

// AbsolutePointingAngle is the boresight direction in the map frame,
// AngleGlobal + PointingAngle, in degrees or radians.
func (s *Spacecraft) AbsolutePointingAngle(degrees bool) float64 {
	a := s.AngleGlobal + s.PointingAngle
	if degrees {
		return a
	}
	return Radians(a)
}

// DirectionTip returns the end point of a boresight arrow of the given length
// drawn from the spacecraft position.
func (s *Spacecraft) DirectionTip(length float64) Vec2 {
	return s.GlobalPosition().Add(Unit(s.AbsolutePointingAngle(false)).Scale(length))
}

// Summary is a human-readable description of the spacecraft placement.
func (s *Spacecraft) Summary() string {
	return fmt.Sprintf("Spacecraft %s is at altitude %g KM, orbiting %s. With global angle %g degrees and pointing angle %g degrees.",
		s.Name, s.Altitude, s.Body.Name, s.AngleGlobal, s.PointingAngle)
}
