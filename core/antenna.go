package core

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// The gain model is a Gaussian fit of a patch antenna, scaled from a
// reference element with 3 dB of gain and a 65° half-power beamwidth.
const (
	referenceBeamwidthDeg = 65.0
	referenceGainDB       = 3.0

	// PatternSamples is the number of angles in a radiation pattern cut.
	PatternSamples = 360

	// GainFloorDB bounds AbsoluteGainDB where the Gaussian underflows to 0.
	GainFloorDB = -3000.0
)

// BeamwidthConstant K such that beamwidth = K / sqrt(G_dB).
var BeamwidthConstant = referenceBeamwidthDeg * math.Sqrt(referenceGainDB)

// Beamwidth returns the half-power beamwidth in degrees for an antenna with
// the given peak gain (dB).
func Beamwidth(gainDB float64) float64 {
	return BeamwidthConstant / math.Sqrt(gainDB)
}

// gaussianGain evaluates gainDB * exp(-0.5 (theta/sigma)^2) for theta in
// radians, with sigma = half the beamwidth.
//
// The peak is the dB figure itself, not 10^(dB/10); callers re-log the result
// to obtain "dB". Coverage maps produced so far depend on this exact shape.
func gaussianGain(gainDB, theta float64) float64 {
	sigma := Radians(Beamwidth(gainDB)) / 2
	r := theta / sigma
	return gainDB * math.Exp(-0.5*r*r)
}

func toDB(g float64) float64 {
	if g <= 0 {
		return GainFloorDB
	}
	return math.Max(10*math.Log10(g), GainFloorDB)
}

func toRadians(theta float64, degrees bool) float64 {
	if degrees {
		return Radians(theta)
	}
	return theta
}

// Beamwidth returns the half-power beamwidth (degrees) of the spacecraft's
// antenna.
func (s *Spacecraft) Beamwidth() (float64, error) {
	p, err := s.CommParams()
	if err != nil {
		return 0, err
	}
	return Beamwidth(p.AntennaGainDB), nil
}

// AbsoluteGain returns the antenna gain at theta off boresight. theta is in
// degrees when degrees is true, radians otherwise.
func (s *Spacecraft) AbsoluteGain(theta float64, degrees bool) (float64, error) {
	p, err := s.CommParams()
	if err != nil {
		return 0, err
	}
	return gaussianGain(p.AntennaGainDB, toRadians(theta, degrees)), nil
}

// AbsoluteGainDB returns 10*log10(AbsoluteGain(theta)).
func (s *Spacecraft) AbsoluteGainDB(theta float64, degrees bool) (float64, error) {
	g, err := s.AbsoluteGain(theta, degrees)
	if err != nil {
		return 0, err
	}
	return toDB(g), nil
}

// Pattern is a 2D cut of a radiation pattern. Theta and Gain have equal
// length; Theta is in degrees when Degrees is set.
type Pattern struct {
	Theta   []float64
	Gain    []float64
	Degrees bool
}

// Max returns the largest gain in the pattern.
func (p Pattern) Max() float64 {
	return floats.Max(p.Gain)
}

func (p Pattern) withGain(gain []float64) Pattern {
	return Pattern{Theta: p.Theta, Gain: gain, Degrees: p.Degrees}
}

// AbsoluteRadiationPattern samples AbsoluteGain at PatternSamples angles
// spread evenly over [-180°, 180°] (or [-π, π]).
func (s *Spacecraft) AbsoluteRadiationPattern(degrees bool) (Pattern, error) {
	p, err := s.CommParams()
	if err != nil {
		return Pattern{}, err
	}
	half := math.Pi
	if degrees {
		half = 180
	}
	theta := linspace(-half, half, PatternSamples)
	gain := make([]float64, len(theta))
	for i, th := range theta {
		gain[i] = gaussianGain(p.AntennaGainDB, toRadians(th, degrees))
	}
	return Pattern{Theta: theta, Gain: gain, Degrees: degrees}, nil
}

// RadiationPatternDB is AbsoluteRadiationPattern on a dB scale.
func (s *Spacecraft) RadiationPatternDB(degrees bool) (Pattern, error) {
	base, err := s.AbsoluteRadiationPattern(degrees)
	if err != nil {
		return Pattern{}, err
	}
	db := make([]float64, len(base.Gain))
	for i, g := range base.Gain {
		db[i] = toDB(g)
	}
	return base.withGain(db), nil
}

// NormalizedRadiationPattern divides the pattern by its maximum.
func (s *Spacecraft) NormalizedRadiationPattern(degrees bool) (Pattern, error) {
	base, err := s.AbsoluteRadiationPattern(degrees)
	if err != nil {
		return Pattern{}, err
	}
	peak := base.Max()
	norm := make([]float64, len(base.Gain))
	for i, g := range base.Gain {
		norm[i] = g / peak
	}
	return base.withGain(norm), nil
}

// NormalizedRadiationPatternDB subtracts the maximum dB value so the peak
// sits at 0 dB.
func (s *Spacecraft) NormalizedRadiationPatternDB(degrees bool) (Pattern, error) {
	db, err := s.RadiationPatternDB(degrees)
	if err != nil {
		return Pattern{}, err
	}
	norm := append([]float64(nil), db.Gain...)
	floats.AddConst(-db.Max(), norm)
	return db.withGain(norm), nil
}
