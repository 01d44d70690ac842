package core

import "math"

const (
	// MapUnitToMetres converts map distances (km) to metres for the
	// path-loss formula, which is calibrated for metres and MHz.
	MapUnitToMetres = 1000.0

	// fsplConstantDB is 20*log10(4π/c) expressed for metres and MHz.
	fsplConstantDB = 32.44

	// MinDistanceM is the closest range the path-loss model is evaluated at.
	// Grid points nearer than this to the transmitter are clamped to it.
	MinDistanceM = 1.0
)

// FreeSpacePathLossDB returns 20 log10(d_m) + 20 log10(f_MHz) + 32.44.
func FreeSpacePathLossDB(distanceM, freqMHz float64) float64 {
	return 20*math.Log10(distanceM) + 20*math.Log10(freqMHz) + fsplConstantDB
}

// linkEval holds the per-spacecraft values reused for every sample point.
type linkEval struct {
	params    CommParams
	origin    Vec2
	boresight float64 // radians
}

func (s *Spacecraft) linkEval() (linkEval, error) {
	p, err := s.CommParams()
	if err != nil {
		return linkEval{}, err
	}
	return linkEval{
		params:    p,
		origin:    s.GlobalPosition(),
		boresight: s.AbsolutePointingAngle(false),
	}, nil
}

// receivedPower returns the power (dBm) at pt and whether the distance had to
// be clamped to MinDistanceM.
func (l linkEval) receivedPower(pt Vec2, antennaCorrection bool) (float64, bool) {
	d := pt.DistanceTo(l.origin) * MapUnitToMetres
	clamped := false
	if d < MinDistanceM || math.IsNaN(d) {
		d = MinDistanceM
		clamped = true
	}
	power := l.params.TransmitPowerDBm - FreeSpacePathLossDB(d, l.params.FrequencyMHz())
	if antennaCorrection {
		theta := offBoresightAngle(l.origin, pt, l.boresight)
		power += toDB(gaussianGain(l.params.AntennaGainDB, theta))
	}
	return power, clamped
}

// ReceivedPowerDBm returns the power received at a single map point. With
// antennaCorrection set, the antenna gain toward the point is added to the
// free-space budget.
func (s *Spacecraft) ReceivedPowerDBm(pt Vec2, antennaCorrection bool) (float64, error) {
	l, err := s.linkEval()
	if err != nil {
		return 0, err
	}
	power, _ := l.receivedPower(pt, antennaCorrection)
	return power, nil
}
