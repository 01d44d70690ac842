package core

import (
	"fmt"
	"math"
)

// CommParams describes the radio carried by a spacecraft: transmit power,
// carrier frequency and the peak gain of its patch antenna.
type CommParams struct {
	TransmitPowerDBm float64 `yaml:"transmit_power_dbm" json:"transmit_power_dbm"`
	FrequencyHz      float64 `yaml:"frequency_hz" json:"frequency_hz"`

	// AntennaGainDB is the boresight gain. It also sets the beamwidth of the
	// Gaussian pattern, so it must be strictly positive.
	AntennaGainDB float64 `yaml:"antenna_gain_db" json:"antenna_gain_db"`
}

// FrequencyMHz returns the carrier frequency in MHz.
func (p CommParams) FrequencyMHz() float64 {
	return p.FrequencyHz / 1e6
}

// AntennaGainAbs returns the peak gain on a linear scale, 10^(G_dB/10).
func (p CommParams) AntennaGainAbs() float64 {
	return math.Pow(10, p.AntennaGainDB/10)
}

// Validate rejects parameter sets the path-loss and gain models cannot
// evaluate.
func (p CommParams) Validate() error {
	if math.IsNaN(p.TransmitPowerDBm) || math.IsInf(p.TransmitPowerDBm, 0) {
		return fmt.Errorf("%w: transmit power must be finite, got %v", ErrInvalidParameter, p.TransmitPowerDBm)
	}
	if !(p.FrequencyHz > 0) || math.IsInf(p.FrequencyHz, 0) {
		return fmt.Errorf("%w: frequency must be positive, got %v Hz", ErrInvalidParameter, p.FrequencyHz)
	}
	if !(p.AntennaGainDB > 0) || math.IsInf(p.AntennaGainDB, 0) {
		return fmt.Errorf("%w: antenna gain must be positive, got %v dB", ErrInvalidParameter, p.AntennaGainDB)
	}
	return nil
}
