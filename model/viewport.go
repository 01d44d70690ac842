package model

import "math"

// Bounds is an axis-aligned rectangle in map units (km * 10^3).
type Bounds struct {
	XMin float64
	XMax float64
	YMin float64
	YMax float64
}

// DefaultViewport is the map region rendered by the stock plots.
func DefaultViewport() Bounds {
	return Bounds{XMin: -100, XMax: 500, YMin: -300, YMax: 300}
}

// Valid reports whether both ranges are finite and non-inverted.
func (b Bounds) Valid() bool {
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.XMin <= b.XMax && b.YMin <= b.YMax
}
