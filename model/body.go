package model

import "fmt"

// Body is a celestial body that anchors an orbital reference frame.
// Positions and radii are in map units (km * 10^3). Bodies are created once
// during scenario setup and never mutated.
type Body struct {
	Name   string
	X      float64
	Y      float64
	Radius float64
}

// NewBody constructs a body centred at (x, y).
func NewBody(name string, x, y, radius float64) *Body {
	return &Body{Name: name, X: x, Y: y, Radius: radius}
}

func (b *Body) String() string {
	return fmt.Sprintf("%s at (%g, %g) with radius %g km.", b.Name, b.X, b.Y, b.Radius)
}
