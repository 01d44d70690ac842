package core

import "math"

// Vec2 is a planar vector in map units (km).
type Vec2 struct {
	X, Y float64
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec2) DistanceTo(other Vec2) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Scale returns v * k.
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{X: v.X * k, Y: v.Y * k}
}

// Rotate applies the counter-clockwise rotation matrix
//
//	[cos a  -sin a]
//	[sin a   cos a]
//
// for an angle a in radians.
func (v Vec2) Rotate(a float64) Vec2 {
	sin, cos := math.Sincos(a)
	return Vec2{
		X: cos*v.X - sin*v.Y,
		Y: sin*v.X + cos*v.Y,
	}
}

// Angle returns atan2(y, x) in radians, in (-π, π].
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Unit returns the unit vector at angle a (radians) from the +x axis.
func Unit(a float64) Vec2 {
	sin, cos := math.Sincos(a)
	return Vec2{X: cos, Y: sin}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180.0 }

// offBoresightAngle returns the angle (radians) of target as seen from
// origin, measured in a frame whose +x axis points along boresight (radians).
func offBoresightAngle(origin, target Vec2, boresight float64) float64 {
	return target.Sub(origin).Rotate(-boresight).Angle()
}
