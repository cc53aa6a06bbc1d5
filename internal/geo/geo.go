// Package geo provides the planar math used by the map, the route planner
// and the vehicle kinematics. All world coordinates are meters; the source
// art is authored at a fixed pixel density, so module geometry is declared
// in art pixels and converted through P2M.
package geo

import "math"

// ArtPixelsPerMeter is the density of the source art. Every footprint and
// attachment table is declared in art pixels and divided by this factor.
const ArtPixelsPerMeter = 7.0

// P2M converts art pixels to meters.
func P2M(artPixels float64) float64 {
	return artPixels / ArtPixelsPerMeter
}

// Vec2 is a 2D vector in meters. Y grows downward, matching the art.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Neg returns -v.
func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Distance returns the Euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 {
	return v.Sub(o).Length()
}

// Normalize returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Limit caps the length of v at max.
func (v Vec2) Limit(max float64) Vec2 {
	if v.Length() > max {
		return v.Normalize().Scale(max)
	}
	return v
}

// FromAngle returns the unit vector pointing at the given angle in radians,
// with 0 pointing along +X.
func FromAngle(rad float64) Vec2 {
	return Vec2{math.Cos(rad), math.Sin(rad)}
}
