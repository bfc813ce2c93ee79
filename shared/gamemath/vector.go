// Package gamemath holds the small amount of 2D math shared by the server
// simulation and clients. World space is y-down, in pixels.
package gamemath

import "math"

// Vec is a 2D vector.
type Vec struct {
	X, Y float64
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64  { return v.Sub(o).Len() }
func (v Vec) IsZero() bool        { return v.X == 0 && v.Y == 0 }
func (v Vec) Dot(o Vec) float64   { return v.X*o.X + v.Y*o.Y }

// Normalize returns the unit vector of v, or the zero vector when v is zero.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// ClampLen returns v shortened to at most maxLen.
func (v Vec) ClampLen(maxLen float64) Vec {
	l := v.Len()
	if l <= maxLen || l == 0 {
		return v
	}
	return v.Scale(maxLen / l)
}

// Perp returns v rotated a quarter turn so that, for a rope pointing up at
// the anchor, positive input swings to the right.
func (v Vec) Perp() Vec {
	return Vec{-v.Y, v.X}
}

// ClampFloat clamps v to [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
