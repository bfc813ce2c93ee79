package gamemath

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestRayCastPicksNearestRect(t *testing.T) {
	rects := []Rect{
		{X: 100, Y: -10, W: 16, H: 20},
		{X: 40, Y: -10, W: 16, H: 20},
	}
	p, ok := RayCast(V(0, 0), V(1, 0), rects)
	if !ok {
		t.Fatal("expected hit")
	}
	if !almostEqual(p.X, 40) || !almostEqual(p.Y, 0) {
		t.Fatalf("hit = %+v, want (40, 0)", p)
	}
}

func TestRayCastMisses(t *testing.T) {
	rects := []Rect{{X: 40, Y: 10, W: 16, H: 16}}

	tests := []struct {
		name string
		dir  Vec
	}{
		{"zero direction", V(0, 0)},
		{"pointing away", V(-1, 0)},
		{"passes above", V(1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := RayCast(V(0, 0), tt.dir, rects); ok {
				t.Fatalf("expected miss for dir %+v", tt.dir)
			}
		})
	}
}

func TestRayCastDiagonal(t *testing.T) {
	rects := []Rect{{X: 10, Y: 10, W: 10, H: 10}}
	p, ok := RayCast(V(0, 0), V(1, 1), rects)
	if !ok {
		t.Fatal("expected hit")
	}
	if !almostEqual(p.X, 10) || !almostEqual(p.Y, 10) {
		t.Fatalf("hit = %+v, want (10, 10)", p)
	}
}

func TestRayCastNormal(t *testing.T) {
	rects := []Rect{{X: 0, Y: 100, W: 100, H: 16}}
	p, n, ok := RayCastNormal(V(50, 0), V(0, 1), rects)
	if !ok || p != V(50, 100) || n != V(0, -1) {
		t.Fatalf("got p=%+v n=%+v ok=%v, want floor hit with up normal", p, n, ok)
	}

	_, n, ok = RayCastNormal(V(-20, 108), V(1, 0), rects)
	if !ok || n != V(-1, 0) {
		t.Fatalf("side hit normal = %+v", n)
	}
}

func TestRayRectFromInside(t *testing.T) {
	tHit, p, ok := RayRect(V(5, 5), V(1, 0), Rect{X: 0, Y: 0, W: 10, H: 10})
	if !ok || tHit != 0 || p != V(5, 5) {
		t.Fatalf("got t=%v p=%+v ok=%v, want hit at origin", tHit, p, ok)
	}
}

func TestSwingForceIsPerpendicular(t *testing.T) {
	// Anchor straight above the player (y-down world).
	f := SwingForce(V(0, 100), V(0, 0), 1, 80)
	if !almostEqual(f.X, 80) || !almostEqual(f.Y, 0) {
		t.Fatalf("force = %+v, want (80, 0)", f)
	}

	f = SwingForce(V(0, 100), V(0, 0), -0.5, 80)
	if !almostEqual(f.X, -40) {
		t.Fatalf("force = %+v, want x=-40", f)
	}

	// Perpendicular for an arbitrary rope angle.
	pos, anchor := V(3, 7), V(10, -2)
	f = SwingForce(pos, anchor, 1, 1)
	rope := anchor.Sub(pos)
	if dot := f.X*rope.X + f.Y*rope.Y; !almostEqual(dot, 0) {
		t.Fatalf("force not perpendicular to rope, dot = %v", dot)
	}
}

func TestBulletVelocityAndMuzzle(t *testing.T) {
	v := BulletVelocity(V(0, 0), V(3, 4), 7.5)
	if !almostEqual(v.Len(), 7.5) {
		t.Fatalf("speed = %v, want 7.5", v.Len())
	}
	off := MuzzleOffset(v, 0.08)
	if !almostEqual(off.Len(), 0.6) {
		t.Fatalf("offset length = %v, want 0.6", off.Len())
	}
	if !almostEqual(off.X/off.Y, v.X/v.Y) {
		t.Fatalf("offset %+v not parallel to velocity %+v", off, v)
	}

	if got := BulletVelocity(V(1, 1), V(1, 1), 10); !got.IsZero() {
		t.Fatalf("velocity toward self = %+v, want zero", got)
	}
}

func TestClampFloat(t *testing.T) {
	if got := ClampFloat(5, 0, 3); got != 3 {
		t.Fatalf("got %v", got)
	}
	if got := ClampFloat(-1, 0, 3); got != 0 {
		t.Fatalf("got %v", got)
	}
	if got := ClampFloat(2, 0, 3); got != 2 {
		t.Fatalf("got %v", got)
	}
}
