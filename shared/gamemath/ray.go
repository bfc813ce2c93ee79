package gamemath

import "math"

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// RayRect intersects the ray origin+t*dir (t >= 0) with r using the slab
// method. It returns the entry distance t in units of dir and the hit point.
// A ray starting inside r hits at t = 0.
func RayRect(origin, dir Vec, r Rect) (float64, Vec, bool) {
	tMin := 0.0
	tMax := math.Inf(1)

	slab := func(o, d, lo, hi float64) bool {
		if d == 0 {
			return o >= lo && o <= hi
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		return tMin <= tMax
	}

	if !slab(origin.X, dir.X, r.X, r.X+r.W) {
		return 0, Vec{}, false
	}
	if !slab(origin.Y, dir.Y, r.Y, r.Y+r.H) {
		return 0, Vec{}, false
	}
	return tMin, origin.Add(dir.Scale(tMin)), true
}

// RayCast returns the nearest rectangle hit along the ray, or false if the
// ray misses all of them or dir is zero.
func RayCast(origin, dir Vec, rects []Rect) (Vec, bool) {
	p, _, ok := RayCastNormal(origin, dir, rects)
	return p, ok
}

// RayCastNormal is RayCast that also reports the outward normal of the face
// that was hit. A ray starting inside a rectangle reports a zero normal.
func RayCastNormal(origin, dir Vec, rects []Rect) (Vec, Vec, bool) {
	if dir.IsZero() {
		return Vec{}, Vec{}, false
	}
	dir = dir.Normalize()

	best := math.Inf(1)
	var point Vec
	var hitRect Rect
	for _, r := range rects {
		t, p, ok := RayRect(origin, dir, r)
		if ok && t < best {
			best = t
			point = p
			hitRect = r
		}
	}
	if math.IsInf(best, 1) {
		return Vec{}, Vec{}, false
	}
	if best == 0 {
		return point, Vec{}, true
	}
	return point, faceNormal(hitRect, point), true
}

// faceNormal returns the outward normal of the face of r closest to p.
func faceNormal(r Rect, p Vec) Vec {
	faces := [4]struct {
		dist   float64
		normal Vec
	}{
		{math.Abs(p.X - r.X), Vec{-1, 0}},
		{math.Abs(p.X - (r.X + r.W)), Vec{1, 0}},
		{math.Abs(p.Y - r.Y), Vec{0, -1}},
		{math.Abs(p.Y - (r.Y + r.H)), Vec{0, 1}},
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.dist < best.dist {
			best = f
		}
	}
	return best.normal
}
