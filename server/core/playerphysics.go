package core

import (
	"math"

	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/solarlune/resolv"
)

// PlayerBody is the server-side physics body of a player. It lives only on
// the server and is never synced; the replicated NetBody mirrors it.
type PlayerBody struct {
	Object *resolv.Object
	space  *resolv.Space
	phys   config.PhysicsConfig

	vel      gamemath.Vec
	force    gamemath.Vec
	onGround bool
	active   bool

	roped   bool
	anchor  gamemath.Vec
	ropeLen float64
}

func newPlayerBody(space *resolv.Space, phys config.PhysicsConfig, center gamemath.Vec, w, h float64) *PlayerBody {
	obj := resolv.NewObject(center.X-w/2, center.Y-h/2, w, h, tagPlayer)
	obj.SetShape(resolv.NewRectangle(0, 0, w, h))
	space.Add(obj)

	return &PlayerBody{
		Object: obj,
		space:  space,
		phys:   phys,
		active: true,
	}
}

func (b *PlayerBody) remove() {
	if b.active {
		b.space.Remove(b.Object)
	}
	b.active = false
}

// Position returns the center of the body.
func (b *PlayerBody) Position() gamemath.Vec {
	return gamemath.V(b.Object.X+b.Object.W/2, b.Object.Y+b.Object.H/2)
}

func (b *PlayerBody) Velocity() gamemath.Vec { return b.vel }

func (b *PlayerBody) SetPosition(p gamemath.Vec) {
	b.Object.X = p.X - b.Object.W/2
	b.Object.Y = p.Y - b.Object.H/2
	b.Object.Update()
	b.onGround = false
}

func (b *PlayerBody) SetVelocity(v gamemath.Vec) { b.vel = v }

func (b *PlayerBody) ApplyForce(f gamemath.Vec) { b.force = b.force.Add(f) }

func (b *PlayerBody) IsGrounded() bool { return b.active && b.onGround }

func (b *PlayerBody) AttachRope(anchor gamemath.Vec, length float64) {
	b.roped = true
	b.anchor = anchor
	b.ropeLen = length
}

func (b *PlayerBody) SetRopeLength(length float64) {
	if b.roped {
		b.ropeLen = length
	}
}

func (b *PlayerBody) DetachRope() { b.roped = false }

// Rope returns the anchor and length of the attached rope.
func (b *PlayerBody) Rope() (gamemath.Vec, float64, bool) {
	return b.anchor, b.ropeLen, b.roped
}

func (b *PlayerBody) SetActive(active bool) {
	if b.active == active {
		return
	}
	b.active = active
	if active {
		b.space.Add(b.Object)
		return
	}
	b.space.Remove(b.Object)
	b.vel = gamemath.Vec{}
	b.force = gamemath.Vec{}
	b.onGround = false
}

// step performs a single physics sub-step of dt seconds.
func (b *PlayerBody) step(dt float64) {
	if !b.active {
		return
	}

	// --- Forces ---
	mass := b.phys.Mass
	if mass <= 0 {
		mass = 1
	}
	b.vel = b.vel.Add(b.force.Scale(dt / mass))
	b.force = gamemath.Vec{}

	// --- Gravity ---
	b.vel.Y += b.phys.Gravity * dt
	if b.vel.Y > b.phys.MaxFallSpeed {
		b.vel.Y = b.phys.MaxFallSpeed
	}

	// --- Resolve horizontal collision ---
	dx := b.vel.X * dt
	if dx != 0 {
		if check := b.Object.Check(dx, 0, tagSolid); check != nil {
			if move, hit := nearestContact(b.Object, check.ObjectsByTags(tagSolid), dx, dx, true); hit {
				dx = move
				b.vel.X = 0
			}
		}
		b.Object.X += dx
	}

	// --- Resolve vertical collision ---
	dy := b.vel.Y * dt
	checkDist := dy
	if dy >= 0 {
		checkDist++
	}

	b.onGround = false
	if check := b.Object.Check(0, checkDist, tagSolid); check != nil {
		if move, hit := nearestContact(b.Object, check.ObjectsByTags(tagSolid), dy, checkDist, false); hit {
			dy = move
			if b.vel.Y >= 0 {
				// Landing
				b.onGround = true
			}
			b.vel.Y = 0
		}
	}
	b.Object.Y += dy

	if b.roped {
		b.constrainRope()
	}
	b.Object.Update()
}

// constrainRope keeps the body within rope length of the anchor and removes
// the velocity component pulling away from it.
func (b *PlayerBody) constrainRope() {
	pos := b.Position()
	d := pos.Sub(b.anchor)
	dist := d.Len()
	if dist <= b.ropeLen || dist == 0 {
		return
	}
	n := d.Scale(1 / dist)
	target := b.anchor.Add(n.Scale(b.ropeLen))
	b.Object.X = target.X - b.Object.W/2
	b.Object.Y = target.Y - b.Object.H/2
	if outward := b.vel.Dot(n); outward > 0 {
		b.vel = b.vel.Sub(n.Scale(outward))
	}
}

// contactEps absorbs float drift when bodies rest exactly on a tile edge.
const contactEps = 1e-6

// nearestContact returns the move along one axis that brings obj into
// contact with the closest of solids in the direction of want, or want itself
// when nothing is in reach. reach is how far the probe looked.
func nearestContact(obj *resolv.Object, solids []*resolv.Object, want, reach float64, horizontal bool) (float64, bool) {
	best := math.Inf(1)
	for _, o := range solids {
		var gap float64
		if horizontal {
			if o.Y >= obj.Y+obj.H-contactEps || o.Y+o.H <= obj.Y+contactEps {
				continue
			}
			if want > 0 {
				gap = o.X - (obj.X + obj.W)
			} else {
				gap = obj.X - (o.X + o.W)
			}
		} else {
			if o.X >= obj.X+obj.W-contactEps || o.X+o.W <= obj.X+contactEps {
				continue
			}
			if want >= 0 {
				gap = o.Y - (obj.Y + obj.H)
			} else {
				gap = obj.Y - (o.Y + o.H)
			}
		}
		if gap < -contactEps {
			continue
		}
		best = math.Min(best, math.Max(gap, 0))
	}
	if best > math.Abs(reach) {
		return want, false
	}
	if want < 0 {
		return -best, true
	}
	return best, true
}
