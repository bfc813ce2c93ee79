package core

import (
	"github.com/automoto/grapple-arena/server/arena"
	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/netcomponents"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
)

// BulletPhysics holds server-side physics state for a bullet entity.
type BulletPhysics struct {
	ID     arena.BulletID
	Owner  arena.ConnID
	Object *resolv.Object
	Vel    gamemath.Vec
	entity donburi.Entity
}

func newBulletPhysics(space *resolv.Space, id arena.BulletID, owner arena.ConnID, center, vel gamemath.Vec, size float64, entity donburi.Entity) *BulletPhysics {
	obj := resolv.NewObject(center.X-size/2, center.Y-size/2, size, size, tagBullet)
	obj.SetShape(resolv.NewRectangle(0, 0, size, size))
	space.Add(obj)

	return &BulletPhysics{
		ID:     id,
		Owner:  owner,
		Object: obj,
		Vel:    vel,
		entity: entity,
	}
}

// Center returns the center of the bullet.
func (bp *BulletPhysics) Center() gamemath.Vec {
	return gamemath.V(bp.Object.X+bp.Object.W/2, bp.Object.Y+bp.Object.H/2)
}

// bulletEvent is a collision found during a physics step, applied after the
// step so despawns do not mutate the bullet set mid-iteration.
type bulletEvent struct {
	id      arena.BulletID
	hit     arena.BulletCollision
	expired bool
}

// stepBullets moves every bullet by dt seconds and reports terrain hits,
// player hits and out-of-bounds bullets to the match.
func (s *Server) stepBullets(dt float64) {
	for _, ev := range s.scene.moveBullets(dt) {
		if ev.expired {
			s.match.BulletExpired(ev.id)
			continue
		}
		s.match.BulletHit(ev.id, ev.hit)
	}
}

func (sc *Scene) moveBullets(dt float64) []bulletEvent {
	steps := sc.cfg.Physics.SubSteps
	if steps < 1 {
		steps = 1
	}
	sub := dt / float64(steps)

	var events []bulletEvent
	for _, id := range sc.bulletIDs() {
		bp := sc.bullets[id]
		passedOwner := false
		for step := 0; step < steps; step++ {
			bp.Object.X += bp.Vel.X * sub
			bp.Object.Y += bp.Vel.Y * sub
			bp.Object.Update()

			ev, ok := sc.collideBullet(bp)
			if !ok {
				continue
			}
			if ev.hit.Kind == arena.HitPlayer && ev.hit.Player == bp.Owner && !ev.expired {
				if !passedOwner {
					events = append(events, ev)
					passedOwner = true
				}
				continue
			}
			events = append(events, ev)
			break
		}

		if world := sc.world; world.Valid(bp.entity) {
			nb := netcomponents.NetBullet.Get(world.Entry(bp.entity))
			c := bp.Center()
			nb.X, nb.Y = c.X, c.Y
			nb.VelX, nb.VelY = bp.Vel.X, bp.Vel.Y
		}
	}
	return events
}

// collideBullet checks one bullet against players and solids. A player other
// than the owner wins over terrain; touching only the owner reports the owner
// so the match can let the bullet through.
func (sc *Scene) collideBullet(bp *BulletPhysics) (bulletEvent, bool) {
	if !sc.level.InBounds(bp.Center()) {
		return bulletEvent{id: bp.ID, expired: true}, true
	}

	check := bp.Object.Check(0, 0, tagSolid, tagPlayer)
	if check == nil {
		return bulletEvent{}, false
	}

	ownerTouched := false
	for _, o := range check.ObjectsByTags(tagPlayer) {
		if !overlaps(bp.Object, o) {
			continue
		}
		id, ok := sc.playerAt(o)
		if !ok {
			continue
		}
		if id == bp.Owner {
			ownerTouched = true
			continue
		}
		return bulletEvent{id: bp.ID, hit: arena.BulletCollision{Kind: arena.HitPlayer, Player: id}}, true
	}

	for _, o := range check.ObjectsByTags(tagSolid) {
		if overlaps(bp.Object, o) {
			return bulletEvent{id: bp.ID, hit: arena.BulletCollision{Kind: arena.HitTerrain}}, true
		}
	}

	if ownerTouched {
		return bulletEvent{id: bp.ID, hit: arena.BulletCollision{Kind: arena.HitPlayer, Player: bp.Owner}}, true
	}
	return bulletEvent{}, false
}

func overlaps(a, b *resolv.Object) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
}
