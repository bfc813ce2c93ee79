package core

import (
	"log"
	"sort"

	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/server/arena"
	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/netcomponents"
	"github.com/automoto/grapple-arena/shared/netconfig"
	"github.com/leap-fish/necs/esync"
	"github.com/solarlune/resolv"
	"github.com/yohamta/donburi"
)

// replicaKind selects the component set an entity is synced with.
type replicaKind int

const (
	replicaPlayer replicaKind = iota
	replicaBullet
	replicaGameState
)

// Replicator marks a freshly created entity for network sync.
type Replicator func(world donburi.World, entity *donburi.Entity, kind replicaKind) error

type playerEntity struct {
	body   *PlayerBody
	entity donburi.Entity
}

// Scene owns the resolv bodies and donburi entities of players and bullets.
// It implements arena.Scene and arena.Physics.
type Scene struct {
	world     donburi.World
	level     *ServerLevel
	cfg       *config.Config
	replicate Replicator

	players    map[arena.ConnID]*playerEntity
	bullets    map[arena.BulletID]*BulletPhysics
	nextBullet arena.BulletID
}

// NewScene creates an empty scene over level. A nil replicate skips network
// sync, which is what tests use.
func NewScene(world donburi.World, level *ServerLevel, cfg *config.Config, replicate Replicator) *Scene {
	return &Scene{
		world:     world,
		level:     level,
		cfg:       cfg,
		replicate: replicate,
		players:   make(map[arena.ConnID]*playerEntity),
		bullets:   make(map[arena.BulletID]*BulletPhysics),
	}
}

func (sc *Scene) create(kind replicaKind, comps ...donburi.IComponentType) donburi.Entity {
	entity := sc.world.Create(comps...)
	if sc.replicate != nil {
		if err := sc.replicate(sc.world, &entity, kind); err != nil {
			log.Printf("[server] failed to set up network sync: %v", err)
		}
	}
	return entity
}

func (sc *Scene) SpawnPlayerBody(id arena.ConnID, pos gamemath.Vec) arena.Body {
	if old, ok := sc.players[id]; ok {
		return old.body
	}

	body := newPlayerBody(sc.level.Space, sc.cfg.Physics, pos, sc.cfg.Player.Width, sc.cfg.Player.Height)
	entity := sc.create(replicaPlayer,
		netcomponents.NetBody,
		netcomponents.NetPlayerState,
		netcomponents.NetGrapple,
	)
	entry := sc.world.Entry(entity)
	netcomponents.NetBody.Set(entry, &netcomponents.NetBodyData{X: pos.X, Y: pos.Y})
	netcomponents.NetPlayerState.Set(entry, &netcomponents.NetPlayerStateData{
		PlayerID:  uint64(id),
		Direction: 1,
		Active:    true,
	})

	sc.players[id] = &playerEntity{body: body, entity: entity}
	return body
}

func (sc *Scene) RemovePlayerBody(id arena.ConnID) {
	pe, ok := sc.players[id]
	if !ok {
		return
	}
	delete(sc.players, id)
	pe.body.remove()
	if sc.world.Valid(pe.entity) {
		sc.world.Remove(pe.entity)
	}
}

func (sc *Scene) SpawnBullet(owner arena.ConnID, pos, vel gamemath.Vec) arena.BulletID {
	sc.nextBullet++
	id := sc.nextBullet

	size := sc.cfg.Combat.BulletSize
	entity := sc.create(replicaBullet, netcomponents.NetBullet)
	netcomponents.NetBullet.Set(sc.world.Entry(entity), &netcomponents.NetBulletData{
		X: pos.X, Y: pos.Y,
		VelX: vel.X, VelY: vel.Y,
		OwnerID: uint64(owner),
	})

	sc.bullets[id] = newBulletPhysics(sc.level.Space, id, owner, pos, vel, size, entity)
	return id
}

func (sc *Scene) DespawnBullet(id arena.BulletID) {
	bp, ok := sc.bullets[id]
	if !ok {
		return
	}
	delete(sc.bullets, id)
	sc.level.Space.Remove(bp.Object)
	if sc.world.Valid(bp.entity) {
		sc.world.Remove(bp.entity)
	}
}

// Raycast implements arena.Physics against level tiles or live players.
func (sc *Scene) Raycast(origin, dir gamemath.Vec, layer netconfig.Layer) (arena.Hit, bool) {
	var rects []gamemath.Rect
	switch layer {
	case netconfig.LayerObstacles:
		rects = sc.level.Rects
	case netconfig.LayerPlayers:
		for _, pe := range sc.players {
			if !pe.body.active {
				continue
			}
			o := pe.body.Object
			rects = append(rects, gamemath.Rect{X: o.X, Y: o.Y, W: o.W, H: o.H})
		}
	default:
		return arena.Hit{}, false
	}

	point, normal, ok := gamemath.RayCastNormal(origin, dir, rects)
	if !ok {
		return arena.Hit{}, false
	}
	return arena.Hit{Point: point, Normal: normal}, true
}

// Body returns the physics body for a player.
func (sc *Scene) Body(id arena.ConnID) (*PlayerBody, bool) {
	pe, ok := sc.players[id]
	if !ok {
		return nil, false
	}
	return pe.body, true
}

// Entity returns the replicated entity for a player.
func (sc *Scene) Entity(id arena.ConnID) (donburi.Entity, bool) {
	pe, ok := sc.players[id]
	if !ok {
		return donburi.Null, false
	}
	return pe.entity, true
}

// NetworkID returns the esync id of a player's entity, if it has one.
func (sc *Scene) NetworkID(id arena.ConnID) esync.NetworkId {
	pe, ok := sc.players[id]
	if !ok || !sc.world.Valid(pe.entity) {
		return 0
	}
	if nid := esync.GetNetworkId(sc.world.Entry(pe.entity)); nid != nil {
		return *nid
	}
	return 0
}

// playerAt returns the player owning a resolv object.
func (sc *Scene) playerAt(obj *resolv.Object) (arena.ConnID, bool) {
	for id, pe := range sc.players {
		if pe.body.Object == obj {
			return id, true
		}
	}
	return 0, false
}

// bulletIDs returns the live bullets in ascending order.
func (sc *Scene) bulletIDs() []arena.BulletID {
	ids := make([]arena.BulletID, 0, len(sc.bullets))
	for id := range sc.bullets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
