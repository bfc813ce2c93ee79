package arena

import (
	"time"

	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netconfig"
)

// HitKind classifies what a bullet collided with.
type HitKind int

const (
	HitTerrain HitKind = iota
	HitPlayer
)

// BulletCollision is reported by the physics glue when a bullet touches
// something.
type BulletCollision struct {
	Kind   HitKind
	Player ConnID // set for HitPlayer
}

type bullet struct {
	owner  ConnID
	expiry *Timer
}

// Fire shoots a bullet from id toward target. Only allowed during an active
// match, with weapons enabled, while alive and not hooked.
func (m *Match) Fire(id ConnID, target gamemath.Vec) (BulletID, bool) {
	p, ok := m.dir.Lookup(id)
	if !ok || m.phase != netconfig.PhaseActive {
		return 0, false
	}
	if !p.Active || !p.WeaponsEnabled || p.State == netconfig.Hooked || p.Body == nil {
		return 0, false
	}

	muzzle := p.Body.Position().Add(gamemath.V(0, -m.cfg.Combat.MuzzleHeight))
	vel := gamemath.BulletVelocity(muzzle, target, m.cfg.Combat.BulletSpeed)
	if vel.IsZero() {
		return 0, false
	}
	spawn := muzzle.Add(gamemath.MuzzleOffset(vel, m.cfg.Combat.MuzzleOffset))

	bid := m.scene.SpawnBullet(id, spawn, vel)
	b := &bullet{owner: id}
	b.expiry = m.sched.After(seconds(m.cfg.Combat.BulletLifetime), m.guarded(func() {
		m.BulletExpired(bid)
	}))
	m.bullets[bid] = b
	return bid, true
}

// BulletHit resolves a bullet collision. Terrain removes the bullet. The
// owner's own body is passed through without despawning. Any other live
// player takes one point of damage credited to the owner.
func (m *Match) BulletHit(bid BulletID, hit BulletCollision) {
	b, ok := m.bullets[bid]
	if !ok {
		return
	}

	switch hit.Kind {
	case HitTerrain:
		m.despawnBullet(bid)
	case HitPlayer:
		if hit.Player == b.owner {
			return
		}
		victim, ok := m.dir.Lookup(hit.Player)
		if !ok || !victim.Active {
			return
		}
		m.ComputeDamage(hit.Player, b.owner)
		m.despawnBullet(bid)
	}
}

// BulletExpired removes a bullet that outlived its lifetime or left the map.
func (m *Match) BulletExpired(bid BulletID) {
	if _, ok := m.bullets[bid]; ok {
		m.despawnBullet(bid)
	}
}

// BulletOwner returns the owner of a live bullet.
func (m *Match) BulletOwner(bid BulletID) (ConnID, bool) {
	b, ok := m.bullets[bid]
	if !ok {
		return 0, false
	}
	return b.owner, true
}

// Bullets returns the number of live bullets.
func (m *Match) Bullets() int { return len(m.bullets) }

func (m *Match) despawnBullet(bid BulletID) {
	b := m.bullets[bid]
	b.expiry.Stop()
	delete(m.bullets, bid)
	m.scene.DespawnBullet(bid)
}

func (m *Match) clearBullets() {
	for bid := range m.bullets {
		m.despawnBullet(bid)
	}
}

// killPlayer credits attacker, announces the kill, deactivates the victim
// and schedules the respawn. A missing attacker (disconnected mid-flight)
// earns nothing but the victim still dies.
func (m *Match) killPlayer(victim *Player, attackerID ConnID) {
	attackerName := ""
	if attacker, ok := m.dir.Lookup(attackerID); ok && attacker != victim {
		attacker.Kills++
		attacker.Points += m.cfg.Match.PointsPerKill
		m.emitField(attacker, netconfig.FieldKills)
		m.emitField(attacker, netconfig.FieldPoints)
		attackerName = attacker.Name
	}

	m.transport.Broadcast(messages.KillFeed{AttackerName: attackerName, VictimName: victim.Name})
	m.transport.Send([]ConnID{victim.ID}, messages.DeathOverlay{
		AttackerName: attackerName,
		RespawnIn:    m.cfg.Combat.RespawnSeconds,
	})
	m.log.Printf("[combat] %s killed %s", nameOr(attackerName, "unknown"), victim.Name)

	m.rankPlayers()

	m.disableGrapple(victim)
	victim.Active = false
	if victim.Body != nil {
		victim.Body.SetActive(false)
	}
	m.emitField(victim, netconfig.FieldActive)

	m.respawns[victim.ID].Stop()
	m.respawns[victim.ID] = m.sched.After(seconds(m.cfg.Combat.RespawnSeconds), m.guarded(func() {
		delete(m.respawns, victim.ID)
		p, ok := m.dir.Lookup(victim.ID)
		if !ok || p != victim || p.Active || m.phase != netconfig.PhaseActive {
			return
		}
		m.respawn(p)
	}))
}

func (m *Match) respawn(p *Player) {
	pos := PickSpawn(m.spawns, m.activePositions(), m.cfg.Combat.SafeDistance)
	if p.Body != nil {
		p.Body.SetPosition(pos)
		p.Body.SetVelocity(gamemath.Vec{})
	}
	m.RespawnPlayer(p)
}

func (m *Match) activePositions() []gamemath.Vec {
	var out []gamemath.Vec
	for _, p := range m.dir.Players() {
		if p.Active {
			out = append(out, p.Position())
		}
	}
	return out
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
