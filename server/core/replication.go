package core

import (
	"github.com/automoto/grapple-arena/server/arena"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netcomponents"
)

// mirror copies the authoritative arena state into the replicated donburi
// components. It runs once per tick, right before DoSync.
func (s *Server) mirror() {
	crown, hasCrown := s.match.CrownHolder()

	for _, p := range s.match.Players() {
		entity, ok := s.scene.Entity(p.ID)
		if !ok || !s.world.Valid(entity) {
			continue
		}
		entry := s.world.Entry(entity)

		if body, ok := s.scene.Body(p.ID); ok {
			nb := netcomponents.NetBody.Get(entry)
			pos, vel := body.Position(), body.Velocity()
			nb.X, nb.Y = pos.X, pos.Y
			nb.SpeedX, nb.SpeedY = vel.X, vel.Y

			ng := netcomponents.NetGrapple.Get(entry)
			ng.Attached = p.Grapple.Attached
			if p.Grapple.Attached {
				ng.AnchorX, ng.AnchorY = p.Grapple.Anchor.X, p.Grapple.Anchor.Y
				ng.OriginX, ng.OriginY = pos.X, pos.Y
			} else {
				*ng = netcomponents.NetGrappleData{}
			}
		}

		ns := netcomponents.NetPlayerState.Get(entry)
		ns.PlayerID = uint64(p.ID)
		ns.Name = p.Name
		ns.Color = p.Color
		ns.Movement = p.State
		ns.Direction = p.Direction
		ns.Health = p.Health
		ns.Kills = p.Kills
		ns.Deaths = p.Deaths
		ns.Points = p.Points
		ns.Crown = hasCrown && crown == p.ID
		ns.Active = p.Active
	}

	if s.world.Valid(s.gameState) {
		gs := netcomponents.NetGameState.Get(s.world.Entry(s.gameState))
		gs.Phase = s.match.Phase()
		gs.Countdown = s.match.CountdownRemaining()
		gs.TimeLeft = s.match.TimeRemaining()
		gs.Players = len(s.match.Players())
		gs.Ready = s.match.ReadyCount()
		gs.Capacity = s.match.Capacity()
		gs.CrownHolder = 0
		if hasCrown {
			gs.CrownHolder = uint64(crown)
		}
	}
}

// updateRope folds a rope update into the player's replicated grapple
// component.
func (s *Server) updateRope(rope messages.GrappleRope) {
	entity, ok := s.scene.Entity(arena.ConnID(rope.ID))
	if !ok || !s.world.Valid(entity) {
		return
	}
	ng := netcomponents.NetGrapple.Get(s.world.Entry(entity))
	ng.OriginX, ng.OriginY = rope.OriginX, rope.OriginY
	ng.Length = rope.Length
}
