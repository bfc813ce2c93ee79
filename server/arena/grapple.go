package arena

import (
	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netconfig"
)

// Hook launches id's grapple toward aim, a world-space point. The rope only
// fires while airborne and not already hooked, and only attaches to an
// obstacle within MaxRopeLength.
func (m *Match) Hook(id ConnID, aim gamemath.Vec) bool {
	p, ok := m.dir.Lookup(id)
	if !ok || !p.Active || !p.InputEnabled || p.Body == nil {
		return false
	}
	return m.launch(p, aim)
}

func (m *Match) launch(p *Player, aim gamemath.Vec) bool {
	if p.State == netconfig.Grounded || p.State == netconfig.Hooked {
		return false
	}

	pos := p.Body.Position()
	dir := aim.Sub(pos)
	if dir.IsZero() {
		return false
	}
	hit, ok := m.physics.Raycast(pos, dir, netconfig.LayerObstacles)
	if !ok {
		return false
	}
	dist := hit.Point.Dist(pos)
	if dist > m.cfg.Grapple.MaxRopeLength {
		return false
	}

	length := gamemath.ClampFloat(dist, m.cfg.Grapple.MinRopeLength, m.cfg.Grapple.MaxRopeLength)
	p.Grapple = Grapple{Attached: true, Anchor: hit.Point, Length: length}
	p.Body.AttachRope(hit.Point, length)
	m.setState(p, netconfig.Hooked)

	m.transport.Broadcast(messages.GrappleAnchor{ID: uint64(p.ID), X: hit.Point.X, Y: hit.Point.Y})
	return true
}

// climb shortens the rope for positive vertical input and pays it out for
// negative input.
func (m *Match) climb(p *Player, vertical, dt float64) {
	if p.State != netconfig.Hooked || !p.Grapple.Attached {
		return
	}
	if vertical != 0 {
		length := p.Grapple.Length - vertical*m.cfg.Grapple.ClimbSpeed*dt
		p.Grapple.Length = gamemath.ClampFloat(length, m.cfg.Grapple.MinRopeLength, m.cfg.Grapple.MaxRopeLength)
		p.Body.SetRopeLength(p.Grapple.Length)
	}

	origin := p.Body.Position()
	m.transport.Broadcast(messages.GrappleRope{
		ID:      uint64(p.ID),
		OriginX: origin.X,
		OriginY: origin.Y,
		Length:  p.Grapple.Length,
	})
}

// swing pushes a hooked player perpendicular to the rope.
func (m *Match) swing(p *Player, horizontal float64) {
	if p.State != netconfig.Hooked || !p.Grapple.Attached || horizontal == 0 {
		return
	}
	f := gamemath.SwingForce(p.Body.Position(), p.Grapple.Anchor, horizontal, m.cfg.Grapple.SwingForce)
	p.Body.ApplyForce(f)
}

// disableGrapple detaches the rope. It is idempotent and only notifies
// clients when a rope was actually attached. A hooked player falls back to
// Grounded or Jumping depending on ground contact.
func (m *Match) disableGrapple(p *Player) bool {
	if !p.Grapple.Attached {
		if p.State == netconfig.Hooked {
			m.setState(p, m.restingState(p))
		}
		return false
	}

	p.Grapple = Grapple{}
	if p.Body != nil {
		p.Body.DetachRope()
	}
	m.transport.Broadcast(messages.GrappleDetach{ID: uint64(p.ID)})
	if p.State == netconfig.Hooked {
		m.setState(p, m.restingState(p))
	}
	return true
}

// DisableGrapple releases id's rope, if any.
func (m *Match) DisableGrapple(id ConnID) bool {
	p, ok := m.dir.Lookup(id)
	if !ok {
		return false
	}
	return m.disableGrapple(p)
}

func (m *Match) restingState(p *Player) netconfig.MovementState {
	if p.Body != nil && p.Body.IsGrounded() {
		return netconfig.Grounded
	}
	return netconfig.Jumping
}
