package arena

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netconfig"
)

// Input is the latest movement input received from a player.
type Input struct {
	MoveX, MoveY float64
	Sequence     uint32
}

// Player is the authoritative state of one connected client.
type Player struct {
	ID    ConnID
	Name  string
	Color [4]uint8

	State     netconfig.MovementState
	Health    int
	Kills     int
	Deaths    int
	Points    int
	Crown     bool
	Ready     bool
	Active    bool
	JumpsLeft int
	Direction int // -1 left, 1 right

	WeaponsEnabled bool
	InputEnabled   bool
	Input          Input

	SpawnIndex int
	Spawn      gamemath.Vec
	Body       Body
	Grapple    Grapple
}

// Grapple is a player's rope. Only meaningful while Attached.
type Grapple struct {
	Attached bool
	Anchor   gamemath.Vec
	Length   float64
}

// Position returns the body position, or the spawn point before a body
// exists.
func (p *Player) Position() gamemath.Vec {
	if p.Body == nil {
		return p.Spawn
	}
	return p.Body.Position()
}

// NormalizeName trims name and checks it is 1..maxLen printable runes.
func NormalizeName(name string, maxLen int) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return "", Reject(InvalidName, "name is empty")
	}
	if n > maxLen {
		return "", Reject(InvalidName, "name is too long")
	}
	if !utf8.ValidString(name) {
		return "", Reject(InvalidName, "name is not valid UTF-8")
	}
	for _, r := range name {
		if !unicode.IsPrint(r) {
			return "", Reject(InvalidName, "name contains unprintable characters")
		}
	}
	return name, nil
}

// NormalizeColor makes a fully transparent colour opaque.
func NormalizeColor(c [4]uint8) [4]uint8 {
	if c[3] == 0 {
		c[3] = 255
	}
	return c
}

// SetInput records the latest movement axes for id. Axes are clamped to
// [-1, 1].
func (m *Match) SetInput(id ConnID, in Input) {
	p, ok := m.dir.Lookup(id)
	if !ok {
		return
	}
	in.MoveX = gamemath.ClampFloat(in.MoveX, -1, 1)
	in.MoveY = gamemath.ClampFloat(in.MoveY, -1, 1)
	p.Input = in
	if in.MoveX > 0 {
		p.Direction = 1
	} else if in.MoveX < 0 {
		p.Direction = -1
	}
}

// SetColor changes a player's colour and re-broadcasts it.
func (m *Match) SetColor(id ConnID, c [4]uint8) {
	p, ok := m.dir.Lookup(id)
	if !ok {
		return
	}
	p.Color = NormalizeColor(c)
	m.emitField(p, netconfig.FieldColor)
}

// Score is the part of a player's record that survives a reconnect.
type Score struct {
	Kills  int
	Deaths int
	Points int
}

// Score returns the player's current score.
func (p *Player) Score() Score {
	return Score{Kills: p.Kills, Deaths: p.Deaths, Points: p.Points}
}

// RestoreScore puts back a score saved from an earlier session in the same
// match and re-ranks an active match.
func (m *Match) RestoreScore(id ConnID, s Score) bool {
	p, ok := m.dir.Lookup(id)
	if !ok {
		return false
	}
	p.Kills, p.Deaths, p.Points = s.Kills, s.Deaths, max(0, s.Points)
	m.emitField(p, netconfig.FieldKills)
	m.emitField(p, netconfig.FieldDeaths)
	m.emitField(p, netconfig.FieldPoints)
	if m.phase == netconfig.PhaseActive {
		m.rankPlayers()
	}
	return true
}

// Jump handles a jump request. A hooked player releases the rope first.
// Grounded players regain all jumps; airborne players spend one.
func (m *Match) Jump(id ConnID) bool {
	p, ok := m.dir.Lookup(id)
	if !ok || !p.Active || !p.InputEnabled || p.Body == nil {
		return false
	}

	if p.State == netconfig.Hooked {
		m.disableGrapple(p)
	}
	if p.State == netconfig.Grounded {
		p.JumpsLeft = m.cfg.Player.MaxJumps
	}
	if p.JumpsLeft <= 0 {
		return false
	}

	vel := p.Body.Velocity()
	vel.Y = -m.cfg.Player.JumpVelocity
	p.Body.SetVelocity(vel)
	p.JumpsLeft--
	m.setState(p, netconfig.Jumping)
	return true
}

// Step runs the per-tick movement logic for every active player. It must
// run after the physics bodies have been integrated so ground contact is
// current. Movement is frozen once the match has ended.
func (m *Match) Step(dt float64) {
	if m.phase == netconfig.PhaseEnded {
		return
	}
	for _, p := range m.dir.Players() {
		if !p.Active || p.Body == nil {
			continue
		}
		m.stepPlayer(p, dt)
	}
}

func (m *Match) stepPlayer(p *Player, dt float64) {
	if p.Body.IsGrounded() {
		if p.State == netconfig.Hooked {
			m.disableGrapple(p)
		}
		p.JumpsLeft = m.cfg.Player.MaxJumps
		m.setState(p, netconfig.Grounded)
	} else if p.State == netconfig.Grounded {
		m.setState(p, netconfig.Jumping)
	}

	in := p.Input
	if !p.InputEnabled {
		in = Input{}
	}

	if p.State == netconfig.Hooked {
		m.climb(p, in.MoveY, dt)
		m.swing(p, in.MoveX)
		return
	}

	vel := p.Body.Velocity()
	vel.X = in.MoveX * m.cfg.Player.MoveSpeed
	p.Body.SetVelocity(vel)
}

// ComputeDamage removes one point of health from victim. At zero health
// the victim is killed and credited to attacker. Dead players take no
// damage.
func (m *Match) ComputeDamage(victim ConnID, attacker ConnID) {
	p, ok := m.dir.Lookup(victim)
	if !ok || !p.Active || p.Health <= 0 {
		return
	}
	p.Health--
	m.emitField(p, netconfig.FieldHealth)
	if p.Health == 0 {
		m.killPlayer(p, attacker)
	}
}

// RespawnPlayer brings a dead player back with full health and charges the
// death: deaths +1 and points reduced by PointsPerDeath, never below zero.
func (m *Match) RespawnPlayer(p *Player) {
	m.disableGrapple(p)

	p.Active = true
	if p.Body != nil {
		p.Body.SetActive(true)
	}
	p.Health = m.cfg.Player.MaxHP
	p.Deaths++
	p.Points -= m.cfg.Match.PointsPerDeath
	if p.Points < 0 {
		p.Points = 0
	}

	m.emitField(p, netconfig.FieldActive)
	m.emitField(p, netconfig.FieldHealth)
	m.emitField(p, netconfig.FieldDeaths)
	m.emitField(p, netconfig.FieldPoints)
}

func (m *Match) setState(p *Player, s netconfig.MovementState) {
	if p.State == s {
		return
	}
	p.State = s
	m.emitField(p, netconfig.FieldMovement)
}

// emitField broadcasts one replicated field of p.
func (m *Match) emitField(p *Player, field netconfig.StateField) {
	msg := messages.StateChanged{ID: uint64(p.ID), Field: field}
	switch field {
	case netconfig.FieldMovement:
		msg.Value = int(p.State)
	case netconfig.FieldHealth:
		msg.Value = p.Health
	case netconfig.FieldKills:
		msg.Value = p.Kills
	case netconfig.FieldDeaths:
		msg.Value = p.Deaths
	case netconfig.FieldPoints:
		msg.Value = p.Points
	case netconfig.FieldName:
		msg.Text = p.Name
	case netconfig.FieldColor:
		msg.Color = p.Color
	case netconfig.FieldActive:
		if p.Active {
			msg.Value = 1
		}
	}
	m.transport.Broadcast(msg)
}
