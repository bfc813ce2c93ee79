package arena

import (
	"time"

	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netconfig"
)

// Join registers id with the given profile and spawns its body. The name
// must pass NormalizeName. Failures are *RejectedError.
func (m *Match) Join(id ConnID, name string, color [4]uint8) (*Player, error) {
	name, err := NormalizeName(name, m.cfg.Player.MaxNameLength)
	if err != nil {
		return nil, err
	}
	if p, exists := m.dir.Lookup(id); exists {
		return p, nil
	}
	p, err := m.dir.Register(id)
	if err != nil {
		m.log.Printf("[match] rejected connection %d: %v", id, err)
		return nil, err
	}

	p.Name = name
	p.Color = NormalizeColor(color)
	p.Health = m.cfg.Player.MaxHP
	p.JumpsLeft = m.cfg.Player.MaxJumps
	p.Direction = 1
	p.Active = true
	p.InputEnabled = m.phase != netconfig.PhaseEnded
	p.WeaponsEnabled = m.phase == netconfig.PhaseActive
	p.State = netconfig.Jumping
	p.Body = m.scene.SpawnPlayerBody(id, p.Spawn)

	m.log.Printf("[match] %s joined as %d (%d/%d)", p.Name, id, m.dir.Len(), m.dir.Capacity())

	m.transport.Broadcast(messages.PlayerJoined{ID: uint64(id), Name: p.Name})
	m.broadcastPlayerCount()
	m.transport.Send([]ConnID{id}, messages.MatchPhaseChanged{Phase: m.phase})
	m.transport.Send([]ConnID{id}, messages.ReadyCount{Ready: m.readyCount, Capacity: m.dir.Capacity()})
	if m.hasCrown {
		m.transport.Send([]ConnID{id}, messages.CrownChanged{ID: uint64(m.crown), Active: true})
	}
	return p, nil
}

// Leave removes id. Lobby and countdown readiness is adjusted for players
// who had readied. The last player leaving a server that is not host bound
// resets the match.
func (m *Match) Leave(id ConnID) {
	p, ok := m.dir.Unregister(id)
	if !ok {
		return
	}

	m.respawns[id].Stop()
	delete(m.respawns, id)
	m.disableGrapple(p)
	m.scene.RemovePlayerBody(id)
	m.log.Printf("[match] %s (%d) left (%d/%d)", p.Name, id, m.dir.Len(), m.dir.Capacity())

	m.transport.Broadcast(messages.PlayerLeft{ID: uint64(id), Name: p.Name})
	m.broadcastPlayerCount()

	if p.Ready && (m.phase == netconfig.PhaseLobby || m.phase == netconfig.PhaseCountdown) {
		m.readyCount--
		m.broadcastReadyCount()
	}

	if m.hasCrown && m.crown == id {
		m.crown, m.hasCrown = 0, false
		if m.phase == netconfig.PhaseActive {
			m.rankPlayers()
		}
	}

	if m.dir.Len() == 0 && !m.hostBound {
		m.Reset()
	}
}

// Ready marks id ready in the lobby. The countdown starts once every slot is
// filled with a ready player.
func (m *Match) Ready(id ConnID) bool {
	p, ok := m.dir.Lookup(id)
	if !ok || m.phase != netconfig.PhaseLobby || p.Ready {
		return false
	}
	p.Ready = true
	m.readyCount++
	m.broadcastReadyCount()

	if m.readyCount == m.dir.Capacity() {
		m.startCountdown()
	}
	return true
}

func (m *Match) startCountdown() {
	m.countdownRemaining = m.cfg.Match.CountdownSeconds
	m.setPhase(netconfig.PhaseCountdown)
	m.transport.Broadcast(messages.CountdownTick{SecondsLeft: m.countdownRemaining})

	m.countdownTimer.Stop()
	m.countdownTimer = m.sched.Every(time.Second, m.guarded(m.countdownTick))
}

func (m *Match) countdownTick() {
	if m.phase != netconfig.PhaseCountdown {
		m.countdownTimer.Stop()
		return
	}
	if m.dir.Len() < m.dir.Capacity() || m.readyCount < m.dir.Capacity() {
		m.abortCountdown()
		return
	}

	m.countdownRemaining--
	m.transport.Broadcast(messages.CountdownTick{SecondsLeft: m.countdownRemaining})
	if m.countdownRemaining <= 0 {
		m.countdownTimer.Stop()
		m.startMatch()
	}
}

// abortCountdown returns to the lobby. Ready flags of the remaining players
// are kept.
func (m *Match) abortCountdown() {
	m.countdownTimer.Stop()
	m.countdownRemaining = m.cfg.Match.CountdownSeconds
	m.log.Printf("[match] countdown aborted, %d/%d players, %d ready", m.dir.Len(), m.dir.Capacity(), m.readyCount)
	m.transport.Broadcast(messages.CountdownTick{SecondsLeft: netconfig.CountdownCancelled})
	m.setPhase(netconfig.PhaseLobby)
}

func (m *Match) startMatch() {
	for i, p := range m.dir.Players() {
		pos := m.spawns[i%len(m.spawns)]
		m.disableGrapple(p)
		if p.Body != nil {
			p.Body.SetPosition(pos)
			p.Body.SetVelocity(gamemath.Vec{})
			p.Body.SetActive(true)
		}
		p.Active = true
		p.Health = m.cfg.Player.MaxHP
		p.JumpsLeft = m.cfg.Player.MaxJumps
		p.WeaponsEnabled = true
		p.InputEnabled = true
		m.emitField(p, netconfig.FieldActive)
		m.emitField(p, netconfig.FieldHealth)
	}

	m.matchTimeRemaining = m.cfg.Match.MatchSeconds
	m.startedAt = m.sched.Now()
	m.setPhase(netconfig.PhaseActive)
	m.transport.Broadcast(messages.MatchClockTick{SecondsLeft: m.matchTimeRemaining})

	m.clockTimer.Stop()
	m.clockTimer = m.sched.Every(time.Second, m.guarded(m.clockTick))
}

// clockTick advances the match clock by one second. The in-flight flag
// keeps a re-entrant call from counting the same second twice.
func (m *Match) clockTick() {
	if m.clockInFlight || m.phase != netconfig.PhaseActive {
		return
	}
	m.clockInFlight = true
	defer func() { m.clockInFlight = false }()

	m.matchTimeRemaining--
	m.transport.Broadcast(messages.MatchClockTick{SecondsLeft: m.matchTimeRemaining})
	if m.matchTimeRemaining <= 0 {
		m.endMatch()
	}
}

func (m *Match) endMatch() {
	m.clockTimer.Stop()
	m.cancelRespawns()
	m.clearBullets()

	for _, p := range m.dir.Players() {
		m.disableGrapple(p)
		m.setState(p, netconfig.Grounded)
		p.InputEnabled = false
		p.WeaponsEnabled = false
		if p.Body != nil {
			vel := p.Body.Velocity()
			vel.X = 0
			p.Body.SetVelocity(vel)
		}
	}
	m.transport.Broadcast(messages.EndGameActions{})

	entries := rankEntries(m.rankPlayers())
	m.transport.Broadcast(messages.Rankings{Entries: entries})
	m.setPhase(netconfig.PhaseEnded)

	if m.onEnded != nil {
		m.onEnded(Result{
			Generation: m.generation,
			Rankings:   entries,
			Duration:   m.sched.Now() - m.startedAt,
		})
	}
}

// RequestReset resets an ended match on a client's request.
func (m *Match) RequestReset(id ConnID) bool {
	if _, ok := m.dir.Lookup(id); !ok || m.phase != netconfig.PhaseEnded {
		return false
	}
	m.Reset()
	return true
}

// Reset disconnects every remaining client and returns to an empty lobby.
// Callbacks scheduled before the reset become no-ops.
func (m *Match) Reset() {
	m.log.Printf("[match] reset (generation %d)", m.generation+1)

	players := m.dir.Players()
	m.dir.Clear()
	for _, p := range players {
		m.scene.RemovePlayerBody(p.ID)
		m.transport.Disconnect(p.ID)
	}

	m.clearBullets()
	m.resetTimers()
	m.readyCount = 0
	m.crown, m.hasCrown = 0, false
	m.generation++
	m.setPhase(netconfig.PhaseLobby)
}

func (m *Match) broadcastPlayerCount() {
	m.transport.Broadcast(messages.PlayerCount{Count: m.dir.Len(), Capacity: m.dir.Capacity()})
}

func (m *Match) broadcastReadyCount() {
	m.transport.Broadcast(messages.ReadyCount{Ready: m.readyCount, Capacity: m.dir.Capacity()})
}
