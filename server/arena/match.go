// Package arena is the authoritative match state machine of the arena
// shooter: player directory, movement states, grapple, combat, and the
// lobby/countdown/match/end lifecycle. It is engine independent. Transport,
// physics and entity lifecycle are reached through the interfaces in
// ports.go, and every method must be called from the single goroutine that
// owns the Match.
package arena

import (
	"io"
	"log"
	"time"

	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netconfig"
)

// Result describes a finished match.
type Result struct {
	Generation uint64
	Rankings   []messages.RankEntry
	Duration   time.Duration
}

// Deps are the collaborators a Match drives.
type Deps struct {
	Transport Transport
	Physics   Physics
	Scene     Scene
	Scheduler *Scheduler
	Logger    *log.Logger

	// OnPhase is called after every phase transition.
	OnPhase func(netconfig.MatchPhase)
	// OnEnded is called once per match when it reaches Ended.
	OnEnded func(Result)
}

// Match is the root of the arena state.
type Match struct {
	cfg       *config.Config
	log       *log.Logger
	transport Transport
	physics   Physics
	scene     Scene
	sched     *Scheduler
	onPhase   func(netconfig.MatchPhase)
	onEnded   func(Result)

	dir       *Directory
	spawns    []gamemath.Vec
	hostBound bool

	phase              netconfig.MatchPhase
	readyCount         int
	countdownRemaining int
	matchTimeRemaining int
	countdownTimer     *Timer
	clockTimer         *Timer
	clockInFlight      bool
	startedAt          time.Duration
	respawns           map[ConnID]*Timer

	crown    ConnID
	hasCrown bool

	bullets    map[BulletID]*bullet
	generation uint64
}

// NewMatch creates a match in the Lobby phase.
func NewMatch(cfg *config.Config, spawns []gamemath.Vec, deps Deps) (*Match, error) {
	if len(spawns) == 0 {
		return nil, ErrNoSpawnPoints
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	sched := deps.Scheduler
	if sched == nil {
		sched = NewScheduler()
	}

	m := &Match{
		cfg:       cfg,
		log:       logger,
		transport: deps.Transport,
		physics:   deps.Physics,
		scene:     deps.Scene,
		sched:     sched,
		onPhase:   deps.OnPhase,
		onEnded:   deps.OnEnded,
		dir:       NewDirectory(cfg.Match.Capacity, spawns),
		spawns:    spawns,
		hostBound: cfg.Server.HostBound,
		bullets:   make(map[BulletID]*bullet),
		respawns:  make(map[ConnID]*Timer),
	}
	m.resetTimers()
	return m, nil
}

// DiscardLogger is a logger that drops everything.
var DiscardLogger = log.New(io.Discard, "", 0)

// Phase returns the current match phase.
func (m *Match) Phase() netconfig.MatchPhase { return m.phase }

// ReadyCount returns the number of ready players.
func (m *Match) ReadyCount() int { return m.readyCount }

// Capacity returns the configured player count.
func (m *Match) Capacity() int { return m.dir.Capacity() }

// CountdownRemaining returns the seconds left before the match starts.
func (m *Match) CountdownRemaining() int { return m.countdownRemaining }

// TimeRemaining returns the seconds left in the match.
func (m *Match) TimeRemaining() int { return m.matchTimeRemaining }

// Generation increases on every reset.
func (m *Match) Generation() uint64 { return m.generation }

// CrownHolder returns the player holding the crown.
func (m *Match) CrownHolder() (ConnID, bool) { return m.crown, m.hasCrown }

// Players returns the players in ascending ConnID order.
func (m *Match) Players() []*Player { return m.dir.Players() }

// Lookup returns the player for id.
func (m *Match) Lookup(id ConnID) (*Player, bool) { return m.dir.Lookup(id) }

// Scheduler returns the scheduler driving the match timers.
func (m *Match) Scheduler() *Scheduler { return m.sched }

// guarded wraps fn so it does nothing once the match has been reset.
func (m *Match) guarded(fn func()) func() {
	gen := m.generation
	return func() {
		if m.generation != gen {
			return
		}
		fn()
	}
}

func (m *Match) setPhase(phase netconfig.MatchPhase) {
	if m.phase == phase {
		return
	}
	m.log.Printf("[match] phase %s -> %s", m.phase, phase)
	m.phase = phase
	m.transport.Broadcast(messages.MatchPhaseChanged{Phase: phase})
	if m.onPhase != nil {
		m.onPhase(phase)
	}
}

// cancelRespawns stops every pending respawn.
func (m *Match) cancelRespawns() {
	for id, t := range m.respawns {
		t.Stop()
		delete(m.respawns, id)
	}
}

func (m *Match) resetTimers() {
	m.countdownTimer.Stop()
	m.clockTimer.Stop()
	m.countdownTimer, m.clockTimer = nil, nil
	m.cancelRespawns()
	m.clockInFlight = false
	m.countdownRemaining = m.cfg.Match.CountdownSeconds
	m.matchTimeRemaining = m.cfg.Match.MatchSeconds
}
