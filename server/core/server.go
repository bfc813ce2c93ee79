package core

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/server/arena"
	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netcomponents"
	"github.com/automoto/grapple-arena/shared/netconfig"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
)

// commandBuffer is how many client commands may queue between two ticks.
const commandBuffer = 1024

type connectCmd struct{ client peer }

type disconnectCmd struct {
	client peer
	err    error
}

type messageCmd struct {
	client peer
	msg    any
}

// Status is a snapshot of the server for the master registration.
type Status struct {
	Players  int
	Capacity int
	Phase    netconfig.MatchPhase
}

// Server manages the game state and client connections. Router callbacks
// run on transport goroutines and only enqueue commands; everything else
// happens on the game loop goroutine.
type Server struct {
	cfg       *config.Config
	world     donburi.World
	loop      *GameLoop
	transport *transports.WsServerTransport

	level     *ServerLevel
	scene     *Scene
	match     *arena.Match
	history   *History
	peers     *peerSet
	sessions  *sessions
	gameState donburi.Entity

	commands chan any

	mu     sync.RWMutex
	status Status
}

// NewServer creates a game server for level. history may be nil.
func NewServer(cfg *config.Config, level *ServerLevel, history *History) (*Server, error) {
	world := donburi.NewWorld()

	// Set up the world for esync
	srvsync.UseEsync(world)

	s, err := newServer(cfg, world, level, history, networkSync)
	if err != nil {
		return nil, err
	}

	// Register router callbacks
	s.setupRouterCallbacks()

	return s, nil
}

func newServer(cfg *config.Config, world donburi.World, level *ServerLevel, history *History, replicate Replicator) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		world:    world,
		level:    level,
		history:  history,
		peers:    newPeerSet(),
		sessions: newSessions(time.Duration(cfg.Server.ReconnectGraceSeconds) * time.Second),
		commands: make(chan any, commandBuffer),
	}
	s.scene = NewScene(world, level, cfg, replicate)
	s.peers.onRope = s.updateRope
	s.peers.onDrop = s.sessions.forget

	match, err := arena.NewMatch(cfg, level.Spawns(), arena.Deps{
		Transport: s.peers,
		Physics:   s.scene,
		Scene:     s.scene,
		Logger:    log.Default(),
		OnPhase:   s.onPhase,
		OnEnded:   s.onEnded,
	})
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	s.match = match

	s.gameState = s.scene.create(replicaGameState, netcomponents.NetGameState)
	s.status = Status{Capacity: match.Capacity(), Phase: match.Phase()}
	s.loop = NewGameLoop(s, cfg.Server.TickRate)
	s.mirror()
	return s, nil
}

// networkSync marks entities for esync replication. Bodies and bullets are
// interpolated client side.
func networkSync(world donburi.World, entity *donburi.Entity, kind replicaKind) error {
	switch kind {
	case replicaPlayer:
		return srvsync.NetworkSync(world, entity,
			srvsync.WithInterp(netcomponents.NetBody),
			netcomponents.NetPlayerState,
			netcomponents.NetGrapple,
		)
	case replicaBullet:
		return srvsync.NetworkSync(world, entity, srvsync.WithInterp(netcomponents.NetBullet))
	default:
		return srvsync.NetworkSync(world, entity, netcomponents.NetGameState)
	}
}

// Start begins the server on the given port
func (s *Server) Start(port uint) error {
	// Start game loop
	go s.loop.Run()

	// Create and start WebSocket transport
	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	// Handle new connections
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("Client connected: %s", client.Id())
		s.commands <- connectCmd{client: client}
	})

	// Handle disconnections
	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		if err != nil {
			log.Printf("Client %s disconnected with error: %v", client.Id(), err)
		} else {
			log.Printf("Client %s disconnected", client.Id())
		}
		s.commands <- disconnectCmd{client: client, err: err}
	})

	route[messages.JoinRequest](s)
	route[messages.PlayerInput](s)
	route[messages.JumpRequest](s)
	route[messages.HookRequest](s)
	route[messages.FireRequest](s)
	route[messages.ReadyRequest](s)
	route[messages.ProfileRequest](s)
	route[messages.ResetRequest](s)

	// Handle errors
	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("Client error: %v", err)
	})
}

// route forwards messages of type T to the game loop.
func route[T any](s *Server) {
	router.On(func(client *router.NetworkClient, msg T) {
		s.enqueue(client, msg)
	})
}

// enqueue queues a client message, dropping it when the loop is behind.
func (s *Server) enqueue(client peer, msg any) {
	select {
	case s.commands <- messageCmd{client: client, msg: msg}:
	default:
		log.Printf("[server] command queue full, dropping %T from %s", msg, client.Id())
	}
}

// ProcessCommands drains every queued command. Called at the start of each
// tick from the game loop goroutine.
func (s *Server) ProcessCommands() {
	for {
		select {
		case cmd := <-s.commands:
			s.handleCommand(cmd)
		default:
			return
		}
	}
}

func (s *Server) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case connectCmd:
		id := s.peers.add(c.client)
		log.Printf("[server] client %s is connection %d", c.client.Id(), id)
	case disconnectCmd:
		id, ok := s.peers.lookup(c.client)
		if !ok {
			return
		}
		joined := s.peers.isJoined(id)
		s.peers.remove(id)
		if joined {
			if p, ok := s.match.Lookup(id); ok {
				s.sessions.hold(p, s.match.Generation(), s.match.Scheduler().Now())
			}
			s.match.Leave(id)
		}
		s.updateStatus()
	case messageCmd:
		id, ok := s.peers.lookup(c.client)
		if !ok {
			return
		}
		s.handleMessage(id, c.msg)
	}
}

func (s *Server) handleMessage(id arena.ConnID, msg any) {
	if join, ok := msg.(messages.JoinRequest); ok {
		s.handleJoin(id, join)
		return
	}
	if !s.peers.isJoined(id) {
		return
	}

	switch m := msg.(type) {
	case messages.PlayerInput:
		s.match.SetInput(id, arena.Input{MoveX: m.MoveX, MoveY: m.MoveY, Sequence: m.Sequence})
	case messages.JumpRequest:
		s.match.Jump(id)
	case messages.HookRequest:
		s.match.Hook(id, gamemath.V(m.X, m.Y))
	case messages.FireRequest:
		s.match.Fire(id, gamemath.V(m.X, m.Y))
	case messages.ReadyRequest:
		s.match.Ready(id)
	case messages.ProfileRequest:
		s.match.SetColor(id, m.Color)
	case messages.ResetRequest:
		s.match.RequestReset(id)
	}
}

// handleJoin runs the join handshake: version check, then the match's
// capacity and name checks. Rejected clients are told why and disconnected.
// A valid reconnect token brings back the name, colour and score held for
// the departed player.
func (s *Server) handleJoin(id arena.ConnID, req messages.JoinRequest) {
	if s.peers.isJoined(id) {
		return
	}
	if want := s.cfg.Server.Version; want != "" && req.Version != want {
		s.rejectJoin(id, arena.Reject(arena.VersionMismatch,
			fmt.Sprintf("server runs %s, client runs %s", want, req.Version)))
		return
	}

	name, color := req.PlayerName, req.Color
	held, reclaimed := heldSession{}, false
	if req.ReconnectToken != "" {
		held, reclaimed = s.sessions.claim(req.ReconnectToken, s.match.Generation(), s.match.Scheduler().Now())
		if reclaimed {
			name, color = held.name, held.color
		} else {
			log.Printf("[server] connection %d sent an unknown or expired reconnect token", id)
		}
	}

	// Joined first so the newcomer receives its own join broadcasts.
	s.peers.setJoined(id, true)
	p, err := s.match.Join(id, name, color)
	if err != nil {
		s.peers.setJoined(id, false)
		if reclaimed {
			s.sessions.restore(req.ReconnectToken, held)
		}
		var rejected *arena.RejectedError
		if !errors.As(err, &rejected) {
			rejected = arena.Reject(arena.InvalidName, err.Error())
		}
		s.rejectJoin(id, rejected)
		return
	}

	if reclaimed {
		s.match.RestoreScore(id, held.score)
		log.Printf("[server] connection %d reclaimed the session of %q", id, held.name)
	}

	s.peers.Send([]arena.ConnID{id}, messages.JoinAccepted{
		PlayerID:       uint64(id),
		NetworkID:      s.scene.NetworkID(id),
		ReconnectToken: s.sessions.issue(id),
		ServerName:     s.cfg.Server.Name,
		TickRate:       s.cfg.Server.TickRate,
		Capacity:       s.match.Capacity(),
		Level:          s.level.Name,
	})
	log.Printf("[server] connection %d joined as %q", id, p.Name)
	s.updateStatus()
}

func (s *Server) rejectJoin(id arena.ConnID, err *arena.RejectedError) {
	log.Printf("[server] rejecting connection %d: %v", id, err)
	s.peers.Send([]arena.ConnID{id}, messages.JoinRejected{Reason: err.Reason.String()})
	s.peers.Disconnect(id)
}

// Update advances the simulation by one tick of dt seconds.
func (s *Server) Update(dt float64) {
	s.scene.updatePhysics(dt)
	s.match.Step(dt)
	s.match.Scheduler().Advance(time.Duration(dt * float64(time.Second)))
	s.stepBullets(dt)
	s.mirror()
}

func (s *Server) onPhase(phase netconfig.MatchPhase) {
	s.updateStatus()
}

func (s *Server) onEnded(res arena.Result) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(s.level.Name, res); err != nil {
		log.Printf("[history] failed to record match: %v", err)
	}
}

func (s *Server) updateStatus() {
	s.mu.Lock()
	s.status = Status{
		Players:  len(s.match.Players()),
		Capacity: s.match.Capacity(),
		Phase:    s.match.Phase(),
	}
	s.mu.Unlock()
}

// Status returns a snapshot safe to read from any goroutine.
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// PlayerCount returns the number of joined players
func (s *Server) PlayerCount() int {
	return s.Status().Players
}

// World returns the ECS world
func (s *Server) World() donburi.World {
	return s.world
}

// Match returns the authoritative match state.
func (s *Server) Match() *arena.Match {
	return s.match
}
