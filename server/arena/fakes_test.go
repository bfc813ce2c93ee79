package arena

import (
	"testing"
	"time"

	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/netconfig"
)

type sentMsg struct {
	to  []ConnID
	msg any
}

type fakeTransport struct {
	broadcasts   []any
	sends        []sentMsg
	disconnected []ConnID
	onBroadcast  func(msg any)
}

func (f *fakeTransport) Send(to []ConnID, msg any) {
	f.sends = append(f.sends, sentMsg{to: to, msg: msg})
}

func (f *fakeTransport) Broadcast(msg any) {
	f.broadcasts = append(f.broadcasts, msg)
	if f.onBroadcast != nil {
		f.onBroadcast(msg)
	}
}

func (f *fakeTransport) Disconnect(id ConnID) {
	f.disconnected = append(f.disconnected, id)
}

func broadcastsOf[T any](f *fakeTransport) []T {
	var out []T
	for _, m := range f.broadcasts {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func sendsOf[T any](f *fakeTransport, to ConnID) []T {
	var out []T
	for _, s := range f.sends {
		v, ok := s.msg.(T)
		if !ok {
			continue
		}
		for _, id := range s.to {
			if id == to {
				out = append(out, v)
			}
		}
	}
	return out
}

type fakeBody struct {
	pos, vel gamemath.Vec
	forces   []gamemath.Vec
	grounded bool
	roped    bool
	anchor   gamemath.Vec
	ropeLen  float64
	active   bool
	detaches int
}

func (b *fakeBody) Position() gamemath.Vec     { return b.pos }
func (b *fakeBody) Velocity() gamemath.Vec     { return b.vel }
func (b *fakeBody) SetPosition(p gamemath.Vec) { b.pos = p }
func (b *fakeBody) SetVelocity(v gamemath.Vec) { b.vel = v }
func (b *fakeBody) ApplyForce(f gamemath.Vec)  { b.forces = append(b.forces, f) }
func (b *fakeBody) IsGrounded() bool           { return b.grounded }
func (b *fakeBody) SetRopeLength(l float64)    { b.ropeLen = l }
func (b *fakeBody) SetActive(active bool)      { b.active = active }

func (b *fakeBody) DetachRope() {
	b.roped = false
	b.detaches++
}

func (b *fakeBody) AttachRope(a gamemath.Vec, l float64) {
	b.roped, b.anchor, b.ropeLen = true, a, l
}

type fakeBullet struct {
	owner    ConnID
	pos, vel gamemath.Vec
}

type fakeScene struct {
	bodies     map[ConnID]*fakeBody
	removed    []ConnID
	nextBullet BulletID
	bullets    map[BulletID]fakeBullet
	despawned  []BulletID
}

func newFakeScene() *fakeScene {
	return &fakeScene{
		bodies:  make(map[ConnID]*fakeBody),
		bullets: make(map[BulletID]fakeBullet),
	}
}

func (s *fakeScene) SpawnPlayerBody(id ConnID, pos gamemath.Vec) Body {
	b := &fakeBody{pos: pos, active: true}
	s.bodies[id] = b
	return b
}

func (s *fakeScene) RemovePlayerBody(id ConnID) {
	delete(s.bodies, id)
	s.removed = append(s.removed, id)
}

func (s *fakeScene) SpawnBullet(owner ConnID, pos, vel gamemath.Vec) BulletID {
	s.nextBullet++
	s.bullets[s.nextBullet] = fakeBullet{owner: owner, pos: pos, vel: vel}
	return s.nextBullet
}

func (s *fakeScene) DespawnBullet(id BulletID) {
	delete(s.bullets, id)
	s.despawned = append(s.despawned, id)
}

type fakePhysics struct {
	hit     Hit
	ok      bool
	calls   int
	lastDir gamemath.Vec
}

func (p *fakePhysics) Raycast(origin, dir gamemath.Vec, layer netconfig.Layer) (Hit, bool) {
	p.calls++
	p.lastDir = dir
	return p.hit, p.ok
}

var testSpawns = []gamemath.Vec{
	{X: 0, Y: 0},
	{X: 200, Y: 0},
	{X: 400, Y: 0},
	{X: 600, Y: 0},
}

type harness struct {
	m       *Match
	tr      *fakeTransport
	scene   *fakeScene
	physics *fakePhysics
	cfg     *config.Config
	ended   []Result
}

func newHarness(t *testing.T, capacity int) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Match.Capacity = capacity
	return newHarnessWithConfig(t, cfg)
}

func newHarnessWithConfig(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	h := &harness{
		tr:      &fakeTransport{},
		scene:   newFakeScene(),
		physics: &fakePhysics{},
		cfg:     cfg,
	}
	m, err := NewMatch(cfg, testSpawns, Deps{
		Transport: h.tr,
		Physics:   h.physics,
		Scene:     h.scene,
		Logger:    DiscardLogger,
		OnEnded:   func(r Result) { h.ended = append(h.ended, r) },
	})
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	h.m = m
	return h
}

func (h *harness) join(t *testing.T, ids ...ConnID) {
	t.Helper()
	for _, id := range ids {
		if _, err := h.m.Join(id, playerName(id), [4]uint8{255, 0, 0, 255}); err != nil {
			t.Fatalf("join %d: %v", id, err)
		}
	}
}

func (h *harness) readyAll(t *testing.T) {
	t.Helper()
	for _, p := range h.m.Players() {
		h.m.Ready(p.ID)
	}
}

// startMatch fills the match, readies everyone and runs the countdown.
func (h *harness) startMatch(t *testing.T) {
	t.Helper()
	ids := make([]ConnID, h.m.Capacity())
	for i := range ids {
		ids[i] = ConnID(i + 1)
	}
	h.join(t, ids...)
	h.readyAll(t)
	h.tick(h.cfg.Match.CountdownSeconds)
	if h.m.Phase() != netconfig.PhaseActive {
		t.Fatalf("phase = %s, want active", h.m.Phase())
	}
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.m.Scheduler().Advance(time.Second)
	}
}

func (h *harness) player(t *testing.T, id ConnID) *Player {
	t.Helper()
	p, ok := h.m.Lookup(id)
	if !ok {
		t.Fatalf("player %d not found", id)
	}
	return p
}

func (h *harness) body(id ConnID) *fakeBody {
	return h.scene.bodies[id]
}

func playerName(id ConnID) string {
	return "player" + string(rune('0'+id))
}
