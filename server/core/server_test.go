package core

import (
	"testing"
	"time"

	"github.com/automoto/grapple-arena/server/arena"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netcomponents"
	"github.com/automoto/grapple-arena/shared/netconfig"
	"github.com/segmentio/ksuid"
)

func connect(s *Server, name string) *fakePeer {
	p := &fakePeer{id: name}
	s.handleCommand(connectCmd{client: p})
	return p
}

func join(s *Server, p *fakePeer, version string) {
	s.handleCommand(messageCmd{client: p, msg: messages.JoinRequest{
		Version:    version,
		PlayerName: p.id,
		Color:      [4]uint8{200, 10, 10, 255},
	}})
}

func TestJoinVersionMismatchRejected(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	a := connect(s, "ada")
	join(s, a, "0.9")

	rejected := sentOf[messages.JoinRejected](a)
	if len(rejected) != 1 || rejected[0].Reason != arena.VersionMismatch.String() {
		t.Fatalf("rejections = %+v", rejected)
	}
	if !a.closed {
		t.Fatal("rejected client not disconnected")
	}
	if len(s.match.Players()) != 0 {
		t.Fatal("rejected client registered")
	}

	// Further messages from the dropped connection are ignored.
	s.handleCommand(messageCmd{client: a, msg: messages.ReadyRequest{}})
	if s.match.ReadyCount() != 0 {
		t.Fatal("message from disconnected client was processed")
	}
}

func TestJoinAcceptedAndCapacity(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	a, b, c := connect(s, "ada"), connect(s, "bob"), connect(s, "cyd")
	join(s, a, "1.0")
	join(s, b, "1.0")
	join(s, c, "1.0")

	accepted := sentOf[messages.JoinAccepted](a)
	if len(accepted) != 1 {
		t.Fatalf("ada accepts = %+v", accepted)
	}
	acc := accepted[0]
	if acc.PlayerID != 1 || acc.Capacity != 2 || acc.Level != "test" || acc.TickRate != s.cfg.Server.TickRate {
		t.Fatalf("accept = %+v", acc)
	}
	if _, err := ksuid.Parse(acc.ReconnectToken); err != nil {
		t.Fatalf("token %q: %v", acc.ReconnectToken, err)
	}

	if joined := sentOf[messages.PlayerJoined](a); len(joined) != 2 || joined[1].Name != "bob" {
		t.Fatalf("ada saw joins %+v", joined)
	}

	rejected := sentOf[messages.JoinRejected](c)
	if len(rejected) != 1 || rejected[0].Reason != arena.CapacityExceeded.String() || !c.closed {
		t.Fatalf("third client: rejections %+v closed %v", rejected, c.closed)
	}
	if got := s.Status(); got.Players != 2 || got.Capacity != 2 || got.Phase != netconfig.PhaseLobby {
		t.Fatalf("status = %+v", got)
	}

	// A second join request from the same client is ignored.
	join(s, a, "1.0")
	if len(sentOf[messages.JoinAccepted](a)) != 1 {
		t.Fatal("duplicate join accepted twice")
	}
}

func TestInvalidNameRejected(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	a := &fakePeer{id: "   "}
	s.handleCommand(connectCmd{client: a})
	join(s, a, "1.0")

	rejected := sentOf[messages.JoinRejected](a)
	if len(rejected) != 1 || rejected[0].Reason != arena.InvalidName.String() {
		t.Fatalf("rejections = %+v", rejected)
	}
}

func TestMessagesBeforeJoinIgnored(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	a := connect(s, "ada")
	s.enqueue(a, messages.ReadyRequest{})
	s.ProcessCommands()
	if s.match.ReadyCount() != 0 {
		t.Fatal("ready accepted before join")
	}
}

func TestDisconnectLeavesMatch(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	a, b := connect(s, "ada"), connect(s, "bob")
	join(s, a, "1.0")
	join(s, b, "1.0")

	s.commands <- disconnectCmd{client: b}
	s.ProcessCommands()

	if len(s.match.Players()) != 1 {
		t.Fatalf("players = %d, want 1", len(s.match.Players()))
	}
	left := sentOf[messages.PlayerLeft](a)
	if len(left) != 1 || left[0].Name != "bob" {
		t.Fatalf("ada saw leaves %+v", left)
	}
	if s.Status().Players != 1 {
		t.Fatalf("status = %+v", s.Status())
	}

	// Unknown disconnects are ignored.
	s.handleCommand(disconnectCmd{client: &fakePeer{id: "ghost"}})
}

func TestInputDrivesBody(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	a := connect(s, "ada")
	join(s, a, "1.0")

	for i := 0; i < 30; i++ {
		s.Update(testDt)
	}
	p, _ := s.match.Lookup(1)
	if p.State != netconfig.Grounded {
		t.Fatalf("state = %v, want grounded after landing", p.State)
	}
	start := p.Position()

	s.enqueue(a, messages.PlayerInput{Sequence: 1, MoveX: 1})
	s.ProcessCommands()
	for i := 0; i < 15; i++ {
		s.Update(testDt)
	}
	if p.Position().X <= start.X {
		t.Fatalf("x did not increase: %v -> %v", start.X, p.Position().X)
	}

	entity, _ := s.scene.Entity(1)
	nb := netcomponents.NetBody.Get(s.world.Entry(entity))
	if nb.X != p.Position().X || nb.Y != p.Position().Y {
		t.Fatalf("replicated body %+v does not match %+v", nb, p.Position())
	}
	ns := netcomponents.NetPlayerState.Get(s.world.Entry(entity))
	if ns.Name != "ada" || ns.Direction != 1 || ns.Health != s.cfg.Player.MaxHP {
		t.Fatalf("replicated state = %+v", ns)
	}
}

func TestFullMatchRecordsHistory(t *testing.T) {
	cfg := testConfig()
	cfg.Match.CountdownSeconds = 2
	cfg.Match.MatchSeconds = 3
	s, _ := newTestServer(t, cfg)
	a, b := connect(s, "ada"), connect(s, "bob")
	join(s, a, "1.0")
	join(s, b, "1.0")

	s.enqueue(a, messages.ReadyRequest{})
	s.enqueue(b, messages.ReadyRequest{})
	s.ProcessCommands()
	if s.match.Phase() != netconfig.PhaseCountdown {
		t.Fatalf("phase = %v, want countdown", s.match.Phase())
	}

	for i := 0; i < 30*10 && s.match.Phase() != netconfig.PhaseEnded; i++ {
		s.Update(testDt)
	}
	if s.match.Phase() != netconfig.PhaseEnded {
		t.Fatalf("phase = %v, want ended", s.match.Phase())
	}
	if got := sentOf[messages.Rankings](a); len(got) != 1 || len(got[0].Entries) != 2 {
		t.Fatalf("rankings = %+v", got)
	}

	records, err := s.history.Records()
	if err != nil || len(records) != 1 {
		t.Fatalf("history = %+v, %v", records, err)
	}
	if records[0].Level != "test" || records[0].DurationSeconds != 3 {
		t.Fatalf("record = %+v", records[0])
	}

	gs := netcomponents.NetGameState.Get(s.world.Entry(s.gameState))
	if gs.Phase != netconfig.PhaseEnded || gs.Players != 2 {
		t.Fatalf("game state = %+v", gs)
	}

	// Reset from the end screen disconnects everyone.
	s.enqueue(a, messages.ResetRequest{})
	s.ProcessCommands()
	if !a.closed || !b.closed || s.match.Phase() != netconfig.PhaseLobby {
		t.Fatalf("after reset: closed %v/%v phase %v", a.closed, b.closed, s.match.Phase())
	}
	if s.Status().Players != 0 {
		t.Fatalf("status = %+v", s.Status())
	}
}

func TestGrappleRopeFoldedIntoComponent(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	a := connect(s, "ada")
	join(s, a, "1.0")

	s.peers.Broadcast(messages.GrappleRope{ID: 1, OriginX: 5, OriginY: 6, Length: 42})
	if len(sentOf[messages.GrappleRope](a)) != 0 {
		t.Fatal("rope update sent over the network")
	}
	entity, _ := s.scene.Entity(1)
	ng := netcomponents.NetGrapple.Get(s.world.Entry(entity))
	if ng.Length != 42 || ng.OriginX != 5 {
		t.Fatalf("grapple component = %+v", ng)
	}
}

func joinWithToken(s *Server, p *fakePeer, token string) {
	s.handleCommand(messageCmd{client: p, msg: messages.JoinRequest{
		Version:        "1.0",
		PlayerName:     p.id,
		Color:          [4]uint8{1, 2, 3, 255},
		ReconnectToken: token,
	}})
}

func tokenOf(t *testing.T, p *fakePeer) string {
	t.Helper()
	accepted := sentOf[messages.JoinAccepted](p)
	if len(accepted) != 1 {
		t.Fatalf("%s accepts = %+v", p.id, accepted)
	}
	return accepted[0].ReconnectToken
}

func TestReconnectTokenRestoresSession(t *testing.T) {
	cfg := testConfig()
	cfg.Match.Capacity = 3
	s, _ := newTestServer(t, cfg)
	a, b := connect(s, "ada"), connect(s, "bob")
	join(s, a, "1.0")
	join(s, b, "1.0")
	token := tokenOf(t, a)

	p, _ := s.match.Lookup(1)
	p.Kills, p.Deaths, p.Points = 2, 1, 150
	s.handleCommand(disconnectCmd{client: a})

	back := connect(s, "zed")
	joinWithToken(s, back, token)
	restored, ok := s.match.Lookup(3)
	if !ok {
		t.Fatal("reconnecting client not registered")
	}
	if restored.Name != "ada" || restored.Color != [4]uint8{200, 10, 10, 255} {
		t.Fatalf("restored profile = %q %v", restored.Name, restored.Color)
	}
	if got := restored.Score(); got != (arena.Score{Kills: 2, Deaths: 1, Points: 150}) {
		t.Fatalf("restored score = %+v", got)
	}
	newToken := tokenOf(t, back)
	if newToken == token {
		t.Fatal("token reissued unchanged")
	}

	// A token is good for one reclaim only.
	s.handleCommand(disconnectCmd{client: b})
	again := connect(s, "eve")
	joinWithToken(s, again, token)
	if p, _ := s.match.Lookup(4); p.Name != "eve" || p.Points != 0 {
		t.Fatalf("reused token restored %q with %d points", p.Name, p.Points)
	}
}

func TestReconnectTokenExpires(t *testing.T) {
	cfg := testConfig()
	cfg.Match.Capacity = 3
	cfg.Server.ReconnectGraceSeconds = 2
	s, _ := newTestServer(t, cfg)
	a, b := connect(s, "ada"), connect(s, "bob")
	join(s, a, "1.0")
	join(s, b, "1.0")
	token := tokenOf(t, a)

	p, _ := s.match.Lookup(1)
	p.Points = 300
	s.handleCommand(disconnectCmd{client: a})
	s.match.Scheduler().Advance(3 * time.Second)

	late := connect(s, "zed")
	joinWithToken(s, late, token)
	if p, _ := s.match.Lookup(3); p.Name != "zed" || p.Points != 0 {
		t.Fatalf("expired token restored %q with %d points", p.Name, p.Points)
	}

	joinWithToken(s, connect(s, "kay"), "not-a-token")
	if p, ok := s.match.Lookup(4); !ok || p.Name != "kay" {
		t.Fatal("malformed token blocked the join")
	}
}

func TestReconnectTokenInvalidAfterReset(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	a := connect(s, "ada")
	join(s, a, "1.0")
	token := tokenOf(t, a)

	p, _ := s.match.Lookup(1)
	p.Points = 100
	// The last player leaving resets the match.
	s.handleCommand(disconnectCmd{client: a})

	back := connect(s, "zed")
	joinWithToken(s, back, token)
	if p, _ := s.match.Lookup(2); p.Name != "zed" || p.Points != 0 {
		t.Fatalf("token from a reset match restored %q with %d points", p.Name, p.Points)
	}
	if len(s.sessions.tokens) != 1 {
		t.Fatalf("tokens = %v, want only the live connection", s.sessions.tokens)
	}
}
