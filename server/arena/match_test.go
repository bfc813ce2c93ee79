package arena

import (
	"errors"
	"reflect"
	"testing"

	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netconfig"
)

func countdownTicks(tr *fakeTransport) []int {
	var out []int
	for _, m := range broadcastsOf[messages.CountdownTick](tr) {
		out = append(out, m.SecondsLeft)
	}
	return out
}

func TestNewMatchNeedsSpawns(t *testing.T) {
	_, err := NewMatch(config.Default(), nil, Deps{Logger: DiscardLogger})
	if !errors.Is(err, ErrNoSpawnPoints) {
		t.Fatalf("err = %v, want ErrNoSpawnPoints", err)
	}
}

func TestCountdownRunsToActive(t *testing.T) {
	h := newHarness(t, 4)
	h.join(t, 1, 2, 3, 4)
	h.readyAll(t)
	if h.m.Phase() != netconfig.PhaseCountdown {
		t.Fatalf("phase = %s, want countdown", h.m.Phase())
	}

	h.tick(10)

	want := []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	if got := countdownTicks(h.tr); !reflect.DeepEqual(got, want) {
		t.Fatalf("ticks = %v, want %v", got, want)
	}
	if h.m.Phase() != netconfig.PhaseActive {
		t.Fatalf("phase = %s, want active", h.m.Phase())
	}
	for _, p := range h.m.Players() {
		if !p.WeaponsEnabled || !p.InputEnabled {
			t.Fatalf("player %d not armed", p.ID)
		}
		if got := h.body(p.ID).pos; got != testSpawns[int(p.ID)-1] {
			t.Fatalf("player %d at %+v, want spawn %d", p.ID, got, p.ID-1)
		}
	}
}

func TestCountdownAbortsWhenPlayerLeaves(t *testing.T) {
	h := newHarness(t, 4)
	h.join(t, 1, 2, 3, 4)
	h.readyAll(t)
	h.tick(3) // 10, 9, 8, 7 broadcast

	h.m.Leave(4)
	h.tick(1)

	want := []int{10, 9, 8, 7, netconfig.CountdownCancelled}
	if got := countdownTicks(h.tr); !reflect.DeepEqual(got, want) {
		t.Fatalf("ticks = %v, want %v", got, want)
	}
	if h.m.Phase() != netconfig.PhaseLobby {
		t.Fatalf("phase = %s, want lobby", h.m.Phase())
	}
	if h.m.ReadyCount() != 3 {
		t.Fatalf("ready = %d, want 3 (remaining players keep their flag)", h.m.ReadyCount())
	}

	h.tick(20)
	if got := countdownTicks(h.tr); len(got) != len(want) {
		t.Fatalf("countdown kept ticking after abort: %v", got)
	}

	// A new player readying restarts the countdown from the top.
	h.join(t, 5)
	h.m.Ready(5)
	if h.m.Phase() != netconfig.PhaseCountdown || h.m.CountdownRemaining() != 10 {
		t.Fatalf("phase = %s remaining = %d", h.m.Phase(), h.m.CountdownRemaining())
	}
}

func TestCountdownAbortsWhenUnreadyPlayerFillsSlot(t *testing.T) {
	h := newHarness(t, 2)
	h.join(t, 1, 2)
	h.readyAll(t)
	h.tick(2)

	h.m.Leave(2)
	h.join(t, 3)
	h.tick(1)

	if h.m.Phase() != netconfig.PhaseLobby {
		t.Fatalf("phase = %s, want lobby", h.m.Phase())
	}
	ticks := countdownTicks(h.tr)
	if ticks[len(ticks)-1] != netconfig.CountdownCancelled {
		t.Fatalf("ticks = %v, want cancellation last", ticks)
	}

	h.tick(h.cfg.Match.CountdownSeconds)
	if h.m.Phase() != netconfig.PhaseLobby || h.player(t, 3).WeaponsEnabled {
		t.Fatal("match started with an unready player")
	}

	h.m.Ready(3)
	h.tick(h.cfg.Match.CountdownSeconds)
	if h.m.Phase() != netconfig.PhaseActive {
		t.Fatalf("phase = %s, want active once everyone is ready", h.m.Phase())
	}
}

func TestReadyIsIdempotentAndLobbyOnly(t *testing.T) {
	h := newHarness(t, 2)
	h.join(t, 1, 2)
	if !h.m.Ready(1) || h.m.Ready(1) {
		t.Fatal("ready not idempotent")
	}
	if h.m.ReadyCount() != 1 {
		t.Fatalf("ready = %d", h.m.ReadyCount())
	}
	if h.m.Ready(99) {
		t.Fatal("unknown player readied")
	}
}

func TestLeaveOnlyDecrementsReadyPlayers(t *testing.T) {
	h := newHarness(t, 3)
	h.join(t, 1, 2, 3)
	h.m.Ready(1)
	h.m.Leave(2)
	if h.m.ReadyCount() != 1 {
		t.Fatalf("ready = %d after unready player left, want 1", h.m.ReadyCount())
	}
	h.m.Leave(1)
	if h.m.ReadyCount() != 0 {
		t.Fatalf("ready = %d after ready player left, want 0", h.m.ReadyCount())
	}
}

func TestEndToEndTwoPlayers(t *testing.T) {
	h := newHarness(t, 2)
	h.join(t, 1, 2)
	h.readyAll(t)
	h.tick(10)
	if h.m.Phase() != netconfig.PhaseActive || h.m.TimeRemaining() != 120 {
		t.Fatalf("phase = %s time = %d", h.m.Phase(), h.m.TimeRemaining())
	}

	for i := 0; i < h.cfg.Player.MaxHP; i++ {
		h.m.ComputeDamage(2, 1)
	}
	h.m.DisableGrapple(1)

	h.tick(119)
	if h.m.Phase() != netconfig.PhaseActive || h.m.TimeRemaining() != 1 {
		t.Fatalf("phase = %s time = %d after 119 ticks", h.m.Phase(), h.m.TimeRemaining())
	}
	h.tick(1)

	if h.m.Phase() != netconfig.PhaseEnded {
		t.Fatalf("phase = %s, want ended", h.m.Phase())
	}
	for _, p := range h.m.Players() {
		if p.State != netconfig.Grounded || p.InputEnabled || p.WeaponsEnabled {
			t.Fatalf("player %d not frozen: %+v", p.ID, p)
		}
	}
	if n := len(broadcastsOf[messages.EndGameActions](h.tr)); n != 1 {
		t.Fatalf("end game actions sent %d times", n)
	}

	rankings := broadcastsOf[messages.Rankings](h.tr)
	if len(rankings) != 1 {
		t.Fatalf("rankings sent %d times", len(rankings))
	}
	want := []messages.RankEntry{
		{ID: 1, Name: "player1", Points: 100, Kills: 1},
		{ID: 2, Name: "player2", Points: 0, Deaths: 1},
	}
	if !reflect.DeepEqual(rankings[0].Entries, want) {
		t.Fatalf("rankings = %+v, want %+v", rankings[0].Entries, want)
	}
	if len(h.ended) != 1 || h.ended[0].Duration.Seconds() != 120 {
		t.Fatalf("ended = %+v", h.ended)
	}

	// The clock stops at zero.
	clock := broadcastsOf[messages.MatchClockTick](h.tr)
	h.tick(5)
	if len(broadcastsOf[messages.MatchClockTick](h.tr)) != len(clock) || clock[len(clock)-1].SecondsLeft != 0 {
		t.Fatal("clock kept running after the match ended")
	}
}

func TestClockTickReentrancyGuard(t *testing.T) {
	h := newHarness(t, 2)
	h.startMatch(t)

	reentered := false
	h.tr.onBroadcast = func(msg any) {
		if _, ok := msg.(messages.MatchClockTick); ok && !reentered {
			reentered = true
			h.m.clockTick()
		}
	}
	h.tick(1)

	if !reentered {
		t.Fatal("hook never fired")
	}
	if got := h.m.TimeRemaining(); got != h.cfg.Match.MatchSeconds-1 {
		t.Fatalf("time = %d, want %d", got, h.cfg.Match.MatchSeconds-1)
	}
}

func TestActiveLeaveKeepsMatchRunning(t *testing.T) {
	h := newHarness(t, 3)
	h.startMatch(t)
	h.m.Leave(3)
	if h.m.Phase() != netconfig.PhaseActive {
		t.Fatalf("phase = %s, want active", h.m.Phase())
	}
	left := broadcastsOf[messages.PlayerLeft](h.tr)
	if len(left) != 1 || left[0].Name != "player3" {
		t.Fatalf("PlayerLeft = %+v", left)
	}
	counts := broadcastsOf[messages.PlayerCount](h.tr)
	if last := counts[len(counts)-1]; last.Count != 2 {
		t.Fatalf("player count = %+v", last)
	}
}

func TestLastLeaveResets(t *testing.T) {
	h := newHarness(t, 2)
	h.startMatch(t)
	gen := h.m.Generation()
	h.m.Leave(1)
	h.m.Leave(2)

	if h.m.Phase() != netconfig.PhaseLobby || h.m.Generation() != gen+1 {
		t.Fatalf("phase = %s generation = %d", h.m.Phase(), h.m.Generation())
	}
	if h.m.TimeRemaining() != h.cfg.Match.MatchSeconds || h.m.ReadyCount() != 0 {
		t.Fatal("timers or ready count not reset")
	}
	if h.m.Scheduler().Pending() != 0 {
		t.Fatalf("%d timers still pending", h.m.Scheduler().Pending())
	}
}

func TestHostBoundSurvivesEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.Match.Capacity = 2
	cfg.Server.HostBound = true
	h := newHarnessWithConfig(t, cfg)
	h.startMatch(t)
	h.m.Leave(1)
	h.m.Leave(2)
	if h.m.Phase() != netconfig.PhaseActive {
		t.Fatalf("phase = %s, want active", h.m.Phase())
	}
}

func TestResetDisconnectsAndInvalidatesCallbacks(t *testing.T) {
	h := newHarness(t, 2)
	h.startMatch(t)
	for i := 0; i < h.cfg.Player.MaxHP; i++ {
		h.m.ComputeDamage(2, 1)
	}
	h.m.Fire(1, h.body(2).pos)

	h.m.Reset()

	if !reflect.DeepEqual(h.tr.disconnected, []ConnID{1, 2}) {
		t.Fatalf("disconnected = %v", h.tr.disconnected)
	}
	if len(h.m.Players()) != 0 || h.m.Bullets() != 0 || len(h.scene.bodies) != 0 {
		t.Fatal("reset left state behind")
	}
	if _, ok := h.m.CrownHolder(); ok {
		t.Fatal("crown survived reset")
	}

	// A player rejoining with the old id is untouched by the old respawn.
	h.join(t, 2)
	h.tick(5)
	if p := h.player(t, 2); p.Deaths != 0 {
		t.Fatalf("stale respawn ran, deaths = %d", p.Deaths)
	}
}

func TestRequestResetOnlyWhenEnded(t *testing.T) {
	h := newHarness(t, 2)
	h.startMatch(t)
	if h.m.RequestReset(1) {
		t.Fatal("reset allowed mid-match")
	}
	h.tick(h.cfg.Match.MatchSeconds)
	if !h.m.RequestReset(1) {
		t.Fatal("reset refused after the match ended")
	}
	if h.m.Phase() != netconfig.PhaseLobby {
		t.Fatalf("phase = %s", h.m.Phase())
	}
}
