package core

import (
	"testing"

	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/shared/leveldata"
	"github.com/yohamta/donburi"
)

type fakePeer struct {
	id     string
	sent   []any
	closed bool
}

func (p *fakePeer) Id() string { return p.id }

func (p *fakePeer) SendMessage(msg any) error {
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePeer) CloseNow() error {
	p.closed = true
	return nil
}

func sentOf[T any](p *fakePeer) []T {
	var out []T
	for _, m := range p.sent {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// testLevel is a 640x320 box with a floor at y=304 and a pillar in the
// middle.
func testLevel() *ServerLevel {
	data := &leveldata.CollisionData{
		Name:      "test",
		MapWidth:  640,
		MapHeight: 320,
		SpawnPoints: []leveldata.SpawnPoint{
			{X: 100, Y: 280, Index: 0},
			{X: 500, Y: 280, Index: 1},
		},
	}
	for x := 0.0; x < 640; x += 16 {
		data.SolidRects = append(data.SolidRects, leveldata.SolidRect{X: x, Y: 304, W: 16, H: 16})
	}
	for y := 208.0; y < 304; y += 16 {
		data.SolidRects = append(data.SolidRects, leveldata.SolidRect{X: 320, Y: y, W: 16, H: 16})
	}
	return NewServerLevel(data)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Match.Capacity = 2
	cfg.Server.Version = "1.0"
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *memStore) {
	t.Helper()
	store := newMemStore()
	s, err := newServer(cfg, donburi.NewWorld(), testLevel(), NewHistory(store, 5), nil)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return s, store
}
