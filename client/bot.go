package client

import (
	"math"
	"math/rand"

	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/netconfig"
)

// hookReach is how far above the bot it aims the grapple.
const hookReach = 140.0

// Bot turns world views into intents for one player.
type Bot struct {
	tuning   config.BotDifficultyConfig
	rng      *rand.Rand
	playerID uint64
	seq      uint32
	readied  bool
}

// NewBot creates a bot controlling playerID. The seed makes decisions
// reproducible.
func NewBot(tuning config.BotDifficultyConfig, playerID uint64, seed int64) *Bot {
	return &Bot{
		tuning:   tuning,
		rng:      rand.New(rand.NewSource(seed)),
		playerID: playerID,
	}
}

// Decide returns the messages to send for the current view.
func (b *Bot) Decide(v View) []any {
	if !v.HasGame {
		return nil
	}

	switch v.Game.Phase {
	case netconfig.PhaseLobby:
		if b.readied {
			return nil
		}
		b.readied = true
		return []any{messages.ReadyRequest{}}
	case netconfig.PhaseEnded:
		b.readied = false
		return nil
	}

	self, ok := v.Player(b.playerID)
	if !ok || !self.State.Active {
		return nil
	}

	target, dist, found := nearestEnemy(v, self)
	b.seq++
	input := messages.PlayerInput{Sequence: b.seq}
	var out []any

	if found {
		dx := target.Body.X - self.Body.X
		if math.Abs(dx) > 8 {
			input.MoveX = math.Copysign(1, dx)
		}
	} else {
		// Wander
		input.MoveX = float64(b.rng.Intn(3) - 1)
	}

	switch self.State.Movement {
	case netconfig.Hooked:
		// Climb toward targets above, let out rope toward targets below.
		if found && target.Body.Y < self.Body.Y {
			input.MoveY = 1
		} else {
			input.MoveY = -1
		}
		if b.rng.Float64() < b.tuning.JumpChance {
			out = append(out, messages.JumpRequest{})
		}
	case netconfig.Grounded:
		wantsUp := found && target.Body.Y < self.Body.Y-16
		if wantsUp || b.rng.Float64() < b.tuning.JumpChance {
			out = append(out, messages.JumpRequest{})
		}
	case netconfig.Jumping:
		if b.rng.Float64() < b.tuning.HookChance {
			aimX := self.Body.X + input.MoveX*hookReach/2
			out = append(out, messages.HookRequest{X: aimX, Y: self.Body.Y - hookReach})
		}
	}

	if found && dist <= b.tuning.FireRange && self.State.Movement != netconfig.Hooked {
		out = append(out, messages.FireRequest{
			X: target.Body.X + b.jitter(),
			Y: target.Body.Y + b.jitter(),
		})
	}

	return append([]any{input}, out...)
}

func (b *Bot) jitter() float64 {
	if b.tuning.AimJitter <= 0 {
		return 0
	}
	return (b.rng.Float64()*2 - 1) * b.tuning.AimJitter
}

func nearestEnemy(v View, self PlayerView) (PlayerView, float64, bool) {
	var best PlayerView
	bestDist := math.MaxFloat64
	found := false
	for _, p := range v.Players {
		if p.State.PlayerID == self.State.PlayerID || !p.State.Active {
			continue
		}
		d := math.Hypot(p.Body.X-self.Body.X, p.Body.Y-self.Body.Y)
		if d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, bestDist, found
}
