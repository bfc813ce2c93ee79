package config

import "fmt"

// BotDifficulty affects reaction time and decision quality
type BotDifficulty int

const (
	BotDifficultyEasy BotDifficulty = iota
	BotDifficultyNormal
	BotDifficultyHard
)

func (d BotDifficulty) String() string {
	switch d {
	case BotDifficultyEasy:
		return "easy"
	case BotDifficultyNormal:
		return "normal"
	case BotDifficultyHard:
		return "hard"
	default:
		return fmt.Sprintf("BotDifficulty(%d)", int(d))
	}
}

// ParseBotDifficulty maps "easy", "normal" or "hard" to a difficulty.
func ParseBotDifficulty(s string) (BotDifficulty, error) {
	switch s {
	case "easy":
		return BotDifficultyEasy, nil
	case "normal", "":
		return BotDifficultyNormal, nil
	case "hard":
		return BotDifficultyHard, nil
	}
	return 0, fmt.Errorf("unknown bot difficulty %q", s)
}

// BotDifficultyConfig holds tuning values for bot behavior at a specific difficulty
type BotDifficultyConfig struct {
	ReactionMillis int     `toml:"reaction_millis" json:"reaction_millis"` // delay between decisions
	FireRange      float64 `toml:"fire_range" json:"fire_range"`           // distance to start shooting
	AimJitter      float64 `toml:"aim_jitter" json:"aim_jitter"`           // px of random aim error
	HookChance     float64 `toml:"hook_chance" json:"hook_chance"`         // per decision while airborne
	JumpChance     float64 `toml:"jump_chance" json:"jump_chance"`         // per decision
}

// BotConfig holds all bot-related configuration
type BotConfig struct {
	Difficulty   string                         `toml:"difficulty" json:"difficulty" jsonschema:"enum=easy,enum=normal,enum=hard"`
	Difficulties map[string]BotDifficultyConfig `toml:"difficulties" json:"difficulties"`
}

// Tuning returns the tuning for the configured difficulty, falling back to
// the built-in values when the file does not override it.
func (b BotConfig) Tuning() (BotDifficultyConfig, error) {
	d, err := ParseBotDifficulty(b.Difficulty)
	if err != nil {
		return BotDifficultyConfig{}, err
	}
	if t, ok := b.Difficulties[d.String()]; ok {
		return t, nil
	}
	return defaultBotConfig().Difficulties[d.String()], nil
}

func defaultBotConfig() BotConfig {
	return BotConfig{
		Difficulty: BotDifficultyNormal.String(),
		Difficulties: map[string]BotDifficultyConfig{
			BotDifficultyEasy.String(): {
				ReactionMillis: 500,
				FireRange:      120,
				AimJitter:      24,
				HookChance:     0.05,
				JumpChance:     0.05,
			},
			BotDifficultyNormal.String(): {
				ReactionMillis: 250,
				FireRange:      200,
				AimJitter:      12,
				HookChance:     0.15,
				JumpChance:     0.1,
			},
			BotDifficultyHard.String(): {
				ReactionMillis: 80, // near-instant
				FireRange:      280,
				AimJitter:      4,
				HookChance:     0.3,
				JumpChance:     0.15,
			},
		},
	}
}
