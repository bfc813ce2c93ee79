// Package config holds every tunable of the arena server: network settings,
// match rules, movement, grapple, combat and physics constants, plus bot
// tuning. Values are plain structs; Default returns the shipped tuning and
// Load layers a TOML file and environment overrides on top of it.
package config

// ServerConfig contains process and network settings.
type ServerConfig struct {
	Name      string `toml:"name" json:"name" jsonschema:"description=Name shown in the server browser"`
	Port      uint   `toml:"port" json:"port" jsonschema:"minimum=1,maximum=65535"`
	TickRate  int    `toml:"tick_rate" json:"tick_rate" jsonschema:"minimum=1,maximum=240,description=Simulation ticks per second"`
	Version   string `toml:"version" json:"version" jsonschema:"description=Required client version; empty accepts any"`
	Level     string `toml:"level" json:"level" jsonschema:"description=Level name (TMX stem) to load"`
	MasterURL string `toml:"master_url" json:"master_url" jsonschema:"description=Master server URL; empty disables registration"`
	Host      string `toml:"host" json:"host" jsonschema:"description=Address advertised to the master server"`

	// HostBound servers keep the match alive when the last player leaves.
	HostBound bool `toml:"host_bound" json:"host_bound"`

	// HistoryApp is the gdata application name used for the match history.
	HistoryApp string `toml:"history_app" json:"history_app"`
	// HistorySize caps how many finished matches are kept.
	HistorySize int `toml:"history_size" json:"history_size" jsonschema:"minimum=0"`

	ReconnectGraceSeconds int `toml:"reconnect_grace_seconds" json:"reconnect_grace_seconds" jsonschema:"minimum=0,description=How long a departed player's score is held for a rejoin with its token; 0 disables"`
}

// MatchConfig contains the rules of a single match.
type MatchConfig struct {
	Capacity         int `toml:"capacity" json:"capacity" jsonschema:"minimum=1,description=Players required to start and maximum allowed"`
	CountdownSeconds int `toml:"countdown_seconds" json:"countdown_seconds" jsonschema:"minimum=1"`
	MatchSeconds     int `toml:"match_seconds" json:"match_seconds" jsonschema:"minimum=1"`
	PointsPerKill    int `toml:"points_per_kill" json:"points_per_kill" jsonschema:"minimum=0"`
	PointsPerDeath   int `toml:"points_per_death" json:"points_per_death" jsonschema:"minimum=0"`
}

// PlayerConfig contains movement and body values for players.
type PlayerConfig struct {
	MaxHP    int `toml:"max_hp" json:"max_hp" jsonschema:"minimum=1"`
	MaxJumps int `toml:"max_jumps" json:"max_jumps" jsonschema:"minimum=1"`

	// Movement (px/s)
	MoveSpeed    float64 `toml:"move_speed" json:"move_speed"`
	JumpVelocity float64 `toml:"jump_velocity" json:"jump_velocity"`

	// Collision box
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`

	MaxNameLength int `toml:"max_name_length" json:"max_name_length" jsonschema:"minimum=1"`
}

// GrappleConfig contains rope tuning.
type GrappleConfig struct {
	ClimbSpeed    float64 `toml:"climb_speed" json:"climb_speed"` // px/s of rope per unit of input
	SwingForce    float64 `toml:"swing_force" json:"swing_force"`
	MinRopeLength float64 `toml:"min_rope_length" json:"min_rope_length"`
	MaxRopeLength float64 `toml:"max_rope_length" json:"max_rope_length"`
}

// CombatConfig contains weapon and respawn values.
type CombatConfig struct {
	BulletSpeed    float64 `toml:"bullet_speed" json:"bullet_speed"`      // px/s
	BulletSize     float64 `toml:"bullet_size" json:"bullet_size"`        // square hitbox edge, px
	BulletLifetime float64 `toml:"bullet_lifetime" json:"bullet_lifetime"` // seconds
	MuzzleOffset   float64 `toml:"muzzle_offset" json:"muzzle_offset"`    // fraction of velocity added to the spawn point
	MuzzleHeight   float64 `toml:"muzzle_height" json:"muzzle_height"`    // px above the body centre
	RespawnSeconds float64 `toml:"respawn_seconds" json:"respawn_seconds"`
	SafeDistance   float64 `toml:"safe_distance" json:"safe_distance"` // px
}

// PhysicsConfig contains world physics values.
type PhysicsConfig struct {
	Gravity      float64 `toml:"gravity" json:"gravity"`               // px/s^2
	MaxFallSpeed float64 `toml:"max_fall_speed" json:"max_fall_speed"` // px/s
	Mass         float64 `toml:"mass" json:"mass"`                     // divides applied forces
	SubSteps     int     `toml:"sub_steps" json:"sub_steps" jsonschema:"minimum=1"`
}

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" json:"server"`
	Match   MatchConfig   `toml:"match" json:"match"`
	Player  PlayerConfig  `toml:"player" json:"player"`
	Grapple GrappleConfig `toml:"grapple" json:"grapple"`
	Combat  CombatConfig  `toml:"combat" json:"combat"`
	Physics PhysicsConfig `toml:"physics" json:"physics"`
	Bot     BotConfig     `toml:"bot" json:"bot"`
}

// Default returns the shipped configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:        "Grapple Arena",
			Port:        7373,
			TickRate:    30,
			Level:       "arena",
			Host:        "localhost",
			HistoryApp:  "grapple_arena_server",
			HistorySize: 20,

			ReconnectGraceSeconds: 60,
		},
		Match: MatchConfig{
			Capacity:         4,
			CountdownSeconds: 10,
			MatchSeconds:     120,
			PointsPerKill:    100,
			PointsPerDeath:   50,
		},
		Player: PlayerConfig{
			MaxHP:         6,
			MaxJumps:      2,
			MoveSpeed:     120,
			JumpVelocity:  260,
			Width:         12,
			Height:        20,
			MaxNameLength: 16,
		},
		Grapple: GrappleConfig{
			ClimbSpeed:    80,
			SwingForce:    80,
			MinRopeLength: 16,
			MaxRopeLength: 240,
		},
		Combat: CombatConfig{
			BulletSpeed:    300,
			BulletSize:     4,
			BulletLifetime: 3,
			MuzzleOffset:   0.08,
			MuzzleHeight:   4,
			RespawnSeconds: 3,
			SafeDistance:   96,
		},
		Physics: PhysicsConfig{
			Gravity:      900,
			MaxFallSpeed: 480,
			Mass:         1,
			SubSteps:     2,
		},
		Bot: defaultBotConfig(),
	}
}
