package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate reports the first value that would make the server misbehave.
func (c *Config) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Server.Port > 0, "server.port must be set"},
		{c.Server.TickRate > 0, "server.tick_rate must be positive"},
		{c.Server.Level != "", "server.level must be set"},
		{c.Server.HistorySize >= 0, "server.history_size must not be negative"},
		{c.Server.ReconnectGraceSeconds >= 0, "server.reconnect_grace_seconds must not be negative"},
		{c.Match.Capacity >= 1, "match.capacity must be at least 1"},
		{c.Match.CountdownSeconds > 0, "match.countdown_seconds must be positive"},
		{c.Match.MatchSeconds > 0, "match.match_seconds must be positive"},
		{c.Match.PointsPerKill >= 0, "match.points_per_kill must not be negative"},
		{c.Match.PointsPerDeath >= 0, "match.points_per_death must not be negative"},
		{c.Player.MaxHP > 0, "player.max_hp must be positive"},
		{c.Player.MaxJumps > 0, "player.max_jumps must be positive"},
		{c.Player.MaxNameLength > 0, "player.max_name_length must be positive"},
		{c.Player.Width > 0 && c.Player.Height > 0, "player.width and player.height must be positive"},
		{c.Grapple.MinRopeLength > 0, "grapple.min_rope_length must be positive"},
		{c.Grapple.MaxRopeLength >= c.Grapple.MinRopeLength, "grapple.max_rope_length must be >= min_rope_length"},
		{c.Combat.BulletSpeed > 0, "combat.bullet_speed must be positive"},
		{c.Combat.BulletSize > 0, "combat.bullet_size must be positive"},
		{c.Combat.BulletLifetime > 0, "combat.bullet_lifetime must be positive"},
		{c.Combat.RespawnSeconds >= 0, "combat.respawn_seconds must not be negative"},
		{c.Combat.SafeDistance >= 0, "combat.safe_distance must not be negative"},
		{c.Physics.Mass > 0, "physics.mass must be positive"},
		{c.Physics.SubSteps >= 1, "physics.sub_steps must be at least 1"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%w: %s", ErrInvalid, chk.msg)
		}
	}
	if _, err := c.Bot.Tuning(); err != nil {
		return fmt.Errorf("%w: bot: %v", ErrInvalid, err)
	}
	return nil
}
