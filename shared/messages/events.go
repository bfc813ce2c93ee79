package messages

import "github.com/automoto/grapple-arena/shared/netconfig"

// PlayerJoined is broadcast when a join request is accepted.
type PlayerJoined struct {
	ID   uint64
	Name string
}

// PlayerLeft is broadcast when a player disconnects.
type PlayerLeft struct {
	ID   uint64
	Name string
}

// PlayerCount is broadcast whenever the number of players changes.
type PlayerCount struct {
	Count    int
	Capacity int
}

// ReadyCount is broadcast whenever lobby readiness changes.
type ReadyCount struct {
	Ready    int
	Capacity int
}

// StateChanged carries a single replicated player field. Integer fields use
// Value, the name uses Text and the colour uses Color.
type StateChanged struct {
	ID    uint64
	Field netconfig.StateField
	Value int
	Text  string
	Color [4]uint8
}

// MatchPhaseChanged is broadcast on every match phase transition.
type MatchPhaseChanged struct {
	Phase netconfig.MatchPhase
}

// CountdownTick is broadcast once per second during the countdown.
// SecondsLeft is netconfig.CountdownCancelled when the countdown aborts.
type CountdownTick struct {
	SecondsLeft int
}

// MatchClockTick is broadcast once per second while the match is active.
type MatchClockTick struct {
	SecondsLeft int
}

// KillFeed is broadcast when a player is killed.
type KillFeed struct {
	AttackerName string
	VictimName   string
}

// DeathOverlay is sent only to the victim of a kill.
type DeathOverlay struct {
	AttackerName string
	RespawnIn    float64 // seconds
}

// CrownChanged toggles the leader crown on a player.
type CrownChanged struct {
	ID     uint64
	Active bool
}

// GrappleAnchor is broadcast when a grapple attaches.
type GrappleAnchor struct {
	ID   uint64
	X, Y float64
}

// GrappleDetach is broadcast when an attached grapple is removed.
type GrappleDetach struct {
	ID uint64
}

// GrappleRope reports the rope origin and length after a climb step. The
// server folds it into the replicated grapple component instead of sending
// it as a standalone message.
type GrappleRope struct {
	ID               uint64
	OriginX, OriginY float64
	Length           float64
}

// EndGameActions tells clients to disable input, freeze horizontal velocity
// and show the end-of-match panel.
type EndGameActions struct{}

// RankEntry is one line of the final ranking.
type RankEntry struct {
	ID     uint64
	Name   string
	Points int
	Kills  int
	Deaths int
}

// Rankings is broadcast when the match ends.
type Rankings struct {
	Entries []RankEntry
}
