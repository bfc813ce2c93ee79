// Package netconfig defines lightweight enums shared between client and server
// for network serialization. It has no dependencies.
package netconfig

// MovementState is the player's exclusive movement mode.
type MovementState int

const (
	Grounded MovementState = iota
	Jumping
	Hooked
)

func (s MovementState) String() string {
	switch s {
	case Grounded:
		return "grounded"
	case Jumping:
		return "jumping"
	case Hooked:
		return "hooked"
	default:
		return "unknown"
	}
}

// MatchPhase represents the current phase of a match.
type MatchPhase int

const (
	PhaseLobby     MatchPhase = iota // Waiting for players to ready up
	PhaseCountdown                   // Pre-match countdown
	PhaseActive                      // Match clock running
	PhaseEnded                       // Match over, showing results
)

func (p MatchPhase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// StateField names a replicated player field carried by StateChanged.
type StateField int

const (
	FieldMovement StateField = iota
	FieldHealth
	FieldKills
	FieldDeaths
	FieldPoints
	FieldName
	FieldColor
	FieldActive
)

var stateFieldNames = map[StateField]string{
	FieldMovement: "movement",
	FieldHealth:   "health",
	FieldKills:    "kills",
	FieldDeaths:   "deaths",
	FieldPoints:   "points",
	FieldName:     "name",
	FieldColor:    "color",
	FieldActive:   "active",
}

func (f StateField) String() string {
	if name, ok := stateFieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// Layer identifies a collision layer for raycasts.
type Layer int

const (
	LayerObstacles Layer = iota
	LayerPlayers
)

// CountdownCancelled is sent as CountdownTick.SecondsLeft when a countdown aborts.
const CountdownCancelled = -1
