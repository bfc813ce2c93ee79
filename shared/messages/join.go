package messages

import "github.com/leap-fish/necs/esync"

// JoinRequest is sent by a client after connecting to request joining the game.
type JoinRequest struct {
	Version    string
	PlayerName string
	Color      [4]uint8

	// ReconnectToken is the token from an earlier JoinAccepted, if any.
	ReconnectToken string
}

// JoinAccepted is sent by the server when a client's join request is accepted.
type JoinAccepted struct {
	PlayerID       uint64
	NetworkID      esync.NetworkId
	ReconnectToken string
	ServerName     string
	TickRate       int
	Capacity       int
	Level          string
}

// JoinRejected is sent by the server when a client's join request is rejected.
// The connection is closed right after.
type JoinRejected struct {
	Reason string
}
