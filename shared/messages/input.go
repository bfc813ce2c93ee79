package messages

// PlayerInput is sent from client to server every fixed step with the
// player's movement axes. MoveX drives walking and swinging, MoveY climbs
// the rope (positive = up).
type PlayerInput struct {
	Sequence  uint32 // Incrementing ID for reconciliation
	MoveX     float64
	MoveY     float64
	Timestamp int64 // Client timestamp (Unix ms)
}

// JumpRequest is sent when the jump key is pressed this frame.
type JumpRequest struct{}

// HookRequest launches the grapple toward a world-space aim point.
type HookRequest struct {
	X, Y float64
}

// FireRequest shoots a bullet toward a world-space target.
type FireRequest struct {
	X, Y float64
}

// ReadyRequest marks the sender ready in the lobby.
type ReadyRequest struct{}

// ProfileRequest changes the sender's colour.
type ProfileRequest struct {
	Color [4]uint8
}

// ResetRequest asks the server to reset an ended match back to the lobby.
type ResetRequest struct{}
