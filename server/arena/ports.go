package arena

import (
	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/netconfig"
)

// ConnID identifies a client connection for the lifetime of its session.
// The server assigns them in ascending order and never reuses one.
type ConnID uint64

// BulletID identifies a live bullet entity.
type BulletID uint64

// Transport delivers messages to clients. Sends are fire-and-forget.
type Transport interface {
	Send(to []ConnID, msg any)
	Broadcast(msg any)
	Disconnect(id ConnID)
}

// Hit is the result of a successful raycast.
type Hit struct {
	Point  gamemath.Vec
	Normal gamemath.Vec
}

// Physics answers collision queries against the level.
type Physics interface {
	Raycast(origin, dir gamemath.Vec, layer netconfig.Layer) (Hit, bool)
}

// Body is a player's physics body.
type Body interface {
	Position() gamemath.Vec
	Velocity() gamemath.Vec
	SetPosition(p gamemath.Vec)
	SetVelocity(v gamemath.Vec)
	// ApplyForce adds a continuous force for the next integration step.
	ApplyForce(f gamemath.Vec)
	// IsGrounded reports contact with ground below the body.
	IsGrounded() bool
	AttachRope(anchor gamemath.Vec, length float64)
	SetRopeLength(length float64)
	DetachRope()
	// SetActive enables or disables the body. Inactive bodies neither move
	// nor collide.
	SetActive(active bool)
}

// Scene creates and destroys entities.
type Scene interface {
	SpawnPlayerBody(id ConnID, pos gamemath.Vec) Body
	RemovePlayerBody(id ConnID)
	SpawnBullet(owner ConnID, pos, vel gamemath.Vec) BulletID
	DespawnBullet(id BulletID)
}
