package netcomponents

import "github.com/yohamta/donburi"

// NetGrappleData lets clients draw the rope between the player (origin) and
// the anchor.
type NetGrappleData struct {
	Attached         bool
	AnchorX, AnchorY float64
	OriginX, OriginY float64
	Length           float64
}

var NetGrapple = donburi.NewComponentType[NetGrappleData]()
