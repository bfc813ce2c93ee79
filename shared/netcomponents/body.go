package netcomponents

import "github.com/yohamta/donburi"

// NetBodyData is a player's replicated position and velocity.
type NetBodyData struct {
	X, Y           float64
	SpeedX, SpeedY float64
}

var NetBody = donburi.NewComponentType[NetBodyData]()

// LerpNetBody interpolates between two body states
func LerpNetBody(from, to NetBodyData, t float64) *NetBodyData {
	return &NetBodyData{
		X:      from.X + (to.X-from.X)*t,
		Y:      from.Y + (to.Y-from.Y)*t,
		SpeedX: to.SpeedX,
		SpeedY: to.SpeedY,
	}
}
