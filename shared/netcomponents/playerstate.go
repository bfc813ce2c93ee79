package netcomponents

import (
	"github.com/automoto/grapple-arena/shared/netconfig"
	"github.com/yohamta/donburi"
)

type NetPlayerStateData struct {
	PlayerID  uint64
	Name      string
	Color     [4]uint8
	Movement  netconfig.MovementState
	Direction int // -1 left, 1 right
	Health    int
	Kills     int
	Deaths    int
	Points    int
	Crown     bool
	Active    bool // false while dead and waiting to respawn
	IsLocal   bool // Client-side only, not synced
}

var NetPlayerState = donburi.NewComponentType[NetPlayerStateData]()
