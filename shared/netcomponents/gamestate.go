package netcomponents

import (
	"github.com/automoto/grapple-arena/shared/netconfig"
	"github.com/yohamta/donburi"
)

type NetGameStateData struct {
	Phase       netconfig.MatchPhase
	Countdown   int // seconds left while in countdown
	TimeLeft    int // match clock seconds left
	Players     int
	Ready       int
	Capacity    int
	CrownHolder uint64 // 0 when nobody holds the crown
}

var NetGameState = donburi.NewComponentType[NetGameStateData]()
