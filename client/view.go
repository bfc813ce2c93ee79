package client

import (
	"sort"

	"github.com/automoto/grapple-arena/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// PlayerView is one replicated player.
type PlayerView struct {
	NetworkID esync.NetworkId
	Body      netcomponents.NetBodyData
	State     netcomponents.NetPlayerStateData
	Grapple   netcomponents.NetGrappleData
}

// View is a decoded world snapshot.
type View struct {
	Players []PlayerView
	Bullets []netcomponents.NetBulletData
	Game    netcomponents.NetGameStateData
	HasGame bool
}

// Player returns the player with the given PlayerID.
func (v View) Player(id uint64) (PlayerView, bool) {
	for _, p := range v.Players {
		if p.State.PlayerID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}

// DecodeSnapshot turns a snapshot into a View. Components that fail to
// decode are skipped.
func DecodeSnapshot(snapshot esync.WorldSnapshot) View {
	var components [][]any
	var ids []esync.NetworkId
	for _, ent := range snapshot {
		var compData []any
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			compData = append(compData, instance)
		}
		ids = append(ids, ent.Id)
		components = append(components, compData)
	}
	return buildView(ids, components)
}

func buildView(ids []esync.NetworkId, components [][]any) View {
	var v View
	for i, compData := range components {
		var player PlayerView
		isPlayer := false
		for _, data := range compData {
			switch c := data.(type) {
			case netcomponents.NetBodyData:
				player.Body = c
				isPlayer = true
			case netcomponents.NetPlayerStateData:
				player.State = c
				isPlayer = true
			case netcomponents.NetGrappleData:
				player.Grapple = c
			case netcomponents.NetBulletData:
				v.Bullets = append(v.Bullets, c)
			case netcomponents.NetGameStateData:
				v.Game = c
				v.HasGame = true
			}
		}
		if isPlayer {
			player.NetworkID = ids[i]
			v.Players = append(v.Players, player)
		}
	}
	sort.Slice(v.Players, func(i, j int) bool {
		return v.Players[i].State.PlayerID < v.Players[j].State.PlayerID
	})
	return v
}
