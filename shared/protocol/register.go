package protocol

import (
	"github.com/automoto/grapple-arena/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetBody        uint = 10
	SyncIDNetPlayerState uint = 11
	SyncIDNetBullet      uint = 12
	SyncIDNetGrapple     uint = 13
	SyncIDNetGameState   uint = 14
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDNetBody   uint8 = 10
	InterpIDNetBullet uint8 = 12
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	// Bodies and bullets move every tick, interpolate them client-side
	if err := esync.RegisterComponent(
		SyncIDNetBody,
		netcomponents.NetBodyData{},
		netcomponents.NetBody,
		esync.WithInterpFn(InterpIDNetBody, netcomponents.LerpNetBody),
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetBullet,
		netcomponents.NetBulletData{},
		netcomponents.NetBullet,
		esync.WithInterpFn(InterpIDNetBullet, netcomponents.LerpNetBullet),
	); err != nil {
		return err
	}

	// Discrete state: no interpolation
	if err := esync.RegisterComponent(
		SyncIDNetPlayerState,
		netcomponents.NetPlayerStateData{},
		netcomponents.NetPlayerState,
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetGrapple,
		netcomponents.NetGrappleData{},
		netcomponents.NetGrapple,
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetGameState,
		netcomponents.NetGameStateData{},
		netcomponents.NetGameState,
	); err != nil {
		return err
	}

	return nil
}
