// Package leveldata provides TMX level parsing shared between client and server.
// It depends only on go-tiled; physics and ECS types stay out.
package leveldata

// Layer and object group names read from TMX files.
const (
	ObstacleLayer    = "Obstacles"
	SpawnObjectGroup = "PlayerSpawn"
)

// CollisionData holds all collision-relevant data parsed from a TMX level file.
type CollisionData struct {
	Name        string
	SolidRects  []SolidRect
	SpawnPoints []SpawnPoint
	MapWidth    int
	MapHeight   int
}

// SolidRect represents a solid collision tile on the Obstacles layer.
type SolidRect struct {
	X, Y, W, H float64
}

// SpawnPoint represents a player spawn location.
type SpawnPoint struct {
	X, Y  float64
	Index int
}
