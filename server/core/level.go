package core

import (
	"fmt"
	"io/fs"
	"log"
	"path"

	"github.com/automoto/grapple-arena/assets"
	"github.com/automoto/grapple-arena/shared/gamemath"
	"github.com/automoto/grapple-arena/shared/leveldata"
	"github.com/solarlune/resolv"
)

// resolv tags
const (
	tagSolid  = "solid"
	tagPlayer = "player"
	tagBullet = "bullet"
)

// ServerLevel holds the server's collision space and spawn data for a level.
type ServerLevel struct {
	Name        string
	Space       *resolv.Space
	Rects       []gamemath.Rect
	SpawnPoints []leveldata.SpawnPoint
	MapWidth    int
	MapHeight   int
}

// NewServerLevel builds a resolv.Space from parsed collision data.
func NewServerLevel(data *leveldata.CollisionData) *ServerLevel {
	space := resolv.NewSpace(data.MapWidth, data.MapHeight, 16, 16)

	rects := make([]gamemath.Rect, 0, len(data.SolidRects))
	for _, r := range data.SolidRects {
		obj := resolv.NewObject(r.X, r.Y, r.W, r.H, tagSolid)
		obj.SetShape(resolv.NewRectangle(0, 0, r.W, r.H))
		space.Add(obj)
		rects = append(rects, gamemath.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H})
	}

	log.Printf("Loaded level %q: %d solid tiles, %d spawn points, %dx%d map",
		data.Name, len(data.SolidRects), len(data.SpawnPoints), data.MapWidth, data.MapHeight)

	return &ServerLevel{
		Name:        data.Name,
		Space:       space,
		Rects:       rects,
		SpawnPoints: data.SpawnPoints,
		MapWidth:    data.MapWidth,
		MapHeight:   data.MapHeight,
	}
}

// Spawns returns the spawn points in placement order.
func (l *ServerLevel) Spawns() []gamemath.Vec {
	out := make([]gamemath.Vec, len(l.SpawnPoints))
	for i, sp := range l.SpawnPoints {
		out[i] = gamemath.V(sp.X, sp.Y)
	}
	return out
}

// InBounds reports whether p lies inside the map.
func (l *ServerLevel) InBounds(p gamemath.Vec) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= float64(l.MapWidth) && p.Y <= float64(l.MapHeight)
}

// LoadServerLevel loads a single level by stem name from fsys.
func LoadServerLevel(fsys fs.FS, name string) (*ServerLevel, error) {
	data, err := leveldata.LoadCollisionData(fsys, path.Join(assets.LevelsDir, name+".tmx"))
	if err != nil {
		return nil, fmt.Errorf("load level %s: %w", name, err)
	}
	return NewServerLevel(data), nil
}

// LoadAllServerLevels loads all .tmx levels from fsys, returning a map of
// ServerLevel keyed by stem name plus a sorted name list.
func LoadAllServerLevels(fsys fs.FS) (map[string]*ServerLevel, []string, error) {
	collisionMap, names, err := leveldata.LoadAllLevels(fsys, assets.LevelsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load all levels: %w", err)
	}

	levels := make(map[string]*ServerLevel, len(names))
	for _, name := range names {
		levels[name] = NewServerLevel(collisionMap[name])
	}

	return levels, names, nil
}
