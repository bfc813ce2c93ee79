package arena

import "github.com/automoto/grapple-arena/shared/gamemath"

// PickSpawn returns the first spawn point with no occupied position closer
// than safeDistance. When every point is crowded the last one is used.
// spawns must not be empty.
func PickSpawn(spawns, occupied []gamemath.Vec, safeDistance float64) gamemath.Vec {
	for _, sp := range spawns {
		if isSafe(sp, occupied, safeDistance) {
			return sp
		}
	}
	return spawns[len(spawns)-1]
}

func isSafe(sp gamemath.Vec, occupied []gamemath.Vec, safeDistance float64) bool {
	for _, pos := range occupied {
		if pos.Dist(sp) < safeDistance {
			return false
		}
	}
	return true
}
