package arena

import (
	"sort"

	"github.com/automoto/grapple-arena/shared/gamemath"
)

// Directory maps connection ids to players. It enforces capacity and hands
// out spawn points round-robin in registration order.
type Directory struct {
	capacity int
	spawns   []gamemath.Vec
	next     int

	players map[ConnID]*Player
	order   []ConnID // ascending
}

// NewDirectory returns an empty directory.
func NewDirectory(capacity int, spawns []gamemath.Vec) *Directory {
	return &Directory{
		capacity: capacity,
		spawns:   spawns,
		players:  make(map[ConnID]*Player),
	}
}

// Register creates a player for id at the next spawn point. Registering an
// id that is already present returns the existing player.
func (d *Directory) Register(id ConnID) (*Player, error) {
	if p, ok := d.players[id]; ok {
		return p, nil
	}
	if len(d.players) >= d.capacity {
		return nil, Reject(CapacityExceeded, "")
	}

	p := &Player{ID: id}
	if len(d.spawns) > 0 {
		p.SpawnIndex = d.next % len(d.spawns)
		p.Spawn = d.spawns[p.SpawnIndex]
		d.next++
	}

	d.players[id] = p
	i := sort.Search(len(d.order), func(i int) bool { return d.order[i] >= id })
	d.order = append(d.order, 0)
	copy(d.order[i+1:], d.order[i:])
	d.order[i] = id
	return p, nil
}

// Unregister removes id and returns the removed player. Absent ids are a
// no-op.
func (d *Directory) Unregister(id ConnID) (*Player, bool) {
	p, ok := d.players[id]
	if !ok {
		return nil, false
	}
	delete(d.players, id)
	i := sort.Search(len(d.order), func(i int) bool { return d.order[i] >= id })
	d.order = append(d.order[:i], d.order[i+1:]...)
	return p, true
}

// Lookup returns the player for id.
func (d *Directory) Lookup(id ConnID) (*Player, bool) {
	p, ok := d.players[id]
	return p, ok
}

// Players returns all players in ascending ConnID order.
func (d *Directory) Players() []*Player {
	out := make([]*Player, len(d.order))
	for i, id := range d.order {
		out[i] = d.players[id]
	}
	return out
}

// Len returns the number of registered players.
func (d *Directory) Len() int { return len(d.players) }

// Capacity returns the maximum number of players.
func (d *Directory) Capacity() int { return d.capacity }

// Clear removes every player and restarts spawn assignment.
func (d *Directory) Clear() {
	d.players = make(map[ConnID]*Player)
	d.order = nil
	d.next = 0
}
