package arena

import (
	"sort"

	"github.com/automoto/grapple-arena/shared/messages"
)

// Rank orders players by points, highest first. Ties keep the input order,
// which Directory.Players gives as ascending ConnID.
func Rank(players []*Player) []*Player {
	ranked := make([]*Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	return ranked
}

// CrownFor returns who should hold the crown given a ranking and the current
// holder (nil for none). A holder tied with the leader keeps it.
func CrownFor(ranked []*Player, holder *Player) *Player {
	if len(ranked) == 0 {
		return nil
	}
	top := ranked[0]
	if holder != nil && holder.Points == top.Points {
		for _, p := range ranked {
			if p == holder {
				return holder
			}
		}
	}
	return top
}

// rankPlayers recomputes the ranking and moves the crown if the leader
// changed.
func (m *Match) rankPlayers() []*Player {
	ranked := Rank(m.dir.Players())

	var holder *Player
	if m.hasCrown {
		holder, _ = m.dir.Lookup(m.crown)
	}
	next := CrownFor(ranked, holder)
	if next == holder {
		return ranked
	}

	if holder != nil {
		holder.Crown = false
		m.transport.Broadcast(messages.CrownChanged{ID: uint64(holder.ID), Active: false})
	}
	if next != nil {
		next.Crown = true
		m.crown, m.hasCrown = next.ID, true
		m.transport.Broadcast(messages.CrownChanged{ID: uint64(next.ID), Active: true})
	} else {
		m.crown, m.hasCrown = 0, false
	}
	return ranked
}

// RankPlayers recomputes the ranking, moving the crown when needed.
func (m *Match) RankPlayers() []messages.RankEntry {
	return rankEntries(m.rankPlayers())
}

func rankEntries(ranked []*Player) []messages.RankEntry {
	entries := make([]messages.RankEntry, len(ranked))
	for i, p := range ranked {
		entries[i] = messages.RankEntry{
			ID:     uint64(p.ID),
			Name:   p.Name,
			Points: p.Points,
			Kills:  p.Kills,
			Deaths: p.Deaths,
		}
	}
	return entries
}
