package core

import (
	"time"

	"github.com/automoto/grapple-arena/server/arena"
	"github.com/segmentio/ksuid"
)

// heldSession is what a departed player can reclaim with its reconnect
// token.
type heldSession struct {
	name       string
	color      [4]uint8
	score      arena.Score
	generation uint64
	expires    time.Duration
}

// sessions issues reconnect tokens and keeps the state of departed players
// for a grace period. Times are match scheduler times.
type sessions struct {
	grace  time.Duration
	tokens map[arena.ConnID]string
	held   map[string]heldSession
}

func newSessions(grace time.Duration) *sessions {
	return &sessions{
		grace:  grace,
		tokens: make(map[arena.ConnID]string),
		held:   make(map[string]heldSession),
	}
}

// issue returns a fresh token for a joined connection.
func (ss *sessions) issue(id arena.ConnID) string {
	token := ksuid.New().String()
	ss.tokens[id] = token
	return token
}

// forget drops the token of a connection the server closed itself.
func (ss *sessions) forget(id arena.ConnID) {
	delete(ss.tokens, id)
}

// hold keeps p under its token until now plus the grace period.
func (ss *sessions) hold(p *arena.Player, generation uint64, now time.Duration) {
	token, ok := ss.tokens[p.ID]
	delete(ss.tokens, p.ID)
	if !ok || ss.grace <= 0 {
		return
	}
	ss.expire(now)
	ss.held[token] = heldSession{
		name:       p.Name,
		color:      p.Color,
		score:      p.Score(),
		generation: generation,
		expires:    now + ss.grace,
	}
}

// claim removes the session held under token. It fails for malformed,
// unknown or expired tokens and for sessions of an earlier match.
func (ss *sessions) claim(token string, generation uint64, now time.Duration) (heldSession, bool) {
	if _, err := ksuid.Parse(token); err != nil {
		return heldSession{}, false
	}
	ss.expire(now)
	h, ok := ss.held[token]
	if !ok {
		return heldSession{}, false
	}
	delete(ss.held, token)
	if h.generation != generation {
		return heldSession{}, false
	}
	return h, true
}

// restore puts back a claimed session whose join was then refused.
func (ss *sessions) restore(token string, h heldSession) {
	ss.held[token] = h
}

func (ss *sessions) expire(now time.Duration) {
	for token, h := range ss.held {
		if now >= h.expires {
			delete(ss.held, token)
		}
	}
}
