package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/automoto/grapple-arena/server/arena"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
)

// writeTimeout bounds a single message write to one client.
const writeTimeout = 2 * time.Second

var errUnsupportedPeer = errors.New("peer cannot send messages")

// peer is a connected client. *router.NetworkClient satisfies it.
type peer interface {
	Id() string
}

type messageSender interface {
	SendMessage(msg any) error
}

type binaryWriter interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
}

// sendTo serializes msg with the necs router codec and writes it to p.
func sendTo(p peer, msg any) error {
	switch c := p.(type) {
	case messageSender:
		return c.SendMessage(msg)
	case binaryWriter:
		payload, err := router.Serialize(msg)
		if err != nil {
			return fmt.Errorf("serialize: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		return c.Write(ctx, websocket.MessageBinary, payload)
	default:
		return errUnsupportedPeer
	}
}

func closePeer(p peer) {
	switch c := p.(type) {
	case interface{ CloseNow() error }:
		_ = c.CloseNow()
	case interface {
		Close(code websocket.StatusCode, reason string) error
	}:
		_ = c.Close(websocket.StatusNormalClosure, "")
	}
}

// peerSet maps live connections to ConnIDs and implements arena.Transport.
// It is owned by the game loop goroutine.
type peerSet struct {
	byID   map[arena.ConnID]peer
	ids    map[peer]arena.ConnID
	joined map[arena.ConnID]bool
	next   arena.ConnID

	// onRope receives rope updates instead of the network.
	onRope func(messages.GrappleRope)
	// onDrop is told about connections closed by Disconnect.
	onDrop func(arena.ConnID)
}

func newPeerSet() *peerSet {
	return &peerSet{
		byID:   make(map[arena.ConnID]peer),
		ids:    make(map[peer]arena.ConnID),
		joined: make(map[arena.ConnID]bool),
	}
}

// add assigns the next ConnID to p. ConnIDs are never reused.
func (ps *peerSet) add(p peer) arena.ConnID {
	if id, ok := ps.ids[p]; ok {
		return id
	}
	ps.next++
	ps.byID[ps.next] = p
	ps.ids[p] = ps.next
	return ps.next
}

func (ps *peerSet) lookup(p peer) (arena.ConnID, bool) {
	id, ok := ps.ids[p]
	return id, ok
}

func (ps *peerSet) remove(id arena.ConnID) (peer, bool) {
	p, ok := ps.byID[id]
	if !ok {
		return nil, false
	}
	delete(ps.byID, id)
	delete(ps.ids, p)
	delete(ps.joined, id)
	return p, true
}

func (ps *peerSet) setJoined(id arena.ConnID, joined bool) {
	if !joined {
		delete(ps.joined, id)
		return
	}
	if _, ok := ps.byID[id]; ok {
		ps.joined[id] = true
	}
}

func (ps *peerSet) isJoined(id arena.ConnID) bool { return ps.joined[id] }

// joinedIDs returns the joined connections in ascending order.
func (ps *peerSet) joinedIDs() []arena.ConnID {
	ids := make([]arena.ConnID, 0, len(ps.joined))
	for id := range ps.joined {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (ps *peerSet) Send(to []arena.ConnID, msg any) {
	for _, id := range to {
		p, ok := ps.byID[id]
		if !ok {
			continue
		}
		if err := sendTo(p, msg); err != nil {
			log.Printf("[server] send %T to %d failed: %v", msg, id, err)
		}
	}
}

func (ps *peerSet) Broadcast(msg any) {
	if rope, ok := msg.(messages.GrappleRope); ok {
		if ps.onRope != nil {
			ps.onRope(rope)
		}
		return
	}
	ps.Send(ps.joinedIDs(), msg)
}

func (ps *peerSet) Disconnect(id arena.ConnID) {
	p, ok := ps.remove(id)
	if !ok {
		return
	}
	log.Printf("[server] disconnecting %d (%s)", id, p.Id())
	closePeer(p)
	if ps.onDrop != nil {
		ps.onDrop(id)
	}
}
