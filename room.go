package main

import (
	"fmt"
	"sync"
)

type roomState int

// A room starts in the lobby, moves to active on a valid start-game, and
// passes through ended back to the lobby when a round concludes. The ended
// state is transient: it is never observable between events, because the
// reset happens inside the same critical section that detects the winner.
const (
	roomLobby roomState = iota
	roomActive
	roomEnded
)

func (s roomState) String() string {
	switch s {
	case roomLobby:
		return "lobby"
	case roomActive:
		return "active"
	case roomEnded:
		return "ended"
	}
	return "unknown"
}

// Room is one game session. Every field is guarded by mu, so all events for
// a given room apply in arrival order, while separate rooms proceed
// independently of each other.
type Room struct {
	mu sync.Mutex

	code    string
	owner   string // connection id of the creating player
	state   roomState
	players []*PlayerSession
	clients map[string]*client
}

func newRoom(code, owner string) *Room {
	return &Room{
		code:    code,
		owner:   owner,
		clients: make(map[string]*client),
	}
}

// addCreator seats the creating player without notifying anyone; the caller
// replies to the creator directly with the room-created event.
func (r *Room) addCreator(c *client, spawn Cell) *PlayerSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.appendPlayerLocked(c, spawn)
}

// join appends a new player and announces the updated roster to every
// member, the newcomer included. Joins are only accepted in the lobby.
func (r *Room) join(c *client, spawn Cell) (*PlayerSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == roomActive {
		return nil, errGameAlreadyStarted
	}

	if existing := r.memberLocked(c.id); existing != nil {
		return existing, nil
	}

	session := r.appendPlayerLocked(c, spawn)

	r.broadcastLocked(playerJoinedMessage{
		Type:       "player-joined",
		RoomCode:   r.code,
		PlayerName: session.Name,
		Players:    r.rosterLocked(),
	})

	return session, nil
}

func (r *Room) appendPlayerLocked(c *client, spawn Cell) *PlayerSession {
	session := &PlayerSession{
		ID:    c.id,
		Name:  fmt.Sprintf("Player %d", len(r.players)+1),
		Snake: []Cell{spawn},
		Alive: true,
	}
	r.players = append(r.players, session)
	r.clients[c.id] = c

	return session
}

// leave removes a member and reports whether the room is now empty. If
// players remain, they receive the updated roster; the empty room is the
// registry's to delete.
func (r *Room) leave(connID string) (empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := false
	dst := r.players[:0]
	for _, p := range r.players {
		if p.ID == connID {
			found = true
			continue
		}
		dst = append(dst, p)
	}
	r.players = dst
	delete(r.clients, connID)

	if !found {
		return len(r.players) == 0
	}

	if len(r.players) == 0 {
		return true
	}

	r.broadcastLocked(playerJoinedMessage{
		Type:     "player-joined",
		RoomCode: r.code,
		Players:  r.rosterLocked(),
	})

	return false
}

// start transitions the room to active and announces the round. Only the
// owner may start, and only with at least two players seated.
func (r *Room) start(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connID != r.owner {
		return errNotOwner
	}
	if r.state == roomActive {
		return errGameAlreadyStarted
	}
	if len(r.players) <= 1 {
		return errInsufficientPlayers
	}

	r.state = roomActive

	r.broadcastLocked(gameStartedMessage{Type: "game-started"})

	return nil
}

// applyMove stores a client-reported position update and relays it to every
// other member. Updates for rooms not in a round, or for unknown players,
// are dropped without an error: stale clients are expected, not faulted.
func (r *Room) applyMove(playerID string, snake []Cell, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != roomActive {
		return
	}

	session := r.memberLocked(playerID)
	if session == nil {
		return
	}

	session.Snake = snake
	session.Score = score

	r.broadcastOthersLocked(playerID, playerMovedMessage{
		Type:       "player-moved",
		PlayerID:   playerID,
		Snake:      snake,
		Score:      score,
		PlayerName: session.Name,
	})
}

// applyDeath records an elimination and broadcasts it to the whole room,
// the eliminated player included. When exactly one member is left alive, a
// game-over names the survivor and the room resets for another round. When
// none are left (the last live player died), no winner is declared and no
// reset occurs.
func (r *Room) applyDeath(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session := r.memberLocked(playerID)
	if session == nil {
		return
	}

	session.Alive = false

	r.broadcastLocked(playerDeadMessage{
		Type:       "player-dead",
		PlayerID:   playerID,
		PlayerName: session.Name,
	})

	var survivor *PlayerSession
	alive := 0
	for _, p := range r.players {
		if p.Alive {
			alive++
			survivor = p
		}
	}

	if alive != 1 {
		return
	}

	r.broadcastLocked(gameOverMessage{
		Type:     "game-over",
		Winner:   survivor.Name,
		PlayerID: survivor.ID,
	})

	r.state = roomEnded
	r.resetLocked()
}

// resetLocked returns the room to the lobby with the same membership, ready
// for another start-game.
func (r *Room) resetLocked() {
	for _, p := range r.players {
		p.Alive = true
	}
	r.state = roomLobby
}

func (r *Room) memberLocked(id string) *PlayerSession {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) rosterLocked() []rosterEntry {
	roster := make([]rosterEntry, 0, len(r.players))
	for _, p := range r.players {
		roster = append(roster, rosterEntry{ID: p.ID, Name: p.Name})
	}
	return roster
}
