package main

import (
	"crypto/rand"
	"sync"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Registry owns every active room plus the connection bookkeeping: which
// room a connection currently belongs to, and which display name it holds.
// The write lock serializes room creation and membership changes, which is
// what makes generated codes unique; in-round events only take the read
// lock to resolve their room and are then serialized per room.
type Registry struct {
	mu     sync.RWMutex
	cfg    *Config
	rooms  map[string]*Room
	byConn map[string]*Room
	names  map[string]string
}

func newRegistry(cfg *Config) *Registry {
	return &Registry{
		cfg:    cfg,
		rooms:  make(map[string]*Room),
		byConn: make(map[string]*Room),
		names:  make(map[string]string),
	}
}

// newRoomCodeLocked generates a code no active room is using. Collisions
// are improbable at six characters but still possible, so generation
// retries until a free code comes up; callers never see the retry.
func (reg *Registry) newRoomCodeLocked() string {
	for {
		buf := make([]byte, codeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(out)

		if _, exists := reg.rooms[code]; !exists {
			return code
		}
	}
}

// createRoom opens a lobby with the caller seated as its sole player and
// owner. A connection already in a room is moved: it leaves its old room
// first, so that membership stays at most one room per connection.
func (reg *Registry) createRoom(c *client) (*Room, *PlayerSession) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if prior, ok := reg.byConn[c.id]; ok {
		reg.leaveLocked(c.id, prior)
	}

	code := reg.newRoomCodeLocked()
	room := newRoom(code, c.id)
	session := room.addCreator(c, centerCell(reg.cfg.gridSize))

	reg.rooms[code] = room
	reg.byConn[c.id] = room
	reg.names[c.id] = session.Name

	logf(reg.cfg, "ROOMS: %s created room %s", session.Name, code)

	return room, session
}

// joinRoom seats the caller in the room with the given code. The code is
// matched case-insensitively; an unknown or malformed code fails with
// room-not-found, and a room already in a round rejects the join without
// touching its membership.
func (reg *Registry) joinRoom(code string, c *client) (*PlayerSession, error) {
	code = normalizeRoomCode(code)
	if code == "" {
		return nil, errRoomNotFound
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[code]
	if !ok {
		return nil, errRoomNotFound
	}

	session, err := room.join(c, spawnCell(reg.cfg.gridSize))
	if err != nil {
		return nil, err
	}

	// Only after the join is accepted: a failed join must not cost the
	// caller its current membership.
	if prior, ok := reg.byConn[c.id]; ok && prior != room {
		reg.leaveLocked(c.id, prior)
	}

	reg.byConn[c.id] = room
	reg.names[c.id] = session.Name

	logf(reg.cfg, "ROOMS: %s joined room %s", session.Name, code)

	return session, nil
}

// leaveRoom detaches a connection from whatever room it is in, deleting the
// room once its last player is gone. Connections that never joined a room
// are a no-op, which is what makes disconnect cleanup safe to run blindly.
func (reg *Registry) leaveRoom(connID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.byConn[connID]
	if !ok {
		delete(reg.names, connID)
		return
	}

	reg.leaveLocked(connID, room)
}

func (reg *Registry) leaveLocked(connID string, room *Room) {
	name := reg.names[connID]
	delete(reg.byConn, connID)
	delete(reg.names, connID)

	if room.leave(connID) {
		delete(reg.rooms, room.code)
		logf(reg.cfg, "ROOMS: Deleted empty room %s", room.code)
		return
	}

	logf(reg.cfg, "ROOMS: %s left room %s", name, room.code)
}

// startGame transitions the named room into a round.
func (reg *Registry) startGame(code, connID string) error {
	room, ok := reg.lookup(code)
	if !ok {
		return errRoomNotFound
	}

	if err := room.start(connID); err != nil {
		return err
	}

	logf(reg.cfg, "ROOMS: Game started in room %s", room.code)

	return nil
}

// reportMove relays a position update. Unknown rooms are dropped silently,
// same as unknown players: the client-authoritative model tolerates stale
// state instead of surfacing it.
func (reg *Registry) reportMove(code, playerID string, snake []Cell, score int) {
	room, ok := reg.lookup(code)
	if !ok {
		return
	}
	room.applyMove(playerID, snake, score)
}

// reportDeath records an elimination, which may conclude the round.
func (reg *Registry) reportDeath(code, playerID string) {
	room, ok := reg.lookup(code)
	if !ok {
		return
	}
	room.applyDeath(playerID)
}

func (reg *Registry) lookup(code string) (*Room, bool) {
	code = normalizeRoomCode(code)
	if code == "" {
		return nil, false
	}

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[code]
	return room, ok
}

// normalizeRoomCode uppercases a submitted code and rejects anything that
// is not exactly six characters from the code alphabet. Returns "" for
// malformed input.
func normalizeRoomCode(code string) string {
	if len(code) != codeLength {
		return ""
	}
	out := make([]byte, codeLength)
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch >= 'a' && ch <= 'z':
			ch -= 'a' - 'A'
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		default:
			return ""
		}
		out[i] = ch
	}
	return string(out)
}
