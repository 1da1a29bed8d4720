// Snakepit multiplayer snake coordinator
//
// Each player runs the game locally and reports its own snake position and
// score; the server registers players into rooms, relays reported state to
// the other members, and adjudicates the end of a round.
//
// Features:
// - One WebSocket per player at /ws; all events are JSON with a "type" field
// - Rooms addressed by 6-character codes, generated via crypto/rand with a
//   server-side collision retry
// - Room owner starts the round; joins are rejected once a round is running
// - Movement relayed to everyone but the sender; eliminations to everyone
// - Last player left alive wins; the room resets to its lobby for a rematch
// - Disconnects are treated as leaving the room; empty rooms are deleted
// - In-browser QR code to share a room's join URL, backed by go-qrcode

package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// Messages coming from clients. One envelope covers every event type.
type clientMessage struct {
	Type     string `json:"type"`               // "create-room", "join-room", "start-game", "player-moved", "player-dead"
	RoomCode string `json:"roomCode,omitempty"` // all but create-room
	PlayerID string `json:"playerId,omitempty"` // player-moved / player-dead
	Snake    []Cell `json:"snake,omitempty"`    // player-moved
	Score    int    `json:"score,omitempty"`    // player-moved
}

// Messages sent to clients
type roomCreatedMessage struct {
	Type     string `json:"type"` // "room-created"
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// playerJoinedMessage doubles as the roster update: it is sent on join and
// again whenever membership shrinks, with PlayerName empty in that case.
type playerJoinedMessage struct {
	Type       string        `json:"type"` // "player-joined"
	RoomCode   string        `json:"roomCode"`
	PlayerName string        `json:"playerName,omitempty"`
	Players    []rosterEntry `json:"players"`
}

type gameStartedMessage struct {
	Type string `json:"type"` // "game-started"
}

type playerMovedMessage struct {
	Type       string `json:"type"` // "player-moved"
	PlayerID   string `json:"playerId"`
	Snake      []Cell `json:"snake"`
	Score      int    `json:"score"`
	PlayerName string `json:"playerName"`
}

type playerDeadMessage struct {
	Type       string `json:"type"` // "player-dead"
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type gameOverMessage struct {
	Type     string `json:"type"` // "game-over"
	Winner   string `json:"winner"`
	PlayerID string `json:"playerId"`
}

type errorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, reg *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		c := newClient(conn)

		logf(cfg, "CONN: %s connected from %s", c.id, realIP(r))

		go c.writePump()
		c.readPump(cfg, reg)
	}
}

// readPump consumes inbound events until the socket dies, then runs the
// disconnect cleanup: an implicit leave-room that is a no-op for
// connections that never joined one.
func (c *client) readPump(cfg *Config, reg *Registry) {
	defer func() {
		reg.leaveRoom(c.id)
		close(c.send)
		logf(cfg, "CONN: %s disconnected", c.id)
	}()

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "create-room":
			room, session := reg.createRoom(c)
			c.trySend(roomCreatedMessage{
				Type:     "room-created",
				RoomCode: room.code,
				PlayerID: session.ID,
			})

		case "join-room":
			if _, err := reg.joinRoom(msg.RoomCode, c); err != nil {
				c.sendError(err)
			}

		case "start-game":
			if err := reg.startGame(msg.RoomCode, c.id); err != nil {
				c.sendError(err)
			}

		case "player-moved":
			reg.reportMove(msg.RoomCode, msg.PlayerID, msg.Snake, msg.Score)

		case "player-dead":
			reg.reportDeath(msg.RoomCode, msg.PlayerID)

		default:
			// ignore unknown types
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for a room's join URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if normalizeRoomCode(code) == "" {
		http.Error(w, "invalid room code", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:code/qr; strip trailing "/qr" to get the join URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerSnakeGame sets up routes so that:
//   - $path            → HTML client (create or join a room)
//   - $path/:code      → HTML client with the room code prefilled
//   - $path/:code/qr   → PNG QR code linking to the join URL
//   - /ws              → WebSocket carrying all game events
func registerSnakeGame(cfg *Config, path string, mux *httprouter.Router) {
	reg := newRegistry(cfg)

	mux.GET(cfg.prefix+path, servePlayPage(cfg))

	mux.GET(cfg.prefix+path+"/:code", servePlayPage(cfg))

	mux.GET(cfg.prefix+path+"/:code/qr", qrHandler)

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, reg))
}
