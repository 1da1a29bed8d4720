package main

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// client is one live connection's subscription: an id, the socket, and a
// buffered outbound queue drained by its write pump. Broadcasts never block
// on a slow socket; they queue and move on.
type client struct {
	id   string
	conn *websocket.Conn
	send chan any
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan any, 16),
	}
}

// trySend queues a message for this connection without blocking. A full
// queue drops the message; delivery is fire-and-forget throughout.
func (c *client) trySend(msg any) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// broadcastLocked fans a message out to every member of the room. A member
// whose queue is full is treated as stalled: it is dropped from the
// subscriber set and its socket closed, which runs the normal disconnect
// cleanup from that connection's own read loop.
func (r *Room) broadcastLocked(msg any) {
	for id, c := range r.clients {
		if c.trySend(msg) {
			continue
		}
		delete(r.clients, id)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

// broadcastOthersLocked is broadcastLocked minus the sender, used for
// movement relay where the reporting client already has its own state.
func (r *Room) broadcastOthersLocked(sender string, msg any) {
	for id, c := range r.clients {
		if id == sender {
			continue
		}
		if c.trySend(msg) {
			continue
		}
		delete(r.clients, id)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

// sendError reports a failure back to the requesting connection only; other
// room members never observe it.
func (c *client) sendError(err error) {
	c.trySend(errorMessage{
		Type:    "error",
		Message: err.Error(),
	})
}
