package main

import (
	"testing"

	"github.com/google/uuid"
)

func TestBroadcastReachesEveryMember(t *testing.T) {
	room, clients := newLobby(t, 3)

	room.mu.Lock()
	room.broadcastLocked(gameStartedMessage{Type: "game-started"})
	room.mu.Unlock()

	for i, c := range clients {
		if got := messagesOfType[gameStartedMessage](drain(c)); len(got) != 1 {
			t.Errorf("client %d received %d messages, want 1", i, len(got))
		}
	}
}

func TestBroadcastOthersExcludesSender(t *testing.T) {
	room, clients := newLobby(t, 3)

	room.mu.Lock()
	room.broadcastOthersLocked(clients[1].id, playerDeadMessage{Type: "player-dead"})
	room.mu.Unlock()

	if got := drain(clients[1]); len(got) != 0 {
		t.Errorf("sender received %d messages, want 0", len(got))
	}
	for _, c := range []*client{clients[0], clients[2]} {
		if got := drain(c); len(got) != 1 {
			t.Errorf("peer received %d messages, want 1", len(got))
		}
	}
}

func TestBroadcastDropsStalledSubscriber(t *testing.T) {
	room, clients := newLobby(t, 2)

	// No buffer and no reader: every queued send would block, which is the
	// stalled-connection case.
	stalled := &client{
		id:   uuid.NewString(),
		send: make(chan any),
	}
	room.mu.Lock()
	room.clients[stalled.id] = stalled
	room.broadcastLocked(gameStartedMessage{Type: "game-started"})
	_, stillSubscribed := room.clients[stalled.id]
	room.mu.Unlock()

	if stillSubscribed {
		t.Errorf("stalled subscriber not dropped")
	}
	for i, c := range clients {
		if got := drain(c); len(got) != 1 {
			t.Errorf("healthy client %d received %d messages, want 1", i, len(got))
		}
	}
}

func TestTrySendReportsFullQueue(t *testing.T) {
	c := &client{
		id:   uuid.NewString(),
		send: make(chan any, 1),
	}

	if !c.trySend("first") {
		t.Fatalf("send into empty queue failed")
	}
	if c.trySend("second") {
		t.Errorf("send into full queue reported success")
	}
}
