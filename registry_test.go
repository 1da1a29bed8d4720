package main

import (
	"errors"
	"testing"
)

func TestRoomCodesUniqueAndWellFormed(t *testing.T) {
	reg := newRegistry(testConfig())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		room, _ := reg.createRoom(newTestClient())
		if seen[room.code] {
			t.Fatalf("duplicate room code %q", room.code)
		}
		seen[room.code] = true

		if normalizeRoomCode(room.code) != room.code {
			t.Errorf("generated code %q is not 6 uppercase alphanumerics", room.code)
		}
	}
}

func TestCreateRoomSeatsCreatorAsOwner(t *testing.T) {
	reg := newRegistry(testConfig())
	c := newTestClient()

	room, session := reg.createRoom(c)

	if room.owner != c.id {
		t.Errorf("room owner is %q, want %q", room.owner, c.id)
	}
	if session.Name != "Player 1" {
		t.Errorf("creator named %q, want %q", session.Name, "Player 1")
	}
	if len(session.Snake) != 1 {
		t.Errorf("creator seeded with %d cells, want 1", len(session.Snake))
	}
	if room.state != roomLobby {
		t.Errorf("new room lifecycle is %s, want lobby", room.state)
	}
}

func TestJoinUnknownCode(t *testing.T) {
	reg := newRegistry(testConfig())

	for _, code := range []string{"ZZZZZZ", "abc", "", "AB12C!"} {
		if _, err := reg.joinRoom(code, newTestClient()); !errors.Is(err, errRoomNotFound) {
			t.Errorf("join %q: expected errRoomNotFound, got %v", code, err)
		}
	}

	if len(reg.rooms) != 0 || len(reg.byConn) != 0 {
		t.Errorf("failed joins mutated registry state")
	}
}

func TestJoinMatchesCodeCaseInsensitively(t *testing.T) {
	reg := newRegistry(testConfig())
	room, _ := reg.createRoom(newTestClient())

	lower := ""
	for _, ch := range room.code {
		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}
		lower += string(ch)
	}

	if _, err := reg.joinRoom(lower, newTestClient()); err != nil {
		t.Fatalf("join with lowercased code %q: %v", lower, err)
	}
}

func TestJoinActiveRoomRejectedWithoutMutation(t *testing.T) {
	reg := newRegistry(testConfig())
	owner := newTestClient()
	room, _ := reg.createRoom(owner)
	if _, err := reg.joinRoom(room.code, newTestClient()); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := reg.startGame(room.code, owner.id); err != nil {
		t.Fatalf("start: %v", err)
	}

	late := newTestClient()
	if _, err := reg.joinRoom(room.code, late); !errors.Is(err, errGameAlreadyStarted) {
		t.Fatalf("expected errGameAlreadyStarted, got %v", err)
	}
	if len(room.players) != 2 {
		t.Errorf("rejected join mutated membership: %d players", len(room.players))
	}
	if _, ok := reg.byConn[late.id]; ok {
		t.Errorf("rejected join left a membership mapping behind")
	}
}

func TestStartGameUnknownRoom(t *testing.T) {
	reg := newRegistry(testConfig())

	if err := reg.startGame("ZZZZZZ", "whoever"); !errors.Is(err, errRoomNotFound) {
		t.Fatalf("expected errRoomNotFound, got %v", err)
	}
}

func TestLeaveLastPlayerDeletesRoom(t *testing.T) {
	reg := newRegistry(testConfig())
	c := newTestClient()
	room, _ := reg.createRoom(c)

	reg.leaveRoom(c.id)

	if _, err := reg.joinRoom(room.code, newTestClient()); !errors.Is(err, errRoomNotFound) {
		t.Fatalf("expected errRoomNotFound after room emptied, got %v", err)
	}
	if len(reg.rooms) != 0 {
		t.Errorf("empty room not deleted from registry")
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	reg := newRegistry(testConfig())

	// A connection that never joined anything must be safe to clean up.
	reg.leaveRoom("never-joined")

	c := newTestClient()
	reg.createRoom(c)
	reg.leaveRoom(c.id)
	reg.leaveRoom(c.id)

	if len(reg.rooms) != 0 || len(reg.byConn) != 0 || len(reg.names) != 0 {
		t.Errorf("registry not clean after repeated leaves: rooms=%d conns=%d names=%d",
			len(reg.rooms), len(reg.byConn), len(reg.names))
	}
}

func TestLeaveNotifiesRemainingMembers(t *testing.T) {
	reg := newRegistry(testConfig())
	owner := newTestClient()
	room, _ := reg.createRoom(owner)
	joiner := newTestClient()
	if _, err := reg.joinRoom(room.code, joiner); err != nil {
		t.Fatalf("join: %v", err)
	}
	drain(owner)
	drain(joiner)

	reg.leaveRoom(owner.id)

	rosters := messagesOfType[playerJoinedMessage](drain(joiner))
	if len(rosters) != 1 {
		t.Fatalf("expected one roster update, got %d", len(rosters))
	}
	if len(rosters[0].Players) != 1 || rosters[0].Players[0].ID != joiner.id {
		t.Errorf("roster after leave is %v, want only the remaining player", rosters[0].Players)
	}

	if _, ok := reg.names[owner.id]; ok {
		t.Errorf("name reservation not released on leave")
	}
}

func TestCreateWhileSeatedMovesConnection(t *testing.T) {
	reg := newRegistry(testConfig())
	c := newTestClient()
	first, _ := reg.createRoom(c)
	second, _ := reg.createRoom(c)

	if reg.byConn[c.id] != second {
		t.Errorf("connection not mapped to its newest room")
	}
	if _, ok := reg.rooms[first.code]; ok {
		t.Errorf("abandoned room %q not deleted after sole player moved on", first.code)
	}
}

func TestMoveAndDeathForUnknownRoomDropped(t *testing.T) {
	reg := newRegistry(testConfig())

	// Must not panic or surface anything.
	reg.reportMove("ZZZZZZ", "whoever", []Cell{{X: 1, Y: 1}}, 2)
	reg.reportDeath("ZZZZZZ", "whoever")
}

// Full round, end to end through the registry: create, join, start, death,
// winner, reset.
func TestRoundScenario(t *testing.T) {
	reg := newRegistry(testConfig())

	p1 := newTestClient()
	room, s1 := reg.createRoom(p1)
	if s1.Name != "Player 1" {
		t.Fatalf("creator named %q", s1.Name)
	}

	p2 := newTestClient()
	s2, err := reg.joinRoom(room.code, p2)
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	for _, c := range []*client{p1, p2} {
		rosters := messagesOfType[playerJoinedMessage](drain(c))
		if len(rosters) != 1 || len(rosters[0].Players) != 2 {
			t.Fatalf("expected roster [Player 1, Player 2], got %v", rosters)
		}
	}

	if err := reg.startGame(room.code, p2.id); !errors.Is(err, errNotOwner) {
		t.Fatalf("non-owner start: expected errNotOwner, got %v", err)
	}
	if err := reg.startGame(room.code, p1.id); err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, c := range []*client{p1, p2} {
		if started := messagesOfType[gameStartedMessage](drain(c)); len(started) != 1 {
			t.Fatalf("expected one game-started, got %d", len(started))
		}
	}

	reg.reportDeath(room.code, s1.ID)

	for _, c := range []*client{p1, p2} {
		msgs := drain(c)
		if dead := messagesOfType[playerDeadMessage](msgs); len(dead) != 1 || dead[0].PlayerID != s1.ID {
			t.Fatalf("expected player-dead for %q, got %v", s1.ID, dead)
		}
		over := messagesOfType[gameOverMessage](msgs)
		if len(over) != 1 || over[0].Winner != s2.Name || over[0].PlayerID != s2.ID {
			t.Fatalf("expected game-over naming %q, got %v", s2.Name, over)
		}
	}

	if room.state != roomLobby {
		t.Errorf("lifecycle is %s after round, want lobby", room.state)
	}
	for _, p := range room.players {
		if !p.Alive {
			t.Errorf("%s not revived after round", p.Name)
		}
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"AB12CD", "AB12CD"},
		{"ab12cd", "AB12CD"},
		{"aB12Cd", "AB12CD"},
		{"AB12C", ""},
		{"AB12CDE", ""},
		{"AB12C!", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := normalizeRoomCode(tc.in); got != tc.want {
			t.Errorf("normalizeRoomCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
