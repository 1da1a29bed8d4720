package main

import (
	"crypto/rand"
)

// Cell is one occupied square on the grid. The first cell of a snake is its
// head.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PlayerSession is the state a room stores for one connected player. Snake
// and Score are client-reported and stored verbatim; the server never
// recomputes movement or collisions.
type PlayerSession struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Snake []Cell `json:"snake"`
	Score int    `json:"score"`
	Alive bool   `json:"alive"`
}

// rosterEntry is the id/name pair sent in membership updates.
type rosterEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spawnCell picks a random starting cell for a joining player.
func spawnCell(gridSize int) Cell {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return centerCell(gridSize)
	}
	return Cell{
		X: int(buf[0]) % gridSize,
		Y: int(buf[1]) % gridSize,
	}
}

// centerCell is where the room creator spawns.
func centerCell(gridSize int) Cell {
	return Cell{X: gridSize / 2, Y: gridSize / 2}
}
