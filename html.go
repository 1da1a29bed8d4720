/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

func serveHomePage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(newPage("snakepit", "Play snake")))
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}

func servePlayPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(playHTML))
	}
}

// Simple HTML client for quick testing; production clients speak the same
// websocket protocol.
const playHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Snakepit</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; }
  h1 { margin-bottom: 0.5rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; }
  #players { margin-top: 1rem; padding: 0; list-style: none; }
  #players li { padding: 0.25rem 0; border-bottom: 1px solid #ddd; }
  #log { margin-top: 1rem; font-size: 0.8rem; color: #555; white-space: pre-line; }
  button { margin-right: 0.5rem; }
</style>
</head>
<body>
<h1>Snakepit</h1>
<div id="status">Connecting…</div>
<div>
  <button id="create">Create room</button>
  <button id="join">Join room</button>
  <button id="start" disabled>Start game</button>
  <span id="room"></span>
</div>
<ul id="players"></ul>
<div id="log"></div>

<script>
(function() {
  const statusEl = document.getElementById('status');
  const playersEl = document.getElementById('players');
  const roomEl = document.getElementById('room');
  const logEl = document.getElementById('log');

  let roomCode = '';
  let playerId = '';

  // /play/:code prefills the room code for QR joins.
  let parts = location.pathname.replace(/\/$/, '').split('/');
  let prefillCode = '';
  if (/^[A-Za-z0-9]{6}$/.test(parts[parts.length - 1])) {
    prefillCode = parts[parts.length - 1];
    parts = parts.slice(0, parts.length - 1);
  }

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const wsPath = parts.slice(0, parts.length - 1).join('/') + '/ws';
  const ws = new WebSocket(proto + location.host + wsPath);

  function log(line) {
    logEl.textContent += line + '\n';
  }

  ws.onopen = function() {
    statusEl.textContent = 'Connected.';
    if (prefillCode) {
      ws.send(JSON.stringify({ type: 'join-room', roomCode: prefillCode }));
    }
  };

  document.getElementById('create').onclick = function() {
    ws.send(JSON.stringify({ type: 'create-room' }));
  };

  document.getElementById('join').onclick = function() {
    const code = prompt('Enter room code:') || '';
    if (code) {
      ws.send(JSON.stringify({ type: 'join-room', roomCode: code }));
    }
  };

  document.getElementById('start').onclick = function() {
    ws.send(JSON.stringify({ type: 'start-game', roomCode: roomCode }));
  };

  ws.onmessage = function(event) {
    try {
      const msg = JSON.parse(event.data);

      switch (msg.type) {
      case 'room-created':
        roomCode = msg.roomCode;
        playerId = msg.playerId;
        roomEl.textContent = 'Room: ' + roomCode;
        document.getElementById('start').disabled = false;
        log('Created room ' + roomCode);
        break;
      case 'player-joined':
        roomCode = msg.roomCode;
        roomEl.textContent = 'Room: ' + roomCode;
        playersEl.innerHTML = '';
        msg.players.forEach(function(p) {
          const li = document.createElement('li');
          li.textContent = p.name;
          playersEl.appendChild(li);
        });
        if (msg.playerName) {
          log(msg.playerName + ' joined');
        }
        break;
      case 'game-started':
        log('Game started');
        break;
      case 'player-moved':
        break;
      case 'player-dead':
        log(msg.playerName + ' was eliminated');
        break;
      case 'game-over':
        log('Winner: ' + msg.winner);
        break;
      case 'error':
        statusEl.textContent = msg.message;
        log('Error: ' + msg.message);
        break;
      }
    } catch (e) {
      console.error('bad message', e);
    }
  };

  ws.onclose = function() {
    statusEl.textContent = 'Disconnected.';
  };

  ws.onerror = function() {
    statusEl.textContent = 'Error with WebSocket.';
  };
})();
</script>
</body>
</html>
`
