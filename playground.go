package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// The playground is a browser chat client for playing the game without
// the messaging platform: each websocket text frame is fed through the
// same interpreter as a webhook command, and the reply messages are
// written back as JSON.

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "aya_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

type playgroundClient struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

func (c *playgroundClient) readPump(interp *Interpreter) {
	defer func() {
		close(c.send)
		_ = c.conn.Close()
	}()

	src := Source{Kind: SourceUser, UserID: "playground:" + c.playerID}

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply := interp.Handle(context.Background(), src, string(data))
		for _, msg := range reply.Messages {
			c.send <- msg
		}
	}
}

func (c *playgroundClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func servePlaygroundWS(cfg *Config, interp *Interpreter) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		logf(cfg, "PLAY: Player %s connected from %s", playerID, realIP(r))

		client := &playgroundClient{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		go client.writePump()
		client.readPump(interp)
	}
}

// serveFriendQR renders the bot's add-friend link as a PNG QR code,
// the usual way these bots get shared around.
func serveFriendQR(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if cfg.friendLink == "" {
			http.NotFound(w, r)
			return
		}

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(cfg.friendLink, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// Simple HTML client for quick testing
const playgroundHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AyaBot Playground</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; }
  h1 { margin-bottom: 0.5rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; }
  #chat { margin-top: 1rem; padding: 0; list-style: none; }
  #chat li { padding: 0.25rem 0; border-bottom: 1px solid #ddd; white-space: pre-wrap; }
  #chat img { max-width: 320px; display: block; }
  #entry { width: 100%; max-width: 480px; }
</style>
</head>
<body>
<h1>AyaBot Playground</h1>
<div id="status">Connecting…</div>
<ul id="chat"></ul>
<input id="entry" placeholder="/start">

<script>
(function() {
  const statusEl = document.getElementById('status');
  const chatEl = document.getElementById('chat');
  const entryEl = document.getElementById('entry');

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const wsPath = location.pathname.replace(/\/$/, '') + '/ws';
  const ws = new WebSocket(proto + location.host + wsPath);

  function append(node) {
    const li = document.createElement('li');
    li.appendChild(node);
    chatEl.appendChild(li);
    li.scrollIntoView();
  }

  ws.onopen = function() {
    statusEl.textContent = 'Connected. Try /help to get started.';
  };

  ws.onmessage = function(event) {
    try {
      const msg = JSON.parse(event.data);

      if (msg.type === 'text') {
        append(document.createTextNode(msg.text));
        return;
      }

      if (msg.type === 'image') {
        const img = document.createElement('img');
        img.src = msg.originalContentUrl;
        append(img);
        return;
      }
    } catch (e) {
      console.error('bad message', e);
    }
  };

  entryEl.addEventListener('keydown', function(e) {
    if (e.key !== 'Enter' || !entryEl.value) {
      return;
    }
    append(document.createTextNode('> ' + entryEl.value));
    ws.send(entryEl.value);
    entryEl.value = '';
  });

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

func servePlaygroundPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write([]byte(playgroundHTML))
	}
}

func registerPlayground(cfg *Config, interp *Interpreter, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/playground", servePlaygroundPage(cfg))
	mux.GET(cfg.prefix+"/playground/ws", servePlaygroundWS(cfg, interp))
}
