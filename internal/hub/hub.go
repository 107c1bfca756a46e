// Package hub pushes monitor snapshots and platform commands to connected
// browser clients over WebSocket. The browser is what actually plays the
// sound, shows the notification, vibrates and holds the wake-lock.
package hub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/andres10976/orderwatch/internal/model"
	"github.com/andres10976/orderwatch/internal/platform"
)

var ErrNoClients = errors.New("no clients connected")

const (
	sendBuffer   = 16
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
)

const (
	MessageSnapshot = "snapshot"
	MessageCommand  = "command"
)

const (
	CommandAudioPlay       = "audio.play"
	CommandAudioStop       = "audio.stop"
	CommandNotifyRequest   = "notify.permission"
	CommandNotify          = "notify"
	CommandVibrate         = "vibrate"
	CommandWakeLockAcquire = "wakelock.acquire"
	CommandWakeLockRelease = "wakelock.release"
)

type Message struct {
	Type         string                 `json:"type"`
	Snapshot     *model.Snapshot        `json:"snapshot,omitempty"`
	Command      string                 `json:"command,omitempty"`
	Volume       *float64               `json:"volume,omitempty"`
	SoundURL     string                 `json:"sound_url,omitempty"`
	Notification *platform.Notification `json:"notification,omitempty"`
	PatternMS    []int64                `json:"pattern_ms,omitempty"`
}

type client struct {
	id   uuid.UUID
	send chan []byte
}

type Hub struct {
	upgrader   websocket.Upgrader
	soundURL   string
	maxClients int

	mu       sync.RWMutex
	clients  map[*client]struct{}
	snapshot []byte
	polling  bool

	stop     chan struct{}
	stopOnce sync.Once
}

// New returns a hub accepting connections from allowOrigin ("*" for any).
// Requests without an Origin header are always accepted.
func New(soundURL, allowOrigin string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowOrigin == "*" || origin == allowOrigin
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		soundURL:   soundURL,
		maxClients: 32,
		clients:    make(map[*client]struct{}),
		stop:       make(chan struct{}),
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish stores s as the latest snapshot and sends it to every client.
// New clients receive the latest snapshot on connect, followed by a
// wake-lock acquire while the monitor is polling.
func (h *Hub) Publish(s model.Snapshot) {
	data, err := json.Marshal(Message{Type: MessageSnapshot, Snapshot: &s})
	if err != nil {
		slog.Error("failed to encode snapshot", "error", err)
		return
	}
	h.mu.Lock()
	h.snapshot = data
	h.polling = s.Status.Polling()
	h.mu.Unlock()
	h.broadcast(data)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ClientCount() >= h.maxClients {
		http.Error(w, "maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{id: uuid.New(), send: make(chan []byte, sendBuffer)}
	h.register(c)
	defer h.unregister(c)

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	// Reading is only needed to notice disconnects and pongs.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Warn("websocket read error", "client", c.id, "error", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		case <-h.stop:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.snapshot != nil {
		c.send <- h.snapshot
	}
	if h.polling {
		if data, err := json.Marshal(Message{Type: MessageCommand, Command: CommandWakeLockAcquire}); err == nil {
			c.send <- data
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Info("client connected", "client", c.id, "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	slog.Info("client disconnected", "client", c.id, "clients", n)
}

// broadcast never blocks. A client whose buffer is full misses the message.
func (h *Hub) broadcast(data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients {
		select {
		case c.send <- data:
			delivered++
		default:
			slog.Warn("client send buffer full, dropping message", "client", c.id)
		}
	}
	return delivered
}

func (h *Hub) command(msg Message) int {
	msg.Type = MessageCommand
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to encode command", "command", msg.Command, "error", err)
		return 0
	}
	return h.broadcast(data)
}
