// Package ws pushes portal events to connected browser sessions over
// websockets. Delivery is best-effort at-most-once: slow or disconnected
// clients simply miss events.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/handoff-dev/handoff/notify"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The portal is served same-origin; share links carry their own token
		return true
	},
	Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
		slog.Warn("WebSocket upgrade failed", "status", status, "error", reason)
	},
}

// client is one connected browser session, subscribed to a single project
type client struct {
	conn      *websocket.Conn
	projectID uuid.UUID
	send      chan []byte
}

// Hub fans project events out to subscribed sessions. It implements
// notify.Notifier.
type Hub struct {
	mu         sync.RWMutex
	projects   map[uuid.UUID]map[*client]bool
	register   chan *client
	unregister chan *client
	events     chan notify.Event
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		projects:   make(map[uuid.UUID]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		events:     make(chan notify.Event, 64),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and event fan-out until Stop is called.
// Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if _, ok := h.projects[c.projectID]; !ok {
				h.projects[c.projectID] = make(map[*client]bool)
			}
			h.projects[c.projectID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.projects[c.projectID]; ok {
				if _, ok := room[c]; ok {
					delete(room, c)
					close(c.send)
					if len(room) == 0 {
						delete(h.projects, c.projectID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.events:
			h.dispatch(event)

		case <-h.done:
			h.mu.Lock()
			for _, room := range h.projects {
				for c := range room {
					close(c.send)
				}
			}
			h.projects = make(map[uuid.UUID]map[*client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts down the hub and disconnects all sessions
func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues an event for fan-out. It never blocks: when the event
// buffer is full the event is dropped, which is within the at-most-once
// contract.
func (h *Hub) Publish(event notify.Event) {
	select {
	case h.events <- event:
	default:
		slog.Warn("Notification dropped, event buffer full",
			"event_type", event.Type,
			"project_id", event.ProjectID)
	}
}

func (h *Hub) dispatch(event notify.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal notification", "event_type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.projects[event.ProjectID] {
		select {
		case c.send <- payload:
		default:
			// Slow consumer, drop the event for this session
		}
	}
}

// ServeWS upgrades the request and subscribes the session to the given
// project's events.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		http.Error(w, "invalid or missing project_id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}

	c := &client{
		conn:      conn,
		projectID: projectID,
		send:      make(chan []byte, sendBuffer),
	}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

// writePump drains the send channel to the connection and keeps it alive
// with pings
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames (the portal only pushes) and detects
// disconnects
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
