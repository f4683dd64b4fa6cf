package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const maxMessageSize = 4096

// Handler receives inbound messages and disconnect notifications. Calls for
// different connections may arrive concurrently.
type Handler interface {
	HandleMessage(connID string, msg ClientMessage)
	HandleDisconnect(connID string)
}

// Client represents a connected WebSocket client
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// Hub manages all WebSocket connections and the per-session broadcast groups
type Hub struct {
	Handler    Handler
	Register   chan *Client
	Unregister chan *Client

	clients map[string]*Client
	groups  map[string]map[string]*Client
	done    chan struct{}
	log     logrus.FieldLogger
	mu      sync.RWMutex
}

// NewHub creates a new Hub
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		groups:     make(map[string]map[string]*Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.log.WithField("conn", client.ID).Debug("client connected")

		case client := <-h.Unregister:
			if h.remove(client) && h.Handler != nil {
				h.Handler.HandleDisconnect(client.ID)
			}

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			h.groups = make(map[string]map[string]*Client)
			h.mu.Unlock()
			return
		}
	}
}

// remove drops the client from the hub and every group it joined
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return false
	}
	delete(h.clients, client.ID)
	close(client.Send)
	for sessionID, members := range h.groups {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.groups, sessionID)
		}
	}
	h.log.WithField("conn", client.ID).Debug("client disconnected")
	return true
}

// Send sends a message to a specific connection
func (h *Hub) Send(connID string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("marshal message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.clients[connID]; ok {
		h.deliver(client, data)
	}
}

// Broadcast sends a message to every member of a session
func (h *Hub) Broadcast(sessionID string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("marshal broadcast")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.groups[sessionID] {
		h.deliver(client, data)
	}
}

// deliver queues data without blocking; callers hold h.mu
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.log.WithField("conn", client.ID).Warn("client send buffer full, dropping message")
	}
}

// AddToGroup subscribes a connection to a session's broadcasts
func (h *Hub) AddToGroup(sessionID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[connID]
	if !ok {
		return
	}
	members, ok := h.groups[sessionID]
	if !ok {
		members = make(map[string]*Client)
		h.groups[sessionID] = members
	}
	members[connID] = client
}

// DropGroup forgets a session's broadcast group
func (h *Hub) DropGroup(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, sessionID)
}

// NewUpgrader accepts the listed origins, or any origin when none are listed
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
		},
	}
}

// ServeWS upgrades the request and starts the client's pumps
func (h *Hub) ServeWS(upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.WithError(err).Warn("websocket upgrade failed")
			return
		}

		client := &Client{
			ID:   uuid.NewString(),
			Hub:  h,
			Conn: conn,
			Send: make(chan []byte, 256),
		}

		select {
		case h.Register <- client:
		case <-h.done:
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}

// ReadPump pumps messages from the websocket connection to the handler
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	log := c.Hub.log.WithField("conn", c.ID)

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("websocket error")
			}
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.WithError(err).Warn("error parsing message")
			c.Hub.Send(c.ID, NewErrorMessage("bad_message", err.Error()))
			continue
		}

		if c.Hub.Handler != nil {
			c.Hub.Handler.HandleMessage(c.ID, clientMsg)
		}
	}
}

// WritePump drains the client's queue onto the connection until the hub
// closes it.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.Hub.log.WithError(err).WithField("conn", c.ID).Debug("websocket write failed")
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
