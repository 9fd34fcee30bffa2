// Package ws is the transport adapter: long-lived websocket connections
// carrying named JSON events, with logical room membership and targeted emit.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Host and players connect from LAN addresses the server advertises.
		return true
	},
}

// Envelope is the wire frame for every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Handler receives inbound traffic. HandleDisconnect fires before the
// connection is detached from its rooms.
type Handler interface {
	HandleEvent(connID, event string, data json.RawMessage)
	HandleDisconnect(connID string)
}

// Hub tracks live connections and their logical room membership.
type Hub struct {
	mu      sync.RWMutex
	conns   map[string]*conn
	rooms   map[string]map[string]*conn // room code -> conn ID -> conn
	handler Handler
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		conns: make(map[string]*conn),
		rooms: make(map[string]map[string]*conn),
		log:   log,
	}
}

// SetHandler wires the inbound dispatcher. Must be called before ServeHTTP.
func (h *Hub) SetHandler(handler Handler) { h.handler = handler }

// ServeHTTP upgrades the request and pumps the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sock, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade", "error", err)
		return
	}

	c := &conn{
		id:   uuid.NewString(),
		sock: sock,
		send: make(chan []byte, 64),
	}

	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	h.log.Info("connection attached", "conn", c.id)

	go c.writePump()
	h.readPump(c)
}

func (h *Hub) readPump(c *conn) {
	defer func() {
		h.handler.HandleDisconnect(c.id)
		h.detach(c)
	}()

	for {
		var env Envelope
		if err := c.sock.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read", "conn", c.id, "error", err)
			}
			return
		}
		h.handler.HandleEvent(c.id, env.Event, env.Data)
	}
}

func (h *Hub) detach(c *conn) {
	h.mu.Lock()
	delete(h.conns, c.id)
	for code, members := range h.rooms {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
	h.mu.Unlock()

	c.close()
	h.log.Info("connection detached", "conn", c.id)
}

// JoinRoom adds a connection to a logical room.
func (h *Hub) JoinRoom(connID, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[connID]
	if !ok {
		return
	}
	if h.rooms[code] == nil {
		h.rooms[code] = make(map[string]*conn)
	}
	h.rooms[code][connID] = c
}

// DropRoom removes a logical room and all its memberships. The connections
// themselves stay open.
func (h *Hub) DropRoom(code string) {
	h.mu.Lock()
	delete(h.rooms, code)
	h.mu.Unlock()
}

// LeaveRoom removes a connection from a logical room.
func (h *Hub) LeaveRoom(connID, code string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[code]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
}

// EmitToConn sends one named event to one connection.
func (h *Hub) EmitToConn(connID, event string, data any) {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if ok {
		c.enqueue(marshalEnvelope(event, data, h.log))
	}
}

// EmitToRoom broadcasts one named event to every member of a logical room.
func (h *Hub) EmitToRoom(code, event string, data any) {
	payload := marshalEnvelope(event, data, h.log)

	h.mu.RLock()
	members := make([]*conn, 0, len(h.rooms[code]))
	for _, c := range h.rooms[code] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		c.enqueue(payload)
	}
}

// Close drops every connection, for shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[string]*conn)
	h.rooms = make(map[string]map[string]*conn)
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

func marshalEnvelope(event string, data any, log *slog.Logger) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Error("marshal event payload", "event", event, "error", err)
		raw = []byte("null")
	}
	out, _ := json.Marshal(Envelope{Event: event, Data: raw})
	return out
}
