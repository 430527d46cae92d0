package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024
)

// connection is a single live websocket client. A user may hold several
// at once (multiple devices); each gets its own buffered send queue.
type connection struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub is the process-wide room registry: user id -> set of open
// connections. Rooms are ephemeral and rebuilt from scratch on every
// reconnect; nothing here is ever persisted.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]map[*connection]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int64]map[*connection]struct{}),
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.userID]
	if !ok {
		room = make(map[*connection]struct{})
		h.rooms[c.userID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.userID]
	if !ok {
		return
	}
	if _, member := room[c]; !member {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.userID)
	}
}

// SendToUser delivers one event to every open connection in the user's
// room. Non-blocking and best-effort: a slow connection is skipped.
// Returns true when at least one connection took the event, so callers
// can fall back to the persisted history for offline users.
func (h *Hub) SendToUser(userID int64, event *Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for c := range h.rooms[userID] {
		select {
		case c.send <- data:
			delivered = true
		default:
			// Client too slow — skip; the persisted log covers the gap
		}
	}
	return delivered
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[userID]) > 0
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms)
}

// ServeConn registers an authenticated connection and blocks until it
// disconnects
func (h *Hub) ServeConn(conn *websocket.Conn, userID int64) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 256),
	}

	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		if msg.Type == "ping" {
			h.SendToUser(c.userID, &Event{Channel: EventPong})
		}
		// Everything else is server->client only; inbound payloads are
		// ignored rather than fanned out.
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
