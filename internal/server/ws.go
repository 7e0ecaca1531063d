package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/handsign/internal/store"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DetectionEvent is the message pushed to websocket clients.
type DetectionEvent struct {
	ID        string `json:"id"`
	Alphabet  string `json:"alphabet"`
	Hands     int    `json:"hands"`
	Timestamp int64  `json:"timestamp"`
}

// sendBuffer is how many events may queue for one client before new ones
// are dropped for it.
const sendBuffer = 16

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// writePump is the only writer on the connection.
func (c *hubClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Msg("dropping detections client")
			return
		}
	}
}

// DetectionsHub pushes recognized letters to connected websocket clients.
type DetectionsHub struct {
	clients map[*hubClient]struct{}
	mu      sync.Mutex
}

// NewDetectionsHub creates an empty hub.
func NewDetectionsHub() *DetectionsHub {
	return &DetectionsHub{
		clients: make(map[*hubClient]struct{}),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *DetectionsHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	c := &hubClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Debug().Str("remote", r.RemoteAddr).Msg("detections client connected")

	go c.writePump()
	defer h.remove(c)

	// Reads only detect the close; clients send nothing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Clients returns the number of connected clients.
func (h *DetectionsHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues d for every connected client without waiting on any of
// them. A client whose queue is full misses the event.
func (h *DetectionsHub) Publish(d *store.Detection) {
	msg, err := json.Marshal(DetectionEvent{
		ID:        d.ID,
		Alphabet:  d.Alphabet,
		Hands:     d.Hands,
		Timestamp: d.CreatedAt.UnixMilli(),
	})
	if err != nil {
		log.Error().Err(err).Msg("encode detection event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Debug().Str("alphabet", d.Alphabet).Msg("detections client behind, event dropped")
		}
	}
}

// Close disconnects every client.
func (h *DetectionsHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

func (h *DetectionsHub) remove(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	c.conn.Close()
}
