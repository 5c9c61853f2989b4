package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"emotion-worker-go/internal/models"
)

const (
	clientBuffer = 16
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
)

type client struct {
	id   string
	send chan []byte
}

// Broker pushes detection events to websocket clients as JSON text messages.
// A client that falls behind misses events rather than slowing the pipeline.
type Broker struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
}

func NewBroker() *Broker {
	return &Broker{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Emit sends the event to every connected client without blocking.
func (b *Broker) Emit(event models.DetectionEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal detection event")
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, c := range b.clients {
		select {
		case c.send <- data:
		default:
			log.Debug().Str("client_id", c.id).Msg("Event client too slow, dropping event")
		}
	}
}

// Clients returns the number of connected clients
func (b *Broker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeWS upgrades the request and streams events until the client leaves
// or the broker is closed.
func (b *Broker) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := &client{id: uuid.NewString(), send: make(chan []byte, clientBuffer)}
	if !b.register(c) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		conn.Close()
		return
	}
	log.Info().Str("client_id", c.id).Str("remote_addr", r.RemoteAddr).Msg("Event client connected")

	go b.readPump(conn, c)
	b.writePump(conn, c)
}

func (b *Broker) register(c *client) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.clients[c.id] = c
	return true
}

func (b *Broker) unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.clients[id]; ok {
		delete(b.clients, id)
		close(c.send)
		log.Info().Str("client_id", id).Msg("Event client disconnected")
	}
}

// readPump only watches for the client going away; inbound messages are ignored.
func (b *Broker) readPump(conn *websocket.Conn, c *client) {
	defer b.unregister(c.id)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Broker) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				b.unregister(c.id)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				b.unregister(c.id)
				return
			}
		}
	}
}

// Close disconnects every client and refuses new ones.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, c := range b.clients {
		delete(b.clients, id)
		close(c.send)
	}
}
