package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go-resto-ops/internal/events"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Hub fans events out to every connected dashboard websocket.
type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	log        *zap.Logger
	done       chan struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
		log:        log,
		done:       make(chan struct{}),
	}
}

// Run serves register/unregister/broadcast until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case conn := <-h.Register:
			h.add(conn)
		case conn := <-h.Unregister:
			h.remove(conn)
		case message := <-h.Broadcast:
			h.send(message)
		}
	}
}

// Join registers conn and reports false once the hub has stopped.
func (h *Hub) Join(conn *websocket.Conn) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters conn. After the hub stopped it returns immediately.
func (h *Hub) Leave(conn *websocket.Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mutex.Lock()
	h.Clients[conn] = true
	n := len(h.Clients)
	h.mutex.Unlock()
	h.log.Debug("ws client connected", zap.Int("clients", n))
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.Clients[conn] {
		delete(h.Clients, conn)
		conn.Close()
	}
}

// send writes to every client; a failed write drops that client.
func (h *Hub) send(message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.Clients {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.log.Debug("ws write failed, dropping client", zap.Error(err))
			delete(h.Clients, conn)
			conn.Close()
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.Clients {
		delete(h.Clients, conn)
		conn.Close()
	}
}

func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish implements events.Publisher. It never blocks the caller: when the
// broadcast buffer is full the event is dropped and logged.
func (h *Hub) Publish(_ context.Context, topic, key string, payload any) error {
	msg, err := json.Marshal(events.Envelope{Type: topic, Key: key, Data: payload})
	if err != nil {
		return err
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn("ws broadcast buffer full, dropping event", zap.String("topic", topic))
	}
	return nil
}
