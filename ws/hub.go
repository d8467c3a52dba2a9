package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// Hub tracks live relay connections. Broadcast iterates a snapshot of
// the connection set per incoming frame; there is no queueing, a slow
// consumer is throttled only by the transport itself.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string      // conn -> userID
	writeMu map[*websocket.Conn]*sync.Mutex // per-connection write locks
}

func NewHub() *Hub {
	return &Hub{
		clients: map[*websocket.Conn]string{},
		writeMu: map[*websocket.Conn]*sync.Mutex{},
	}
}

// Count returns the number of currently connected sockets
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Serve registers the connection, greets it and relays frames until
// the socket closes. It blocks for the lifetime of the connection. The
// caller must have authenticated userID already, the hub trusts it.
func (h *Hub) Serve(conn *websocket.Conn, userID string) {
	h.mu.Lock()
	h.clients[conn] = userID
	h.writeMu[conn] = &sync.Mutex{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.writeMu, conn)
		h.mu.Unlock()

		conn.Close()
	}()

	h.send(conn, &Outbound{
		Type:    "system",
		Content: "Connected to chat server",
		UserID:  "system",
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Debug("Relay connection closed unexpectedly", zap.Error(err), zap.String("userID", userID))
			}
			return
		}

		var frame Inbound
		if err := json.Unmarshal(data, &frame); err != nil {
			h.send(conn, &Outbound{Type: "error", Error: "Invalid message format"})
			continue
		}

		switch frame.Type {
		case "ping":
			h.send(conn, &Outbound{Type: "pong"})
		case "message":
			h.broadcast(conn, &Outbound{
				Type:        "message",
				Content:     frame.Content,
				MessageType: frame.MessageType,
				Metadata:    frame.Metadata,
				UserID:      userID,
				Timestamp:   time.Now().UTC().Format(time.RFC3339),
			})
		default:
			h.send(conn, &Outbound{Type: "error", Error: "Invalid message format"})
		}
	}
}

// broadcast delivers a frame to every open connection except the sender
func (h *Hub) broadcast(sender *websocket.Conn, frame *Outbound) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		if c != sender {
			conns = append(conns, c)
		}
	}
	h.mu.Unlock()

	for _, c := range conns {
		h.send(c, frame)
	}
}

func (h *Hub) send(conn *websocket.Conn, v any) {
	h.mu.Lock()
	mu := h.writeMu[conn]
	h.mu.Unlock()

	if mu == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(v); err != nil {
		zap.L().Debug("Failed to write relay frame", zap.Error(err))
	}
}
