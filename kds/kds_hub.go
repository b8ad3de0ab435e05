package kds

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-order/utils"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// client serializes writes to one connection; gorilla allows a single
// concurrent writer.
type client struct {
	conn    *websocket.Conn
	role    string
	writeMu sync.Mutex
}

func (c *client) send(data []byte, wait time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub keeps the connected kitchen displays and fans events out to them.
type Hub struct {
	// WriteWait bounds a single write to one display.
	WriteWait time.Duration

	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{WriteWait: writeWait, clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = &client{conn: conn, role: role}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mutex.Unlock()
	if ok {
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) snapshot() []*client {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	out := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Publish sends the event to every connected client in parallel, so one
// stalled display costs at most WriteWait. Clients whose write fails are
// dropped.
func (h *Hub) Publish(_ context.Context, event string, payload []byte) error {
	if !json.Valid(payload) {
		quoted, err := json.Marshal(string(payload))
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", event, err)
		}
		payload = quoted
	}
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("encode %s message: %w", event, err)
	}

	var wg sync.WaitGroup
	for _, c := range h.snapshot() {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			if err := c.send(data, h.WriteWait); err != nil {
				utils.ErrorLogger.WithFields(logrus.Fields{"role": c.role, "event": event}).
					Errorf("Dropping kitchen client: %v", err)
				h.Unregister(c.conn)
			}
		}(c)
	}
	wg.Wait()
	return nil
}
