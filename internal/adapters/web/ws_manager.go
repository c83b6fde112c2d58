package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager pushes every snapshot published to the Store to the connected
// websocket clients.
type WSManager struct {
	Store *Store

	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
}

// NewWSManager creates a manager. allowedOrigins lists the Origin headers
// accepted besides same-origin requests; empty means any origin.
func NewWSManager(store *Store, allowedOrigins ...string) *WSManager {
	m := &WSManager{
		Store:   store,
		clients: make(map[*websocket.Conn]struct{}),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			log.Printf("WebSocket: Rejected origin: %s", origin)
			return false
		},
	}
	return m
}

// Start forwards published snapshots until ctx is cancelled.
func (m *WSManager) Start(ctx context.Context) {
	snaps, unsubscribe := m.Store.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				m.closeAll()
				return
			case snap := <-snaps:
				m.broadcastMessage(WSMessage{Type: "snapshot", Payload: snap})
			}
		}
	}()
}

// HandleWebSocket upgrades the connection and sends the latest snapshot, if
// any, before live updates.
func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.clients[conn] = struct{}{}
	if snap, ok := m.Store.Latest(); ok {
		m.send(conn, WSMessage{Type: "snapshot", Payload: snap})
	}
	m.mu.Unlock()

	// Clients only listen; reading detects the disconnect.
	go func() {
		defer m.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Clients returns the number of connected clients.
func (m *WSManager) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *WSManager) remove(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[conn]; ok {
		delete(m.clients, conn)
		conn.Close()
	}
}

func (m *WSManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		conn.Close()
		delete(m.clients, conn)
	}
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.clients {
		if err := m.write(conn, data); err != nil {
			conn.Close()
			delete(m.clients, conn)
		}
	}
}

// send must be called with mu held.
func (m *WSManager) send(conn *websocket.Conn, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	if err := m.write(conn, data); err != nil {
		conn.Close()
		delete(m.clients, conn)
	}
}

func (m *WSManager) write(conn *websocket.Conn, data []byte) error {
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}
