package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket" //nolint:staticcheck // TODO: migrate to github.com/coder/websocket

	"github.com/scrypster/banyan/internal/auth"
)

// ErrNoConnections is returned by Push when the person has no live
// connections.
var ErrNoConnections = errors.New("no live connections")

// WebSocketHub manages WebSocket connections grouped per person, so
// notifications reach only their recipient's devices.
type WebSocketHub struct {
	tokens     *auth.Manager
	clients    map[clientInterface]string
	register   chan registration
	unregister chan clientInterface
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
}

type registration struct {
	client   clientInterface
	personID string
}

// clientInterface allows for both real clients and mock clients.
type clientInterface interface {
	getSendChannel() chan []byte
	close()
}

// Client represents a WebSocket connection.
type Client struct {
	hub  *WebSocketHub
	conn *websocket.Conn //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	send chan []byte
}

func (c *Client) getSendChannel() chan []byte {
	return c.send
}

func (c *Client) close() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}
}

// NewWebSocketHub creates a new WebSocket hub. tokens authenticates
// connection upgrades.
func NewWebSocketHub(tokens *auth.Manager) *WebSocketHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocketHub{
		tokens:     tokens,
		clients:    make(map[clientInterface]string),
		register:   make(chan registration),
		unregister: make(chan clientInterface),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the hub's connection bookkeeping loop.
func (h *WebSocketHub) Run() {
	for {
		select {
		case reg := <-h.register:
			h.mu.Lock()
			h.clients[reg.client] = reg.personID
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client connected for %s (total: %d)", reg.personID, count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.getSendChannel())
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected (total: %d)", count)

		case <-h.ctx.Done():
			log.Println("WebSocket hub stopping...")
			return
		}
	}
}

// Stop gracefully shuts down the hub.
func (h *WebSocketHub) Stop() {
	h.cancel()

	h.mu.Lock()
	for client := range h.clients {
		close(client.getSendChannel())
		client.close()
	}
	h.clients = make(map[clientInterface]string)
	h.mu.Unlock()
}

// Push sends a payload to every live connection of one person. Returns
// ErrNoConnections when the person has none.
func (h *WebSocketHub) Push(personID string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// Full lock: slow clients are dropped from the map below.
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := false
	for client, owner := range h.clients {
		if owner != personID {
			continue
		}
		select {
		case client.getSendChannel() <- data:
			delivered = true
		default:
			// Client's send channel is full, disconnect them.
			close(client.getSendChannel())
			delete(h.clients, client)
		}
	}

	if !delivered {
		return ErrNoConnections
	}
	return nil
}

// ServeHTTP handles WebSocket upgrade requests. The bearer token rides in
// the "token" query parameter because browsers cannot set headers on
// WebSocket upgrades.
func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	if err != nil {
		log.Printf("ERROR: WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.register <- registration{client: client, personID: claims.Subject}

	go client.writePump()
	go client.readPump()
}

// writePump sends messages to the WebSocket connection.
func (c *Client) writePump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}()

	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		cancel()

		if err != nil {
			log.Printf("ERROR: WebSocket write failed: %v", err)
			return
		}
	}
}

// readPump drains messages to detect disconnections.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}()

	for {
		_, _, err := c.conn.Read(context.Background())
		if err != nil {
			return
		}
	}
}

// MockClient is a mock client for testing.
type MockClient struct {
	SendChan chan []byte
}

func (m *MockClient) getSendChannel() chan []byte {
	return m.SendChan
}

func (m *MockClient) close() {}

// RegisterForTest attaches a mock client to a person without a network
// connection.
func (h *WebSocketHub) RegisterForTest(client clientInterface, personID string) {
	h.mu.Lock()
	h.clients[client] = personID
	h.mu.Unlock()
}
