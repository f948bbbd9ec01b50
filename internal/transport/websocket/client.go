package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Client wraps one socket. gorilla connections allow a single concurrent
// writer, so every write goes through mu.
type Client struct {
	conn   *websocket.Conn
	userID int64
	mu     sync.Mutex
	cancel func()
}

func (c *Client) Send(msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *Client) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *Client) closeNormal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// ConnectionManager keeps one live stream per user. A new stream replaces
// and cancels the user's previous one.
type ConnectionManager struct {
	clients map[int64]*Client
	mu      sync.Mutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{clients: make(map[int64]*Client)}
}

func (cm *ConnectionManager) Add(c *Client) {
	cm.mu.Lock()
	old, exists := cm.clients[c.userID]
	cm.clients[c.userID] = c
	cm.mu.Unlock()

	if exists {
		old.cancel()
		old.conn.Close()
	}
}

// RemoveIfMatching avoids dropping a newer stream while cleaning up an older
// one.
func (cm *ConnectionManager) RemoveIfMatching(c *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if current, exists := cm.clients[c.userID]; exists && current == c {
		delete(cm.clients, c.userID)
	}
}

func (cm *ConnectionManager) Count() int {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return len(cm.clients)
}
