package ws

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Client represents a connected websocket client
type Client struct {
	UserID string
	Conn   *websocket.Conn

	send     chan any
	closeOne sync.Once
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		send:   make(chan any, 16),
	}
}

func (c *Client) Send(msg any) {
	select {
	case c.send <- msg:
	default:
		// drop if blocked
	}
}

func (c *Client) WritePump() {
	for msg := range c.send {
		if err := c.Conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *Client) close() {
	c.closeOne.Do(func() { close(c.send) })
}
