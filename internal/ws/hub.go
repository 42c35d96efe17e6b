package ws

import "sync"

// Hub manages connected clients and conversation rooms
type Hub struct {
	clients map[string]*Client         // userID -> Client
	rooms   map[string]map[string]bool // conversationID -> map[userID]bool
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]bool),
	}
}

// AddClient registers the connection, displacing and closing any previous
// connection of the same user.
func (h *Hub) AddClient(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.clients[userID]; ok && prev != c {
		prev.close()
	}
	h.clients[userID] = c
}

// RemoveClient detaches the given connection. A stale cleanup racing a
// reconnect is a no-op: only the currently registered client is removed.
func (h *Hub) RemoveClient(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	current, ok := h.clients[userID]
	if !ok || current != c {
		return
	}
	current.close()
	delete(h.clients, userID)
	for _, members := range h.rooms {
		delete(members, userID)
	}
}

func (h *Hub) JoinRoom(conversationID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[string]bool)
	}
	h.rooms[conversationID][userID] = true
}

func (h *Hub) LeaveRoom(conversationID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[conversationID]; ok {
		delete(members, userID)
	}
}

// Broadcast delivers the payload to every member of the room. Slow clients
// are skipped, not waited for.
func (h *Hub) Broadcast(conversationID string, message any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if members, ok := h.rooms[conversationID]; ok {
		for userID := range members {
			if client, ok := h.clients[userID]; ok {
				client.Send(message)
			}
		}
	}
}
