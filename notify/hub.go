package notify

import (
	"encoding/json"
	"sync"

	"github.com/apex/log"
)

// Hub manages WebSocket connections and broadcasts notification events to
// every connected client.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound events to broadcast
	broadcast chan []byte

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	mutex sync.RWMutex

	connectedClients int
}

// NewHub creates a new notification hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Notify implements Notifier by broadcasting the event to all clients.
func (h *Hub) Notify(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Errorf("Failed to serialize notification: %v", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		log.Warn("Notification broadcast buffer full, dropping event")
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			h.clients[client] = true
			h.connectedClients = len(h.clients)
			h.mutex.Unlock()
			log.Infof("Notification client connected. Total clients: %d", h.connectedClients)

		case client := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connectedClients = len(h.clients)
			}
			h.mutex.Unlock()
			log.Infof("Notification client disconnected. Total clients: %d", h.connectedClients)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.connectedClients = len(h.clients)
			h.mutex.Unlock()
		}
	}
}
