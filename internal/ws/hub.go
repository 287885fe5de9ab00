package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/darzibook/api/internal/model"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// businessEvent is an internal struct for routing events to specific businesses
type businessEvent struct {
	BusinessID string
	Event      Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by business ID
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *businessEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *businessEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.businessID] == nil {
				h.rooms[client.businessID] = make(map[*Client]bool)
			}
			h.rooms[client.businessID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.businessID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.businessID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.Lock()
			clients := h.rooms[event.BusinessID]

			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.mu.Unlock()
				continue
			}

			// Send to all clients in this business's room
			for client := range clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[event.BusinessID], client)
					if len(h.rooms[event.BusinessID]) == 0 {
						delete(h.rooms, event.BusinessID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToBusiness sends an event to all clients subscribed to a specific business
// This is the public API for handlers to broadcast events
func (h *Hub) BroadcastToBusiness(businessID string, event Event) {
	h.broadcast <- &businessEvent{
		BusinessID: businessID,
		Event:      event,
	}
}

// OrderChanged broadcasts the full updated order so every connected screen
// converges on the same state, whether the write that caused it succeeded
// or was rolled back.
func (h *Hub) OrderChanged(businessID string, o model.Order) {
	payload, err := json.Marshal(o)
	if err != nil {
		log.Printf("ERROR: marshaling order event: %v", err)
		return
	}
	h.BroadcastToBusiness(businessID, Event{Type: "order.changed", Payload: payload})
}
