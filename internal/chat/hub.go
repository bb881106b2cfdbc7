package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Client is one websocket connection joined to a document room.
type Client struct {
	ID       string
	Room     int
	Messages chan []byte
}

// Hub fans messages out to the clients joined to each document room.
// Delivery is best effort: a client whose buffer is full misses the push
// and must re-fetch history.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[string]*Client
}

// NewHub creates a new chat hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[int]map[string]*Client)}
}

// Join adds a client to a room and returns it for streaming.
func (h *Hub) Join(room int, clientID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:       clientID,
		Room:     room,
		Messages: make(chan []byte, 64),
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*Client)
	}
	h.rooms[room][clientID] = c
	log.Info().Int("document_id", room).Str("client_id", clientID).Int("room_clients", len(h.rooms[room])).Msg("Chat client joined")
	return c
}

// Leave removes a client and closes its channel.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[c.Room]
	if !ok {
		return
	}
	if _, ok := clients[c.ID]; ok {
		close(c.Messages)
		delete(clients, c.ID)
		if len(clients) == 0 {
			delete(h.rooms, c.Room)
		}
		log.Info().Int("document_id", c.Room).Str("client_id", c.ID).Msg("Chat client left")
	}
}

// Broadcast sends v as JSON to every client in room.
// Non-blocking: drops the message for a client whose buffer is full.
func (h *Hub) Broadcast(room int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal chat message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.rooms[room] {
		select {
		case c.Messages <- data:
		default:
			log.Warn().Str("client_id", c.ID).Int("document_id", room).Msg("Chat client buffer full, dropping message")
		}
	}
}

// ClientCount returns the number of clients joined to room.
func (h *Hub) ClientCount(room int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
