// Package websocket implements the direct message relay: one hub, one
// client per live connection, keyed by profile id.
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Message is the wire form of a relayed direct message.
type Message struct {
	Type       string    `json:"type"`
	ID         int64     `json:"id,omitempty"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// deleteNotice is the wire form of a relayed message deletion.
type deleteNotice struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

// event pairs one wire payload with the two profiles it fans out to.
type event struct {
	senderID   int64
	receiverID int64
	payload    any
}

// Hub maintains the set of active clients and relays messages between them
type Hub struct {
	// Registered clients organized by profile ID
	clients map[int64]map[*Client]bool

	// Channel for events ready to fan out
	relay chan *event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Logger for Hub operations
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		relay:      make(chan *event),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub, handling client registrations and message fan-out.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case e := <-h.relay:
			h.relayEvent(e)
		}
	}
}

// ClientsCount returns the number of live connections for a profile.
func (h *Hub) ClientsCount(profileID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[profileID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.profileID]; !ok {
		h.clients[client.profileID] = make(map[*Client]bool)
	}
	h.clients[client.profileID][client] = true

	h.logger.Info().
		Int64("profileId", client.profileID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.profileID][client]; !ok {
		return
	}
	delete(h.clients[client.profileID], client)
	close(client.send)
	if len(h.clients[client.profileID]) == 0 {
		delete(h.clients, client.profileID)
	}

	h.logger.Info().
		Int64("profileId", client.profileID).
		Msg("client unregistered")
}

// relayEvent delivers a frame to the sender's and receiver's live
// connections. A profile without connections is simply skipped.
func (h *Hub) relayEvent(e *event) {
	data, err := json.Marshal(e.payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal frame")
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, 2)
	for client := range h.clients[e.senderID] {
		targets = append(targets, client)
	}
	if e.receiverID != e.senderID {
		for client := range h.clients[e.receiverID] {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	var stalled []*Client
	for _, client := range targets {
		select {
		case client.send <- data:
		default:
			// full send buffer means a slow or dead connection
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		h.unregisterClient(client)
	}
}
