package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/recruitportal/internal/app/models"
)

// Hub fans committed application events out to connected reviewers.
// The clients map is owned by the Run goroutine.
type Hub struct {
	// Registered clients organized by subscribed track
	clients map[models.Track]map[*Client]bool

	// Events waiting to be delivered
	broadcast chan models.ApplicationEvent

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Connected client count, readable outside Run
	countMu sync.RWMutex
	count   int

	done chan struct{}

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan models.ApplicationEvent, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[models.Track]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles client registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// Publish queues an event for delivery. It never blocks the caller: when the
// hub is stopped or backed up the event is dropped and logged.
func (h *Hub) Publish(event models.ApplicationEvent) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().
			Str("type", event.Type).
			Str("applicationID", event.ApplicationID.String()).
			Msg("Live feed backlog full, dropping event")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.countMu.RLock()
	defer h.countMu.RUnlock()
	return h.count
}

func (h *Hub) registerClient(client *Client) {
	for track := range client.tracks {
		if _, ok := h.clients[track]; !ok {
			h.clients[track] = make(map[*Client]bool)
		}
		h.clients[track][client] = true
	}
	h.addCount(1)

	h.logger.Info().
		Str("userID", client.userID.String()).
		Int("tracks", len(client.tracks)).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	removed := false
	for track := range client.tracks {
		if set, ok := h.clients[track]; ok && set[client] {
			delete(set, client)
			removed = true
			if len(set) == 0 {
				delete(h.clients, track)
			}
		}
	}
	if !removed {
		return
	}

	close(client.send)
	h.addCount(-1)
	h.logger.Info().Str("userID", client.userID.String()).Msg("Client unregistered")
}

// broadcastEvent delivers the event to every client subscribed to its track whose
// purview covers the application
func (h *Hub) broadcastEvent(event models.ApplicationEvent) {
	clients, ok := h.clients[event.Track]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal event for broadcast")
		return
	}

	var slow []*Client
	delivered := 0
	for client := range clients {
		if !client.canSee(event) {
			continue
		}
		select {
		case client.send <- data:
			delivered++
		default:
			slow = append(slow, client)
		}
	}

	for _, client := range slow {
		h.logger.Warn().Str("userID", client.userID.String()).Msg("Dropping slow live feed client")
		h.unregisterClient(client)
	}

	h.logger.Debug().
		Str("track", string(event.Track)).
		Str("type", event.Type).
		Int("delivered", delivered).
		Msg("Event broadcasted")
}

func (h *Hub) closeAll() {
	seen := make(map[*Client]bool)
	for _, set := range h.clients {
		for client := range set {
			if !seen[client] {
				seen[client] = true
				close(client.send)
			}
		}
	}
	h.clients = make(map[models.Track]map[*Client]bool)
	h.countMu.Lock()
	h.count = 0
	h.countMu.Unlock()
}

func (h *Hub) addCount(delta int) {
	h.countMu.Lock()
	h.count += delta
	h.countMu.Unlock()
}
