// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// ErrHubStopped is returned when a connection arrives after shutdown.
var ErrHubStopped = errors.New("websocket hub stopped")

// Message types for WebSocket communication
const (
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeNotification = "notification"
	MessageTypeMessage      = "message"
	MessageTypeUnreadCount  = "unread_count"
	MessageTypeSystem       = "system"
)

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// delivery is a message addressed to a set of users, or to everyone when
// userIDs is nil.
type delivery struct {
	userIDs []string
	message Message
}

// Hub tracks connected clients per user and routes messages to them.
type Hub struct {
	clients    map[*Client]bool
	users      map[string]map[*Client]struct{}
	outbound   chan delivery
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	// done is closed once the Run loop has exited for good.
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		outbound:   make(chan delivery, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		users:      make(map[string]map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

// Done is closed when the hub stops accepting clients.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// attach hands client to the Run loop. It returns false once the hub has
// stopped.
func (h *Hub) attach(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// detach removes client without blocking after shutdown.
func (h *Hub) detach(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// RunWithContext processes registrations and deliveries until ctx is done,
// then closes every client. Lifecycle events are handled before deliveries
// so a message never races its recipient's registration.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case d := <-h.outbound:
			h.deliver(d)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	set, ok := h.users[client.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.users[client.userID] = set
	}
	set[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logging.Debug().Str("user_id", client.userID).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	removed := h.removeLocked(client)
	total := len(h.clients)
	h.mu.Unlock()

	if removed {
		logging.Debug().Str("user_id", client.userID).Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// removeLocked drops client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	if set, ok := h.users[client.userID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.users, client.userID)
		}
	}
	close(client.send)
	metrics.WSConnections.Dec()
	return true
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()
	h.stopOnce.Do(func() { close(h.done) })

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// deliver sends d to its recipients in client ID order. Clients whose send
// buffer is full are disconnected.
func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []*Client
	if d.userIDs == nil {
		targets = make([]*Client, 0, len(h.clients))
		for client := range h.clients {
			targets = append(targets, client)
		}
	} else {
		for _, id := range d.userIDs {
			for client := range h.users[id] {
				targets = append(targets, client)
			}
		}
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].id < targets[j].id
	})

	var slow []*Client
	for _, client := range targets {
		select {
		case client.send <- d.message:
			metrics.WSMessagesSent.Inc()
		default:
			metrics.WSMessagesDropped.Inc()
			slow = append(slow, client)
		}
	}
	for _, client := range slow {
		h.removeLocked(client)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		h.removeLocked(client)
	}
}

func (h *Hub) enqueue(d delivery) bool {
	select {
	case h.outbound <- d:
		return true
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("message_type", d.message.Type).Msg("websocket outbound queue full, dropping message")
		return false
	}
}

// SendToUser queues a message for every connection of userID. It returns
// false when the hub queue is full.
func (h *Hub) SendToUser(userID, messageType string, data interface{}) bool {
	return h.enqueue(delivery{userIDs: []string{userID}, message: Message{Type: messageType, Data: data}})
}

// SendToUsers queues one message for several users.
func (h *Hub) SendToUsers(userIDs []string, messageType string, data interface{}) bool {
	if len(userIDs) == 0 {
		return true
	}
	ids := make([]string, len(userIDs))
	copy(ids, userIDs)
	return h.enqueue(delivery{userIDs: ids, message: Message{Type: messageType, Data: data}})
}

// BroadcastJSON sends a message to every connected client.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) bool {
	return h.enqueue(delivery{message: Message{Type: messageType, Data: data}})
}

// IsOnline reports whether userID has at least one open connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
