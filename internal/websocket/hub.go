// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/cinecorr/internal/logging"
	"github.com/tomtom215/cinecorr/internal/metrics"
	"github.com/tomtom215/cinecorr/internal/recommend"
)

// Message types.
const (
	MessageTypeSnapshot = "snapshot_published"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
)

// Message is one frame sent to or received from a client.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// SnapshotEvent is the data of a snapshot_published message.
type SnapshotEvent struct {
	Version         int64     `json:"version"`
	BuiltAt         time.Time `json:"built_at"`
	BuildDurationMS int64     `json:"build_duration_ms"`
	Titles          int       `json:"titles"`
	Users           int       `json:"users"`
	DefinedPairs    int       `json:"defined_pairs"`
	Cause           string    `json:"cause"`
}

// Hub tracks connected clients and fans events out to them.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	broadcast chan Message
}

// NewHub creates a Hub. Call RunWithContext to start delivering events.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan Message, 64),
	}
}

// RunWithContext delivers queued events until ctx is done, then closes
// every client.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			n := h.ClientCount()
			h.closeAllClients()
			logging.Info().
				Str("component", "websocket-hub").
				Int("clients_closed", n).
				Msg("websocket hub stopped")
			return ctx.Err()

		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// SnapshotPublished queues a snapshot_published event. It never blocks;
// the event is dropped when the queue is full.
func (h *Hub) SnapshotPublished(snap *recommend.Snapshot, cause string) {
	ev := SnapshotEvent{
		Version:         snap.Version,
		BuiltAt:         snap.BuiltAt,
		BuildDurationMS: snap.BuildDuration.Milliseconds(),
		Titles:          snap.Matrix.NumTitles(),
		Users:           snap.Matrix.NumUsers(),
		DefinedPairs:    snap.Similarity.PairCount(),
		Cause:           cause,
	}

	select {
	case h.broadcast <- Message{Type: MessageTypeSnapshot, Data: ev}:
	default:
		metrics.WSEventsDropped.Inc()
		logging.Warn().Int64("version", ev.Version).Msg("broadcast queue full, dropping snapshot event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSClients.Set(float64(n))
	logging.Debug().Uint64("client", c.id).Int("total_clients", n).Msg("websocket client connected")
}

// unregister removes c and closes its send channel. Safe to call more
// than once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSClients.Set(float64(n))
	logging.Debug().Uint64("client", c.id).Int("total_clients", n).Msg("websocket client disconnected")
}

// sendTo queues msg for c if it is still registered.
func (h *Hub) sendTo(c *Client, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// broadcastToClients delivers msg in client ID order and drops clients
// whose buffer is full.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sortedClients() {
		select {
		case c.send <- msg:
			metrics.WSEventsSent.Inc()
		default:
			metrics.WSEventsDropped.Inc()
			close(c.send)
			delete(h.clients, c)
		}
	}
	metrics.WSClients.Set(float64(len(h.clients)))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sortedClients() {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.WSClients.Set(0)
}

// sortedClients requires h.mu.
func (h *Hub) sortedClients() []*Client {
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
