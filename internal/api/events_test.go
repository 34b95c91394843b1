// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	ws "github.com/tomtom215/cinecorr/internal/websocket"
)

func newEventsServer(t *testing.T, origins []string) (*ws.Hub, string) {
	t.Helper()
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.RunWithContext(ctx) }()

	h := NewHandler(newEngine(t, true), nil)
	h.EnableEvents(hub, origins)
	cfg := DefaultMiddlewareConfig()
	cfg.RateLimitRequests = 0

	srv := httptest.NewServer(NewRouter(h, cfg))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestEvents_Disabled(t *testing.T) {
	rec, env := do(t, newTestRouter(t, true, nil), http.MethodGet, "/ws")
	if rec.Code != http.StatusServiceUnavailable || env.Error == nil {
		t.Errorf("status = %d error = %+v, want 503 envelope", rec.Code, env.Error)
	}
}

func TestEvents_DeliversSnapshot(t *testing.T) {
	hub, url := newEventsServer(t, []string{"https://movies.example"})

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://movies.example"}})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	snap := newEngine(t, true).Snapshot()
	hub.SnapshotPublished(snap, "source_changed")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string           `json:"type"`
		Data ws.SnapshotEvent `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if msg.Type != ws.MessageTypeSnapshot || msg.Data.Cause != "source_changed" || msg.Data.Titles != 3 {
		t.Errorf("message = %+v", msg)
	}
}

func TestEvents_OriginCheck(t *testing.T) {
	_, url := newEventsServer(t, []string{"https://movies.example"})

	tests := []struct {
		name   string
		header http.Header
	}{
		{"missing origin", nil},
		{"foreign origin", http.Header{"Origin": []string{"https://evil.example"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(url, tt.header)
			if err == nil {
				t.Fatal("Dial() succeeded, want handshake failure")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("response = %+v, want 403", resp)
			}
		})
	}
}
