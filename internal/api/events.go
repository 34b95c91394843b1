// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/cinecorr/internal/logging"
	"github.com/tomtom215/cinecorr/internal/models"
	ws "github.com/tomtom215/cinecorr/internal/websocket"
)

// EnableEvents serves snapshot events from hub on GET /ws. Origins are
// checked against allowedOrigins; "*" allows any.
func (h *Handler) EnableEvents(hub *ws.Hub, allowedOrigins []string) {
	h.hub = hub
	h.wsOrigins = allowedOrigins
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkOrigin rejects requests without an Origin header; browsers always
// send one.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Ctx(r.Context()).Warn().Msg("websocket rejected: missing Origin header")
		return false
	}
	for _, allowed := range h.wsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Ctx(r.Context()).Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket rejected: origin not allowed")
	return false
}

// Events handles GET /ws.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, &models.APIError{
			Code:    models.ErrCodeNotReady,
			Message: "snapshot events are not enabled",
		}, nil)
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.hub.Attach(conn)
}
