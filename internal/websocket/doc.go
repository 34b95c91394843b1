// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

/*
Package websocket pushes snapshot events to connected clients.

A selection front end keeps a socket open on /ws and refreshes its title
list and cached recommendations when a new snapshot is published, instead
of polling /api/v1/status.

	┌──────────┐
	│   Hub    │ ← RebuildService reports each published snapshot
	└────┬─────┘
	     │
	┌────┴─────┬─────────┐
	│ Client1  │ Client2 │ ...
	└──────────┴─────────┘

Each client runs a read pump (pings, close detection) and a write pump
(events, keepalive pings). A client whose send buffer is full is dropped;
the front end reconnects and reads /api/v1/status.

Message types:

  - snapshot_published: {version, built_at, build_duration_ms, titles, users, defined_pairs, cause}
  - ping / pong: application level keepalive initiated by the client

The hub runs under the supervisor tree through
services.WebSocketHubService.
*/
package websocket
