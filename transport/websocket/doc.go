// Package websocket provides WebSocket transport for the Pair Drop game.
//
// The websocket package implements:
//   - Session-scoped observer connections
//   - State broadcasting after every change
//   - Placement frames carrying the full outcome
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// A central Hub owns the client registry inside its Run goroutine. Register,
// unregister and broadcast requests all arrive over channels, so callers
// from HTTP handlers never touch the registry directly. Each connection has
// a read pump and a write pump goroutine.
//
// Message Protocol:
//
// Outgoing frames are JSON objects, one per frame:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "placement", "game_state": {...}, "data": {...}}
//
// The placement data is the engine's PlacementOutcome, listing the cleared
// cells in resolution order. Incoming messages are ignored.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run(ctx)
//
//	// in an HTTP handler
//	hub.ServeWS(w, r, sessionID)
//
//	// after a placement
//	hub.BroadcastPlacement(sessionID, state, outcome)
package websocket
