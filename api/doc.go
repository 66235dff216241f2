// Package api provides HTTP REST API handlers for the Pair Drop game.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({config_id, seed, auto_start})
//   - GET /api/sessions - List sessions (sort=created|accessed, order=asc|desc, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/start - Start the game and draw the first card
//   - POST /api/sessions/{id}/place - Place the pending card ({row, col})
//   - POST /api/sessions/{id}/bulk-place - Place several cards ({placements: [{row, col}]})
//   - POST /api/sessions/{id}/reset - Redeal from the same seed
//   - GET /api/sessions/{id}/history - Placement history (page, limit, order)
//
// Configuration:
//   - GET /api/configs - List rule sets
//   - GET /api/configs/{name} - Get a rule set
//   - POST /api/configs - Save a rule set
//
// Other:
//   - GET /api/health - Liveness probe
//   - GET /ws?session={id} - Live state updates over WebSocket
//
// A rejected placement (occupied or off-board cell) is a normal 200 response
// with success=false. Errors are returned as JSON:
//
//	{
//	  "error": "game is not active",
//	  "code": 409
//	}
//
// Unknown sessions and configs map to 404, lifecycle violations to 409 and
// invalid rule sets or bodies to 400.
package api
