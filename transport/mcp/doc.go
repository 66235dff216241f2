// Package mcp exposes the Pair Drop REST API as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call becomes one or two REST requests
// against a running API server, and the JSON responses are rendered as plain
// text for the agent.
//
// MCP Tools:
//   - create_session, get_session, list_sessions: session management
//   - start_game: draw the first card
//   - game_state: board, pending card, deck count and hint cells
//   - place_card, bulk_place: place the pending card(s)
//   - reset_game: redeal the same deck
//   - placement_history: paginated placement log
//   - list_configs: available rule sets
//   - game_instructions: rules and strategy notes
//   - describe_cell: one cell, its partner and its neighbors
//
// Transport Modes:
//
// The same server can be served over stdio with server.ServeStdio, or mounted
// on an HTTP mux whose handler forwards request bodies to HandleMessage.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
