// Package service provides the business logic layer for the Pair Drop game.
//
// The service package implements:
//   - Multi-session game management
//   - Rule set loading and listing
//   - Placement processing, single and bulk
//   - Placement history with pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages rule set loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine; the service serialises
// access to them so the engine itself needs no locking.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionOptions{
//		ConfigName: "classic",
//		AutoStart:  true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Place(ctx, info.ID, 1, 1)
//
// States returned by the service carry decision aids: hint_cells lists the
// empty cells where the pending card would clear a pair, and board_view is a
// text rendering of the board.
package service
