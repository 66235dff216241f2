// Package session provides session management for the Pair Drop game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the in-memory session registry. Each service.Session owns its
// own engine instance, seed and access metadata.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive and generated IDs are retried on collision.
//
// Concurrency:
//
// The manager guards its map with a read/write lock. It does not serialise
// access to a session's engine; the service layer does that.
//
// Usage:
//
//	manager := session.NewManager(session.WithLogger(logger))
//
//	sess, err := manager.Create("", config, seed)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//
// Cleanup:
//
// RunCleanup removes sessions idle for longer than a TTL on a ticker from the
// manager's clock, so tests can drive expiry with a quartz mock.
package session
