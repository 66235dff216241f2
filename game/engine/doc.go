// Package engine provides the core game logic for the Pair Drop card game.
//
// The engine package implements the game mechanics including:
//   - Deck construction, seeded shuffling and drawing
//   - A fixed-size board with placement, clearing and adjacency queries
//   - The pair rule mapping each rank to its unique partner
//   - Single-pass match resolution around a freshly placed card
//   - The game lifecycle and end-of-game classification
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is a JSON-ready snapshot, while
// GameConfig defines the rule set loaded from JSON or HCL files.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig(), 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := gameEngine.Start(); err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := gameEngine.AttemptPlacement(1, 1)
//	if err != nil {
//		log.Fatal(err) // the game was not active
//	}
//	if !outcome.Accepted {
//		// cell occupied or off the board; nothing changed
//	}
//
// Game Rules:
//
// A shuffled deck of numbered cards is dealt one card at a time. Each card
// is dropped on an empty board cell. If an orthogonal neighbor holds the
// card's partner, the placed card and every matching neighbor are cleared.
// The non-pairing rank never clears. The game ends when the deck runs out,
// or when the board has no empty cell for the next card. An empty board at
// the end is a perfect clear.
package engine
