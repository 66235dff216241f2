// Package config provides rule set management for the Pair Drop game.
//
// The config package handles:
//   - Loading rule sets from JSON and HCL files
//   - Applying defaults and validating rule sets
//   - Default rule set selection
//   - Rule set discovery, listing and saving
//
// Configuration Format:
//
// A rule set names the deck (ranks and multiplicity), the board size and the
// non-pairing rank, plus optional player-facing messages. Zero values take
// the defaults; non_pairing_rank = -1 lets every rank pair. In HCL:
//
//	name             = "classic"
//	description      = "13 ranks, 4 copies each, 3x3 board"
//	ranks            = 13
//	multiplicity     = 4
//	board_rows       = 3
//	board_cols       = 3
//	non_pairing_rank = 13
//
//	messages {
//	  matched = "Pair! Cleared %d cards."
//	}
//
// The same fields are used as JSON keys.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("classic")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// Rule sets are saved as JSON regardless of the format they were loaded from.
package config
