package engine

import (
	"fmt"
	"strings"
)

// DefaultGameConfig returns the reference rule set: 13 ranks, 4 copies each,
// a 3x3 board and 13 as the non-pairing rank
func DefaultGameConfig() *GameConfig {
	cfg := &GameConfig{
		Name:        "classic",
		Description: "13 ranks, 4 copies each, 3x3 board; 13 never pairs",
	}
	ApplyDefaults(cfg)
	return cfg
}

// DefaultMessages returns the built-in player-facing texts
func DefaultMessages() Messages {
	return Messages{
		Welcome:      "Drop each card on the board. Neighbors that pair are cleared!",
		Matched:      "Pair! Cleared %d cards.",
		NoMatch:      "No pair this time.",
		CellOccupied: "That cell is already taken.",
		OutOfBounds:  "That cell is off the board.",
		PerfectClear: "Perfect clear! The board is empty.",
		Remainder:    "Deck exhausted with %d cards left on the board.",
		BoardFull:    "The board is full with %d cards left in the deck.",
	}
}

// ApplyDefaults fills zero-valued fields in place. A zero NonPairingRank
// defaults to Ranks.
func ApplyDefaults(cfg *GameConfig) {
	if cfg.Ranks == 0 {
		cfg.Ranks = DefaultRanks
	}
	if cfg.Multiplicity == 0 {
		cfg.Multiplicity = DefaultMultiplicity
	}
	if cfg.BoardRows == 0 {
		cfg.BoardRows = DefaultBoardRows
	}
	if cfg.BoardCols == 0 {
		cfg.BoardCols = DefaultBoardCols
	}
	if cfg.NonPairingRank == 0 {
		cfg.NonPairingRank = cfg.Ranks
	}
}

// ValidateGameConfig validates a rule set after defaults are applied
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.Ranks < MinRanks || config.Ranks > MaxRanks {
		return fmt.Errorf("config validation: ranks must be between %d and %d, got %d", MinRanks, MaxRanks, config.Ranks)
	}
	if config.Multiplicity < MinMultiplicity || config.Multiplicity > MaxMultiplicity {
		return fmt.Errorf("config validation: multiplicity must be between %d and %d, got %d", MinMultiplicity, MaxMultiplicity, config.Multiplicity)
	}
	if config.BoardRows < MinBoardSize || config.BoardRows > MaxBoardSize {
		return fmt.Errorf("config validation: board_rows must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.BoardRows)
	}
	if config.BoardCols < MinBoardSize || config.BoardCols > MaxBoardSize {
		return fmt.Errorf("config validation: board_cols must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.BoardCols)
	}

	if _, err := NewPairTable(config.Ranks, config.NonPairingRank); err != nil {
		return fmt.Errorf("config validation: %v", err)
	}

	if m := config.Messages; m != nil {
		if m.Matched != "" && !oneCountVerb(m.Matched) {
			return fmt.Errorf("config validation: messages.matched must contain exactly one %%d for the cleared count")
		}
		if m.Remainder != "" && !oneCountVerb(m.Remainder) {
			return fmt.Errorf("config validation: messages.remainder must contain exactly one %%d for the card count")
		}
		if m.BoardFull != "" && !oneCountVerb(m.BoardFull) {
			return fmt.Errorf("config validation: messages.board_full must contain exactly one %%d for the deck count")
		}
	}

	return nil
}

// oneCountVerb reports whether format takes exactly one integer argument
// through a single %d. Flags and width are allowed and %% is a literal.
func oneCountVerb(format string) bool {
	verbs := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			continue
		}
		for i < len(format) && strings.IndexByte("+-# 0123456789", format[i]) >= 0 {
			i++
		}
		if i >= len(format) || format[i] != 'd' {
			return false
		}
		verbs++
	}
	return verbs == 1
}

// PerfectClearPossible reports whether a deck built from config can end with
// an empty board. Copies of the non-pairing rank never leave the board.
func PerfectClearPossible(config *GameConfig) bool {
	return config.NonPairingRank == NoNonPairingRank
}

// resolveMessages overlays the rule set's messages onto the defaults
func resolveMessages(config *GameConfig) Messages {
	msgs := DefaultMessages()
	m := config.Messages
	if m == nil {
		return msgs
	}
	override := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	override(&msgs.Welcome, m.Welcome)
	override(&msgs.Matched, m.Matched)
	override(&msgs.NoMatch, m.NoMatch)
	override(&msgs.CellOccupied, m.CellOccupied)
	override(&msgs.OutOfBounds, m.OutOfBounds)
	override(&msgs.PerfectClear, m.PerfectClear)
	override(&msgs.Remainder, m.Remainder)
	override(&msgs.BoardFull, m.BoardFull)
	return msgs
}
