package engine

import "errors"

// CardValue is a card's printed rank. Zero means "no card".
type CardValue int

// Status is the lifecycle phase of a game
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusEnded      Status = "ended"
)

// Outcome classifies an ended game
type Outcome string

const (
	PerfectClear         Outcome = "perfect_clear"
	ClearedWithRemainder Outcome = "cleared_with_remainder"
)

// EndReason records why a game ended
type EndReason string

const (
	EndDeckExhausted EndReason = "deck_exhausted"
	EndBoardFull     EndReason = "board_full"
)

// Rejection codes reported in PlacementOutcome.RejectReason
const (
	RejectCellOccupied = "cell_occupied"
	RejectOutOfBounds  = "out_of_bounds"
)

const (
	DefaultRanks        = 13
	DefaultMultiplicity = 4
	DefaultBoardRows    = 3
	DefaultBoardCols    = 3

	// NoNonPairingRank disables the non-pairing rank so every rank pairs.
	NoNonPairingRank = -1

	// Validation constants
	MinRanks          = 2
	MaxRanks          = 99
	MinMultiplicity   = 1
	MaxMultiplicity   = 16
	MinBoardSize      = 1
	MaxBoardSize      = 10
	MaxBulkPlacements = 64
)

var (
	ErrDeckEmpty        = errors.New("deck is empty")
	ErrCellOccupied     = errors.New("cell is occupied")
	ErrOutOfBounds      = errors.New("cell is out of bounds")
	ErrCellAlreadyEmpty = errors.New("cell is already empty")
	ErrNotActive        = errors.New("game is not active")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrNotEnded         = errors.New("game has not ended")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Position is a board coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ClearedCell is one entry of a clear set
type ClearedCell struct {
	Row   int       `json:"row"`
	Col   int       `json:"col"`
	Value CardValue `json:"value"`
}

// Messages are the player-facing texts a rule set may override
type Messages struct {
	Welcome      string `json:"welcome,omitempty" hcl:"welcome,optional"`
	Matched      string `json:"matched,omitempty" hcl:"matched,optional"`
	NoMatch      string `json:"no_match,omitempty" hcl:"no_match,optional"`
	CellOccupied string `json:"cell_occupied,omitempty" hcl:"cell_occupied,optional"`
	OutOfBounds  string `json:"out_of_bounds,omitempty" hcl:"out_of_bounds,optional"`
	PerfectClear string `json:"perfect_clear,omitempty" hcl:"perfect_clear,optional"`
	Remainder    string `json:"remainder,omitempty" hcl:"remainder,optional"`
	BoardFull    string `json:"board_full,omitempty" hcl:"board_full,optional"`
}

// GameConfig is a rule set loaded from JSON or HCL
type GameConfig struct {
	Name           string    `json:"name" hcl:"name"`
	Description    string    `json:"description" hcl:"description,optional"`
	Ranks          int       `json:"ranks" hcl:"ranks,optional"`
	Multiplicity   int       `json:"multiplicity" hcl:"multiplicity,optional"`
	BoardRows      int       `json:"board_rows" hcl:"board_rows,optional"`
	BoardCols      int       `json:"board_cols" hcl:"board_cols,optional"`
	NonPairingRank int       `json:"non_pairing_rank" hcl:"non_pairing_rank,optional"`
	Messages       *Messages `json:"messages,omitempty" hcl:"messages,block"`
}

// PlacementOutcome is the complete result of one placement attempt.
// The board and deck already reflect it when it is returned.
type PlacementOutcome struct {
	Accepted     bool          `json:"accepted"`
	Position     Position      `json:"position"`
	Value        CardValue     `json:"value"`
	Rejection    error         `json:"-"`
	RejectReason string        `json:"reject_reason,omitempty"`
	Cleared      []ClearedCell `json:"cleared"`
	Pending      *CardValue    `json:"pending"`
	Remaining    int           `json:"remaining"`
	Terminal     bool          `json:"terminal"`
	Outcome      Outcome       `json:"outcome,omitempty"`
	EndReason    EndReason     `json:"end_reason,omitempty"`
}

// PlacementHistoryEntry represents a single placement attempt in the game history
type PlacementHistoryEntry struct {
	Position        Position      `json:"position"`
	Value           CardValue     `json:"value"`
	Accepted        bool          `json:"accepted"`
	RejectReason    string        `json:"reject_reason,omitempty"`
	Cleared         []ClearedCell `json:"cleared,omitempty"`
	Remaining       int           `json:"remaining"`
	Timestamp       int64         `json:"timestamp"`
	PlacementNumber int           `json:"placement_number"`
}

// GameState is a JSON-ready snapshot of a game
type GameState struct {
	Status         Status        `json:"status"`
	Outcome        Outcome       `json:"outcome,omitempty"`
	EndReason      EndReason     `json:"end_reason,omitempty"`
	Board          [][]CardValue `json:"board"`
	Rows           int           `json:"rows"`
	Cols           int           `json:"cols"`
	Pending        *CardValue    `json:"pending"`
	Remaining      int           `json:"remaining"`
	Occupied       int           `json:"occupied"`
	ClearedTotal   int           `json:"cleared_total"`
	NonPairingRank int           `json:"non_pairing_rank"`
	Seed           int64         `json:"seed"`
	ConfigName     string        `json:"config_name"`
	Message        string        `json:"message"`

	PlacementHistory []PlacementHistoryEntry `json:"placement_history"`
	TotalPlacements  int                     `json:"total_placements"`

	// CurrentPlacements covers only the placements since the last reset, while
	// PlacementHistory stays cumulative.
	CurrentPlacements      []PlacementHistoryEntry `json:"current_placements"`
	CurrentPlacementsCount int                     `json:"current_placements_count"`

	// Computed helper views (not required for core game logic)
	HintCells []Position `json:"hint_cells,omitempty"`
	BoardView []string   `json:"board_view,omitempty"`
}
