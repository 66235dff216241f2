package service

import (
	"time"

	"github.com/wricardo/pair-drop-game/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Seed           int64              `json:"seed"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CreateSessionOptions configures a new session
type CreateSessionOptions struct {
	ConfigName string `json:"config_id"`
	// Seed fixes the shuffle; nil picks a random seed
	Seed      *int64 `json:"seed,omitempty"`
	AutoStart bool   `json:"auto_start"`
}

// PlaceResult contains the result of a single placement
type PlaceResult struct {
	Success   bool                     `json:"success"`
	GameState *engine.GameState        `json:"game_state"`
	Message   string                   `json:"message"`
	Outcome   *engine.PlacementOutcome `json:"outcome"`
	Events    []GameEvent              `json:"events,omitempty"`
}

// Stop reason codes reported by BulkPlace
const (
	StopCellOccupied = engine.RejectCellOccupied
	StopOutOfBounds  = engine.RejectOutOfBounds
	StopGameOver     = "game_over"
)

// BulkPlaceResult contains the result of multiple placements
type BulkPlaceResult struct {
	// Summary
	PlacementsExecuted  int                        `json:"placements_executed"`
	RequestedPlacements int                        `json:"requested_placements"`
	Success             bool                       `json:"success"`
	GameState           *engine.GameState          `json:"game_state"`
	Outcomes            []*engine.PlacementOutcome `json:"outcomes"`
	// States[i] is the game state right after Outcomes[i]
	States []*engine.GameState `json:"-"`
	Events              []GameEvent                `json:"events"`
	StoppedReason       string                     `json:"stopped_reason,omitempty"`
	StopReasonCode      string                     `json:"stop_reason_code,omitempty"` // cell_occupied|out_of_bounds|game_over
	StoppedOnPlacement  int                        `json:"stopped_on_placement,omitempty"`
	Truncated           bool                       `json:"truncated,omitempty"`
	Limit               int                        `json:"limit,omitempty"`

	// Start/end snapshot
	StartRemaining int `json:"start_remaining"`
	EndRemaining   int `json:"end_remaining"`
	ClearedDelta   int `json:"cleared_delta"`

	// Final status aids
	GameOver  bool              `json:"game_over"`
	Outcome   engine.Outcome    `json:"outcome,omitempty"`
	EndReason engine.EndReason  `json:"end_reason,omitempty"`
	Message   string            `json:"message,omitempty"`
	HintCells []engine.Position `json:"hint_cells,omitempty"`
	BoardView []string          `json:"board_view,omitempty"`
}

// Event types reported in GameEvent.Type
const (
	EventPlaced   = "placed"
	EventRejected = "rejected"
	EventCleared  = "cleared"
	EventDraw     = "draw"
	EventGameOver = "game_over"
)

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string               `json:"type"`
	Message   string               `json:"message"`
	Timestamp time.Time            `json:"timestamp"`
	Position  *engine.Position     `json:"position,omitempty"`
	Value     engine.CardValue     `json:"value,omitempty"`
	Cleared   []engine.ClearedCell `json:"cleared,omitempty"`
}

// HistoryOptions configures placement history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated placement history
type HistoryResponse struct {
	Placements      []engine.PlacementHistoryEntry `json:"placements"`
	TotalPlacements int                            `json:"total_placements"`
	Page            int                            `json:"page"`
	PageSize        int                            `json:"page_size"`
	TotalPages      int                            `json:"total_pages"`
	HasNext         bool                           `json:"has_next"`
	HasPrevious     bool                           `json:"has_previous"`
}

// ConfigInfo provides information about a rule set
type ConfigInfo struct {
	Filename             string `json:"filename"`
	ConfigID             string `json:"config_id"` // The identifier to use for session creation
	Name                 string `json:"name"`      // Display name
	Description          string `json:"description"`
	Format               string `json:"format"` // "json" or "hcl"
	Ranks                int    `json:"ranks"`
	Multiplicity         int    `json:"multiplicity"`
	BoardRows            int    `json:"board_rows"`
	BoardCols            int    `json:"board_cols"`
	NonPairingRank       int    `json:"non_pairing_rank"`
	PerfectClearPossible bool   `json:"perfect_clear_possible"`
}
