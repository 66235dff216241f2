package engine

import (
	"fmt"

	"github.com/coder/quartz"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	Start() error
	AttemptPlacement(row, col int) (*PlacementOutcome, error)
	IsTerminal() bool
	Outcome() (Outcome, error)
	Reset() *GameState

	// Game state
	GetState() *GameState
	GetStatus() Status
	GetPending() (CardValue, bool)
	Remaining() int
	GetPossiblePlacements() []Position

	// Configuration
	GetConfig() *GameConfig
	GetSeed() int64

	// History
	GetPlacementHistory() []PlacementHistoryEntry
	GetLastPlacement() *PlacementHistoryEntry
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithClock sets the clock used to timestamp placement history
func WithClock(clock quartz.Clock) Option {
	return func(e *GameEngine) {
		e.clock = clock
	}
}

// WithDeck replaces the shuffled deck with a scripted one. Reset replays the
// same script. NewEngine rejects cards outside 1..Ranks.
func WithDeck(deck *Deck) Option {
	return func(e *GameEngine) {
		e.script = deck.Peek()
	}
}

// GameEngine is a single game session. It is not safe for concurrent use;
// callers serialise access.
type GameEngine struct {
	config   *GameConfig
	seed     int64
	rule     *PairTable
	messages Messages
	clock    quartz.Clock
	script   []CardValue

	deck    *Deck
	board   *Board
	pending *CardValue

	status    Status
	outcome   Outcome
	endReason EndReason
	message   string
	cleared   int

	history        []PlacementHistoryEntry
	currentHistory []PlacementHistoryEntry
}

// NewEngine creates a game for config whose deck is shuffled from seed.
// The game starts in StatusNotStarted.
func NewEngine(config *GameConfig, seed int64, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	rule, err := NewPairTable(config.Ranks, config.NonPairingRank)
	if err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:   config,
		seed:     seed,
		rule:     rule,
		messages: resolveMessages(config),
		clock:    quartz.NewReal(),
		history:  []PlacementHistoryEntry{},
	}
	for _, opt := range opts {
		opt(e)
	}
	for i, card := range e.script {
		if int(card) < 1 || int(card) > config.Ranks {
			return nil, fmt.Errorf("%w: scripted card %d is %d, ranks are 1..%d", ErrInvalidConfig, i, card, config.Ranks)
		}
	}

	if err := e.deal(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a game with the reference rule set
func NewEngineWithDefaults(seed int64) *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), seed)
	if err != nil {
		// The default config is always valid
		panic(err)
	}
	return e
}

// deal resets the per-game state and builds a fresh deck and board
func (e *GameEngine) deal() error {
	if e.script != nil {
		e.deck = NewDeckFromCards(e.script)
	} else {
		deck, err := NewDeck(e.config.Ranks, e.config.Multiplicity)
		if err != nil {
			return err
		}
		deck.Shuffle(NewRand(e.seed))
		e.deck = deck
	}

	e.board = NewBoard(e.config.BoardRows, e.config.BoardCols)
	e.pending = nil
	e.status = StatusNotStarted
	e.outcome = ""
	e.endReason = ""
	e.cleared = 0
	e.message = e.messages.Welcome
	e.currentHistory = []PlacementHistoryEntry{}
	return nil
}

// Start moves the game from not started to active and draws the first card
func (e *GameEngine) Start() error {
	if e.status != StatusNotStarted {
		return ErrAlreadyStarted
	}
	e.status = StatusActive
	e.drawPending()
	e.checkTermination()
	return nil
}

// AttemptPlacement places the pending card at (row, col). Rejections are
// reported in the outcome and leave the board, deck and pending card unchanged.
// A non-nil error means the call itself was invalid.
func (e *GameEngine) AttemptPlacement(row, col int) (*PlacementOutcome, error) {
	if e.status != StatusActive || e.pending == nil {
		return nil, ErrNotActive
	}

	value := *e.pending
	pos := Position{Row: row, Col: col}

	if err := e.board.Place(row, col, value); err != nil {
		out := &PlacementOutcome{
			Accepted:  false,
			Position:  pos,
			Value:     value,
			Rejection: err,
			Cleared:   []ClearedCell{},
			Pending:   e.pendingCopy(),
			Remaining: e.deck.Remaining(),
		}
		switch err {
		case ErrOutOfBounds:
			out.RejectReason = RejectOutOfBounds
			e.message = e.messages.OutOfBounds
		default:
			out.RejectReason = RejectCellOccupied
			e.message = e.messages.CellOccupied
		}
		e.addPlacementToHistory(out)
		return out, nil
	}

	clears := ResolveMatches(e.board, pos, e.rule)
	for _, c := range clears {
		// Every cell in the clear set is occupied by construction
		_ = e.board.Clear(c.Row, c.Col)
	}
	e.cleared += len(clears)
	if len(clears) > 0 {
		e.message = fmt.Sprintf(e.messages.Matched, len(clears))
	} else {
		e.message = e.messages.NoMatch
	}

	e.pending = nil
	e.drawPending()
	e.checkTermination()

	if clears == nil {
		clears = []ClearedCell{}
	}
	out := &PlacementOutcome{
		Accepted:  true,
		Position:  pos,
		Value:     value,
		Cleared:   clears,
		Pending:   e.pendingCopy(),
		Remaining: e.deck.Remaining(),
		Terminal:  e.status == StatusEnded,
		Outcome:   e.outcome,
		EndReason: e.endReason,
	}
	e.addPlacementToHistory(out)
	return out, nil
}

// drawPending draws the next card into the pending slot if the deck has one
func (e *GameEngine) drawPending() {
	card, err := e.deck.Draw()
	if err != nil {
		e.pending = nil
		return
	}
	e.pending = &card
}

// checkTermination ends the game when the deck is exhausted with nothing
// pending, or when the pending card has no empty cell to go to
func (e *GameEngine) checkTermination() {
	if e.status != StatusActive {
		return
	}

	switch {
	case e.pending == nil && e.deck.Remaining() == 0:
		e.endReason = EndDeckExhausted
	case e.pending != nil && len(e.board.EmptyCells()) == 0:
		e.endReason = EndBoardFull
		e.pending = nil
	default:
		return
	}

	e.status = StatusEnded
	occupied := e.board.OccupiedCount()
	if occupied == 0 {
		e.outcome = PerfectClear
		e.message = e.messages.PerfectClear
		return
	}

	e.outcome = ClearedWithRemainder
	if e.endReason == EndBoardFull {
		e.message = fmt.Sprintf(e.messages.BoardFull, e.deck.Remaining())
	} else {
		e.message = fmt.Sprintf(e.messages.Remainder, occupied)
	}
}

// IsTerminal reports whether the game has ended
func (e *GameEngine) IsTerminal() bool {
	return e.status == StatusEnded
}

// Outcome classifies an ended game
func (e *GameEngine) Outcome() (Outcome, error) {
	if e.status != StatusEnded {
		return "", ErrNotEnded
	}
	return e.outcome, nil
}

// EndReason returns why the game ended, or "" while it is running
func (e *GameEngine) EndReason() EndReason {
	return e.endReason
}

// Reset rebuilds the game from the same config and seed. Cumulative history
// is kept; the current segment is cleared.
func (e *GameEngine) Reset() *GameState {
	// deal only fails on invalid configs, which NewEngine already rejected
	_ = e.deal()
	return e.GetState()
}

// GetStatus returns the lifecycle phase
func (e *GameEngine) GetStatus() Status {
	return e.status
}

// GetPending returns the card awaiting placement
func (e *GameEngine) GetPending() (CardValue, bool) {
	if e.pending == nil {
		return 0, false
	}
	return *e.pending, true
}

// Remaining returns the number of undrawn cards
func (e *GameEngine) Remaining() int {
	return e.deck.Remaining()
}

// Board exposes the board for read-only inspection
func (e *GameEngine) Board() *Board {
	return e.board
}

// Rule returns the pair table in use
func (e *GameEngine) Rule() *PairTable {
	return e.rule
}

// GetPossiblePlacements returns the empty cells, or nil when no card is pending
func (e *GameEngine) GetPossiblePlacements() []Position {
	if e.status != StatusActive || e.pending == nil {
		return nil
	}
	return e.board.EmptyCells()
}

// GetConfig returns the rule set
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetSeed returns the shuffle seed
func (e *GameEngine) GetSeed() int64 {
	return e.seed
}

// GetPlacementHistory returns the cumulative placement history
func (e *GameEngine) GetPlacementHistory() []PlacementHistoryEntry {
	return e.history
}

// GetLastPlacement returns the last placement attempt, or nil
func (e *GameEngine) GetLastPlacement() *PlacementHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// GetState builds a snapshot of the game
func (e *GameEngine) GetState() *GameState {
	return &GameState{
		Status:                 e.status,
		Outcome:                e.outcome,
		EndReason:              e.endReason,
		Board:                  e.board.Snapshot(),
		Rows:                   e.board.Rows(),
		Cols:                   e.board.Cols(),
		Pending:                e.pendingCopy(),
		Remaining:              e.deck.Remaining(),
		Occupied:               e.board.OccupiedCount(),
		ClearedTotal:           e.cleared,
		NonPairingRank:         e.rule.NonPairingRank(),
		Seed:                   e.seed,
		ConfigName:             e.config.Name,
		Message:                e.message,
		PlacementHistory:       e.history,
		TotalPlacements:        len(e.history),
		CurrentPlacements:      e.currentHistory,
		CurrentPlacementsCount: len(e.currentHistory),
	}
}

func (e *GameEngine) pendingCopy() *CardValue {
	if e.pending == nil {
		return nil
	}
	v := *e.pending
	return &v
}
