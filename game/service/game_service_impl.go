package service

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/wricardo/pair-drop-game/game/engine"
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger *log.Logger) Option {
	return func(s *gameServiceImpl) {
		s.logger = logger
	}
}

// WithClock sets the clock used for event timestamps
func WithClock(clock quartz.Clock) Option {
	return func(s *gameServiceImpl) {
		s.clock = clock
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *log.Logger
	clock    quartz.Clock
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   log.Default(),
		clock:    quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      enrichState(sess.Engine, sess.Engine.GetState()),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, opts CreateSessionOptions) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if opts.ConfigName != "" {
		config, err = s.configs.LoadConfig(opts.ConfigName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, opts.ConfigName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, opts.ConfigName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", opts.ConfigName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	seed := rand.Int64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if opts.AutoStart {
		if err := sess.Engine.Start(); err != nil {
			return nil, fmt.Errorf("failed to start session %s: %w", sess.ID, err)
		}
	}

	configID := opts.ConfigName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created", "session", sess.ID, "config", configID, "seed", seed, "auto_start", opts.AutoStart)
	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Touch first so the copy returned by Get carries the new access time
	_ = s.sessions.UpdateLastAccessed(sessionID)
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", "session", sessionID)
	return nil
}

// StartGame begins play and draws the first card
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.Start(); err != nil {
		return nil, fmt.Errorf("start session %s: %w", sessionID, err)
	}
	s.logger.Debug("game started", "session", sessionID, "remaining", sess.Engine.Remaining())
	return enrichState(sess.Engine, sess.Engine.GetState()), nil
}

// Place drops the pending card at (row, col)
func (s *gameServiceImpl) Place(ctx context.Context, sessionID string, row, col int) (*PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	outcome, err := sess.Engine.AttemptPlacement(row, col)
	if err != nil {
		return nil, fmt.Errorf("place in session %s: %w", sessionID, err)
	}

	state := enrichState(sess.Engine, sess.Engine.GetState())
	s.logger.Debug("placement", "session", sessionID, "row", row, "col", col,
		"value", outcome.Value, "accepted", outcome.Accepted, "cleared", len(outcome.Cleared))

	return &PlaceResult{
		Success:   outcome.Accepted,
		GameState: state,
		Message:   state.Message,
		Outcome:   outcome,
		Events:    s.extractPlacementEvents(outcome, state),
	}, nil
}

// BulkPlace executes placements in order, stopping at the first rejection or
// when the game ends
func (s *gameServiceImpl) BulkPlace(ctx context.Context, sessionID string, placements []engine.Position) (*BulkPlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	if sess.Engine.GetStatus() == engine.StatusNotStarted {
		return nil, fmt.Errorf("bulk place in session %s: %w", sessionID, engine.ErrNotActive)
	}

	startState := sess.Engine.GetState()
	result := &BulkPlaceResult{
		RequestedPlacements: len(placements),
		Success:             true,
		Outcomes:            make([]*engine.PlacementOutcome, 0, len(placements)),
		States:              make([]*engine.GameState, 0, len(placements)),
		Events:              make([]GameEvent, 0),
		StartRemaining:      startState.Remaining,
	}

	// Limit placements to prevent abuse
	if len(placements) > engine.MaxBulkPlacements {
		result.Truncated = true
		result.Limit = engine.MaxBulkPlacements
		placements = placements[:engine.MaxBulkPlacements]
	}

	for i, p := range placements {
		if sess.Engine.IsTerminal() {
			result.StoppedReason = "game over"
			result.StopReasonCode = StopGameOver
			result.StoppedOnPlacement = i + 1
			break
		}

		outcome, err := sess.Engine.AttemptPlacement(p.Row, p.Col)
		if err != nil {
			return nil, fmt.Errorf("bulk place in session %s: %w", sessionID, err)
		}
		step := enrichState(sess.Engine, sess.Engine.GetState())
		result.Outcomes = append(result.Outcomes, outcome)
		result.States = append(result.States, step)
		result.Events = append(result.Events, s.extractPlacementEvents(outcome, step)...)

		if !outcome.Accepted {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("placement %d rejected at (%d,%d): %v", i+1, p.Row, p.Col, outcome.Rejection)
			result.StopReasonCode = outcome.RejectReason
			result.StoppedOnPlacement = i + 1
			break
		}
		result.PlacementsExecuted++
		result.ClearedDelta += len(outcome.Cleared)
	}

	endState := enrichState(sess.Engine, sess.Engine.GetState())
	result.GameState = endState
	result.EndRemaining = endState.Remaining
	result.GameOver = endState.Status == engine.StatusEnded
	result.Outcome = endState.Outcome
	result.EndReason = endState.EndReason
	result.Message = endState.Message
	result.HintCells = endState.HintCells
	result.BoardView = endState.BoardView
	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = StopGameOver
	}

	s.logger.Debug("bulk placement", "session", sessionID, "requested", result.RequestedPlacements,
		"executed", result.PlacementsExecuted, "stop", result.StopReasonCode)
	return result, nil
}

// Reset resets a game session to a fresh deal with the same seed
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	state := sess.Engine.Reset()
	s.logger.Debug("game reset", "session", sessionID)
	return enrichState(sess.Engine, state), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return enrichState(sess.Engine, sess.Engine.GetState()), nil
}

// GetPlacementHistory returns paginated placement history
func (s *gameServiceImpl) GetPlacementHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetPlacementHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	placements := []engine.PlacementHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				placements = append(placements, history[i])
			}
		} else {
			placements = append(placements, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Placements:      placements,
		TotalPlacements: total,
		Page:            opts.Page,
		PageSize:        opts.Limit,
		TotalPages:      totalPages,
		HasNext:         opts.Page < totalPages,
		HasPrevious:     opts.Page > 1,
	}, nil
}

// ListConfigs returns available rule sets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific rule set
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a rule set to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// extractPlacementEvents generates events from a placement outcome
func (s *gameServiceImpl) extractPlacementEvents(out *engine.PlacementOutcome, state *engine.GameState) []GameEvent {
	now := s.clock.Now()
	pos := out.Position
	events := []GameEvent{}

	if !out.Accepted {
		return append(events, GameEvent{
			Type:      EventRejected,
			Message:   fmt.Sprintf("Cannot place %d at (%d,%d): %s", out.Value, pos.Row, pos.Col, out.RejectReason),
			Timestamp: now,
			Position:  &pos,
			Value:     out.Value,
		})
	}

	events = append(events, GameEvent{
		Type:      EventPlaced,
		Message:   fmt.Sprintf("Placed %d at (%d,%d)", out.Value, pos.Row, pos.Col),
		Timestamp: now,
		Position:  &pos,
		Value:     out.Value,
	})

	if len(out.Cleared) > 0 {
		events = append(events, GameEvent{
			Type:      EventCleared,
			Message:   fmt.Sprintf("Cleared %d cards", len(out.Cleared)),
			Timestamp: now,
			Position:  &pos,
			Cleared:   out.Cleared,
		})
	}

	if out.Pending != nil {
		events = append(events, GameEvent{
			Type:      EventDraw,
			Message:   fmt.Sprintf("Drew %d, %d cards left", *out.Pending, out.Remaining),
			Timestamp: now,
			Value:     *out.Pending,
		})
	}

	if out.Terminal {
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   state.Message,
			Timestamp: now,
		})
	}

	return events
}

// enrichState fills the decision aids on a state snapshot
func enrichState(eng *engine.GameEngine, state *engine.GameState) *engine.GameState {
	if state == nil {
		return nil
	}
	state.HintCells = engine.HintCells(eng)
	state.BoardView = engine.RenderBoard(state.Board, eng.GetConfig().Ranks)
	return state
}
