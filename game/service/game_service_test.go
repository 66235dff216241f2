package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/pair-drop-game/game/config"
	"github.com/wricardo/pair-drop-game/game/engine"
	"github.com/wricardo/pair-drop-game/game/service"
	"github.com/wricardo/pair-drop-game/game/session"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	// script, when set, replaces the shuffled deck of new sessions
	script []engine.CardValue
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig, seed int64) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, service.ErrSessionExists
	}

	var opts []engine.Option
	if m.script != nil {
		opts = append(opts, engine.WithDeck(engine.NewDeckFromCards(m.script)))
	}
	eng, err := engine.NewEngine(config, seed, opts...)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		Seed:           seed,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig, seed int64) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config, seed)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	classic := engine.DefaultGameConfig()
	open := &engine.GameConfig{
		Name:           "Open",
		Description:    "Every rank pairs",
		Ranks:          4,
		Multiplicity:   2,
		NonPairingRank: engine.NoNonPairingRank,
	}
	engine.ApplyDefaults(open)

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"classic": classic,
			"open":    open,
		},
		saved: map[string]*engine.GameConfig{},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for id, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename: id + ".json",
			ConfigID: id,
			Name:     config.Name,
			Ranks:    config.Ranks,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.saved[name] = config
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T, script ...engine.CardValue) (service.GameService, *MockSessionManager, *MockConfigManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	if len(script) > 0 {
		sessions.script = script
	}
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs, service.WithClock(quartz.NewMock(t)))
	return svc, sessions, configs
}

func seed(v int64) *int64 { return &v }

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	tests := []struct {
		name       string
		opts       service.CreateSessionOptions
		wantErr    error
		wantConfig string
		wantStatus engine.Status
	}{
		{
			name:       "create with default config",
			opts:       service.CreateSessionOptions{},
			wantConfig: "classic",
			wantStatus: engine.StatusNotStarted,
		},
		{
			name:       "create with specific config and auto start",
			opts:       service.CreateSessionOptions{ConfigName: "open", AutoStart: true},
			wantConfig: "open",
			wantStatus: engine.StatusActive,
		},
		{
			name:    "create with invalid config",
			opts:    service.CreateSessionOptions{ConfigName: "nonexistent"},
			wantErr: service.ErrConfigNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "Available configs")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, info.ConfigName)
			assert.Equal(t, tt.wantStatus, info.GameState.Status)
			assert.NotEmpty(t, info.GameState.BoardView)
		})
	}
}

func TestGameService_CreateSessionWithSeed(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	a, err := svc.CreateSession(ctx, service.CreateSessionOptions{Seed: seed(42), AutoStart: true})
	require.NoError(t, err)
	b, err := svc.CreateSession(ctx, service.CreateSessionOptions{Seed: seed(42), AutoStart: true})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(42), a.Seed)
	require.NotNil(t, a.GameState.Pending)
	assert.Equal(t, *a.GameState.Pending, *b.GameState.Pending)
}

func TestGameService_StartGame(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{})
	require.NoError(t, err)

	state, err := svc.StartGame(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusActive, state.Status)
	assert.NotNil(t, state.Pending)
	assert.Equal(t, 51, state.Remaining)

	_, err = svc.StartGame(ctx, info.ID)
	assert.ErrorIs(t, err, engine.ErrAlreadyStarted)

	_, err = svc.StartGame(ctx, "nope")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGameService_Place(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, 1, 2, 7, 7)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{AutoStart: true})
	require.NoError(t, err)

	t.Run("no match", func(t *testing.T) {
		result, err := svc.Place(ctx, info.ID, 0, 0)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, []engine.Position{{Row: 0, Col: 1}, {Row: 1, Col: 0}}, result.GameState.HintCells)

		types := eventTypes(result.Events)
		assert.Equal(t, []string{service.EventPlaced, service.EventDraw}, types)
	})

	t.Run("rejected", func(t *testing.T) {
		result, err := svc.Place(ctx, info.ID, 0, 0)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, engine.RejectCellOccupied, result.Outcome.RejectReason)
		assert.Equal(t, []string{service.EventRejected}, eventTypes(result.Events))
	})

	t.Run("match clears", func(t *testing.T) {
		result, err := svc.Place(ctx, info.ID, 1, 0)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Len(t, result.Outcome.Cleared, 2)
		assert.Equal(t, []string{service.EventPlaced, service.EventCleared, service.EventDraw}, eventTypes(result.Events))
		assert.Equal(t, 0, result.GameState.Occupied)
	})

	t.Run("game over", func(t *testing.T) {
		_, err := svc.Place(ctx, info.ID, 2, 2)
		require.NoError(t, err)
		result, err := svc.Place(ctx, info.ID, 0, 0)
		require.NoError(t, err)
		assert.True(t, result.Outcome.Terminal)
		assert.Contains(t, eventTypes(result.Events), service.EventGameOver)
		assert.Equal(t, engine.ClearedWithRemainder, result.GameState.Outcome)
	})

	t.Run("place after end", func(t *testing.T) {
		_, err := svc.Place(ctx, info.ID, 1, 1)
		assert.ErrorIs(t, err, engine.ErrNotActive)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Place(ctx, "nope", 0, 0)
		assert.ErrorIs(t, err, service.ErrSessionNotFound)
	})
}

func TestGameService_PlaceBeforeStart(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{})
	require.NoError(t, err)

	_, err = svc.Place(ctx, info.ID, 0, 0)
	assert.ErrorIs(t, err, engine.ErrNotActive)

	_, err = svc.BulkPlace(ctx, info.ID, []engine.Position{{Row: 0, Col: 0}})
	assert.ErrorIs(t, err, engine.ErrNotActive)
}

func TestGameService_BulkPlace(t *testing.T) {
	ctx := context.Background()

	t.Run("all placements executed", func(t *testing.T) {
		svc, _, _ := newTestService(t, 1, 2, 3, 4, 9)
		info, err := svc.CreateSession(ctx, service.CreateSessionOptions{AutoStart: true})
		require.NoError(t, err)

		result, err := svc.BulkPlace(ctx, info.ID, []engine.Position{{0, 0}, {0, 1}, {2, 2}, {2, 1}})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 4, result.PlacementsExecuted)
		assert.Equal(t, 4, result.RequestedPlacements)
		assert.Equal(t, 4, result.ClearedDelta)
		assert.Equal(t, 4, result.StartRemaining)
		assert.Equal(t, 0, result.EndRemaining)
		assert.False(t, result.GameOver)
		assert.Empty(t, result.StopReasonCode)
		assert.Len(t, result.Outcomes, 4)

		// Each step carries the state it produced, not the final one
		require.Len(t, result.States, 4)
		assert.Equal(t, engine.CardValue(1), result.States[0].Board[0][0])
		assert.Equal(t, 1, result.States[0].Occupied)
		assert.Equal(t, 3, result.States[0].Remaining)
		assert.Equal(t, 0, result.States[1].Occupied)
		assert.Equal(t, engine.CardValue(3), result.States[2].Board[2][2])
		assert.Equal(t, 1, result.States[2].Remaining)
		assert.Equal(t, 0, result.States[3].Occupied)
	})

	t.Run("stops at first rejection", func(t *testing.T) {
		svc, _, _ := newTestService(t, 5, 5, 5, 5)
		info, err := svc.CreateSession(ctx, service.CreateSessionOptions{AutoStart: true})
		require.NoError(t, err)

		result, err := svc.BulkPlace(ctx, info.ID, []engine.Position{{0, 0}, {0, 0}, {1, 1}})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 1, result.PlacementsExecuted)
		assert.Equal(t, 2, result.StoppedOnPlacement)
		assert.Equal(t, service.StopCellOccupied, result.StopReasonCode)
		assert.Equal(t, 1, result.GameState.Occupied)
		require.Len(t, result.States, 2)
		assert.Equal(t, 1, result.States[1].Occupied, "a rejection leaves the board as it was")
	})

	t.Run("out of bounds", func(t *testing.T) {
		svc, _, _ := newTestService(t, 5, 5)
		info, err := svc.CreateSession(ctx, service.CreateSessionOptions{AutoStart: true})
		require.NoError(t, err)

		result, err := svc.BulkPlace(ctx, info.ID, []engine.Position{{Row: 9, Col: 9}})
		require.NoError(t, err)
		assert.Equal(t, service.StopOutOfBounds, result.StopReasonCode)
		assert.Equal(t, 0, result.PlacementsExecuted)
	})

	t.Run("stops when the game ends", func(t *testing.T) {
		svc, _, _ := newTestService(t, 6, 6)
		info, err := svc.CreateSession(ctx, service.CreateSessionOptions{AutoStart: true})
		require.NoError(t, err)

		result, err := svc.BulkPlace(ctx, info.ID, []engine.Position{{0, 0}, {0, 1}, {0, 2}})
		require.NoError(t, err)
		assert.Equal(t, 2, result.PlacementsExecuted)
		assert.Equal(t, 3, result.StoppedOnPlacement)
		assert.Equal(t, service.StopGameOver, result.StopReasonCode)
		assert.True(t, result.GameOver)
		assert.Equal(t, engine.ClearedWithRemainder, result.Outcome)
		assert.Equal(t, engine.EndDeckExhausted, result.EndReason)
	})

	t.Run("truncated to the limit", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		info, err := svc.CreateSession(ctx, service.CreateSessionOptions{AutoStart: true, Seed: seed(3)})
		require.NoError(t, err)

		placements := make([]engine.Position, engine.MaxBulkPlacements+10)
		result, err := svc.BulkPlace(ctx, info.ID, placements)
		require.NoError(t, err)
		assert.True(t, result.Truncated)
		assert.Equal(t, engine.MaxBulkPlacements, result.Limit)
		assert.Equal(t, engine.MaxBulkPlacements+10, result.RequestedPlacements)
	})
}

func TestGameService_GetPlacementHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{AutoStart: true, Seed: seed(11)})
	require.NoError(t, err)

	// Five attempts: one accepted, four rejected on the same cell
	for i := 0; i < 5; i++ {
		_, err := svc.Place(ctx, info.ID, 0, 0)
		require.NoError(t, err)
	}

	tests := []struct {
		name        string
		opts        service.HistoryOptions
		wantCount   int
		wantFirst   int
		wantPages   int
		wantHasNext bool
	}{
		{"defaults are newest first", service.HistoryOptions{}, 5, 5, 1, false},
		{"ascending", service.HistoryOptions{Order: "asc"}, 5, 1, 1, false},
		{"first page", service.HistoryOptions{Limit: 2, Order: "asc"}, 2, 1, 3, true},
		{"last page", service.HistoryOptions{Page: 3, Limit: 2, Order: "asc"}, 1, 5, 3, false},
		{"descending second page", service.HistoryOptions{Page: 2, Limit: 2, Order: "desc"}, 2, 3, 3, true},
		{"past the end", service.HistoryOptions{Page: 9, Limit: 2}, 0, 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetPlacementHistory(ctx, info.ID, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, 5, resp.TotalPlacements)
			assert.Len(t, resp.Placements, tt.wantCount)
			assert.Equal(t, tt.wantPages, resp.TotalPages)
			assert.Equal(t, tt.wantHasNext, resp.HasNext)
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantFirst, resp.Placements[0].PlacementNumber)
			}
		})
	}
}

func TestGameService_ListAndDeleteSessions(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSession(ctx, service.CreateSessionOptions{})
		require.NoError(t, err)
	}

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)

	require.NoError(t, svc.DeleteSession(ctx, sessions[0].ID))
	assert.ErrorIs(t, svc.DeleteSession(ctx, sessions[0].ID), service.ErrSessionNotFound)

	_, err = svc.GetSession(ctx, sessions[0].ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	sessions, err = svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestGameService_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	configs, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(), configs)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{AutoStart: true, Seed: seed(3)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, err := svc.GetSession(ctx, info.ID)
				if !assert.NoError(t, err) {
					return
				}
				assert.False(t, got.LastAccessedAt.Before(got.CreatedAt))

				_, err = svc.GetGameState(ctx, info.ID)
				assert.NoError(t, err)
				_, err = svc.ListSessions(ctx)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	info, err := svc.CreateSession(ctx, service.CreateSessionOptions{AutoStart: true, Seed: seed(5)})
	require.NoError(t, err)
	first := *info.GameState.Pending

	_, err = svc.Place(ctx, info.ID, 1, 1)
	require.NoError(t, err)

	state, err := svc.Reset(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusNotStarted, state.Status)
	assert.Equal(t, 0, state.Occupied)
	assert.Equal(t, 1, state.TotalPlacements)
	assert.Equal(t, 0, state.CurrentPlacementsCount)

	state, err = svc.StartGame(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *state.Pending, "reset replays the same deck")
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc, _, configs := newTestService(t)

	list, err := svc.ListConfigs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	cfg, err := svc.LoadConfig(ctx, "open")
	require.NoError(t, err)
	assert.Equal(t, "Open", cfg.Name)

	custom := engine.DefaultGameConfig()
	custom.Name = "custom"
	require.NoError(t, svc.SaveConfig(ctx, "custom", custom))
	assert.Contains(t, configs.saved, "custom")
}

func eventTypes(events []service.GameEvent) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	return types
}
