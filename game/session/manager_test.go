package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/pair-drop-game/game/engine"
)

func createTestConfig() *engine.GameConfig {
	cfg := engine.DefaultGameConfig()
	cfg.Name = "Test Config"
	return cfg
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with specific ID", func(t *testing.T) {
		session, err := manager.Create("test-123", config, 42)
		require.NoError(t, err)
		assert.Equal(t, "test-123", session.ID)
		assert.Equal(t, int64(42), session.Seed)
		assert.Equal(t, int64(42), session.Engine.GetSeed())
		assert.Equal(t, engine.StatusNotStarted, session.Engine.GetStatus())
		assert.Equal(t, config, session.Config)
	})

	t.Run("create with empty ID generates one", func(t *testing.T) {
		session, err := manager.Create("", config, 1)
		require.NoError(t, err)
		assert.Len(t, session.ID, 4)
	})

	t.Run("duplicate ID is rejected case-insensitively", func(t *testing.T) {
		_, err := manager.Create("TEST-123", config, 1)
		assert.ErrorIs(t, err, ErrSessionAlreadyExists)
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("a/b", config, 1)
		assert.ErrorIs(t, err, ErrInvalidSessionID)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := manager.Create("bad", &engine.GameConfig{Name: "bad"}, 1)
		assert.ErrorIs(t, err, engine.ErrInvalidConfig)
		_, err = manager.Get("bad")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, err := manager.Create("AbCd", createTestConfig(), 1)
	require.NoError(t, err)

	for _, id := range []string{"AbCd", "abcd", "ABCD"} {
		session, err := manager.Get(id)
		require.NoError(t, err, id)
		assert.Equal(t, created.ID, session.ID)
		assert.Same(t, created.Engine, session.Engine)
	}

	_, err = manager.Get("zzzz")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("game", config, 7)
	require.NoError(t, err)

	second, err := manager.GetOrCreate("game", config, 8)
	require.NoError(t, err)
	assert.Same(t, first.Engine, second.Engine)
	assert.Equal(t, int64(7), second.Seed)
	assert.Equal(t, 1, manager.Count())
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	_, err := manager.Create("gone", createTestConfig(), 1)
	require.NoError(t, err)

	require.NoError(t, manager.Delete("GONE"))
	assert.ErrorIs(t, manager.Delete("gone"), ErrSessionNotFound)
	assert.Equal(t, 0, manager.Count())
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		s, err := manager.Create(fmt.Sprintf("list-%d", i), config, int64(i))
		require.NoError(t, err)
		ids[s.ID] = true
	}

	sessions := manager.List()
	require.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.True(t, ids[s.ID], s.ID)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	mock := quartz.NewMock(t)
	manager := NewManager(WithClock(mock))

	session, err := manager.Create("access-test", createTestConfig(), 1)
	require.NoError(t, err)
	originalTime := session.LastAccessedAt

	mock.Advance(time.Minute)
	require.NoError(t, manager.UpdateLastAccessed("ACCESS-TEST"))

	updated, err := manager.Get("access-test")
	require.NoError(t, err)
	assert.Equal(t, originalTime.Add(time.Minute), updated.LastAccessedAt)

	assert.ErrorIs(t, manager.UpdateLastAccessed("missing"), ErrSessionNotFound)

	// Earlier copies keep the time they were taken at
	assert.Equal(t, originalTime, session.LastAccessedAt)
}

func TestManager_ConcurrentTouchAndRead(t *testing.T) {
	manager := NewManager()
	_, err := manager.Create("race", createTestConfig(), 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = manager.UpdateLastAccessed("race")
				s, err := manager.Get("RACE")
				if assert.NoError(t, err) {
					assert.False(t, s.LastAccessedAt.Before(s.CreatedAt))
				}
				for _, listed := range manager.List() {
					_ = listed.LastAccessedAt.String()
				}
			}
		}()
	}
	wg.Wait()
}

func TestManager_CleanupExpired(t *testing.T) {
	mock := quartz.NewMock(t)
	manager := NewManager(WithClock(mock))
	config := createTestConfig()

	_, err := manager.Create("expired", config, 1)
	require.NoError(t, err)

	mock.Advance(90 * time.Minute)
	_, err = manager.Create("active", config, 2)
	require.NoError(t, err)

	mock.Advance(30 * time.Minute)
	removed := manager.CleanupExpiredSessions(time.Hour)
	assert.Equal(t, 1, removed)

	_, err = manager.Get("expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get("active")
	assert.NoError(t, err)
}

func TestManager_RunCleanup(t *testing.T) {
	t.Run("disabled without a ttl", func(t *testing.T) {
		manager := NewManager()
		assert.NoError(t, manager.RunCleanup(context.Background(), 0, time.Second))
	})

	t.Run("removes expired sessions on tick", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		mock := quartz.NewMock(t)
		manager := NewManager(WithClock(mock))
		_, err := manager.Create("stale", createTestConfig(), 1)
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			done <- manager.RunCleanup(ctx, time.Hour, 15*time.Minute)
		}()

		// Every advance lands exactly on the next tick once the ticker exists
		require.Eventually(t, func() bool {
			mock.Advance(15 * time.Minute).MustWait(ctx)
			return manager.Count() == 0
		}, 2*time.Second, 10*time.Millisecond)

		cancel()
		assert.NoError(t, <-done)
	})
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("c-%d", id%50)
			_, err := manager.GetOrCreate(sessionID, config, int64(id))
			if err != nil && err != ErrSessionAlreadyExists {
				errs <- err
			}
			_ = manager.UpdateLastAccessed(sessionID)
			manager.List()
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	assert.Equal(t, 50, manager.Count())
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, err := manager.Create("iso-1", config, 5)
	require.NoError(t, err)
	session2, err := manager.Create("iso-2", config, 5)
	require.NoError(t, err)

	require.NoError(t, session1.Engine.Start())
	_, err = session1.Engine.AttemptPlacement(0, 0)
	require.NoError(t, err)

	assert.Equal(t, engine.StatusNotStarted, session2.Engine.GetStatus())
	assert.Equal(t, 0, session2.Engine.Board().OccupiedCount())
	assert.Equal(t, 1, session1.Engine.Board().OccupiedCount())
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config, int64(i))
		require.NoError(t, err)

		assert.False(t, generatedIDs[session.ID], "duplicate session ID %s", session.ID)
		generatedIDs[session.ID] = true

		assert.Len(t, session.ID, 4)
		assert.Equal(t, strings.ToLower(session.ID), session.ID)
	}
}
