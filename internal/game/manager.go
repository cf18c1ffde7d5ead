package game

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Manager owns every live game. The map is guarded by its own lock while
// each engine serializes its own mutation, so actions against different
// games never contend.
type Manager struct {
	mu     sync.RWMutex
	games  map[string]*Engine
	cfg    Config
	logger *zap.Logger
}

// NewManager creates a game manager.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	return &Manager{
		games:  make(map[string]*Engine),
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGame starts a game for a room and returns the engine along with the
// initial per-viewer snapshots.
func (m *Manager) CreateGame(roomID string, seats []Seat) (*Engine, []MemberView, error) {
	engine, err := NewEngine(roomID, seats, m.cfg, m.logger)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	m.games[engine.ID()] = engine
	m.mu.Unlock()

	return engine, engine.Views(), nil
}

// GetGame returns a game by id.
func (m *Manager) GetGame(gameID string) (*Engine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	engine, ok := m.games[gameID]
	return engine, ok
}

// RemoveGame discards a game. Removing an unknown id is a no-op.
func (m *Manager) RemoveGame(gameID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; ok {
		delete(m.games, gameID)
		m.logger.Info("game removed", zap.String("game_id", gameID))
	}
}

// ApplyAction decodes and applies one externally submitted action. On
// success it returns the per-viewer snapshots computed under the game lock;
// on failure the returned error is a *RuleError for the requester.
func (m *Manager) ApplyAction(gameID, requesterID, actionName string, payload json.RawMessage) ([]MemberView, error) {
	m.mu.RLock()
	engine, ok := m.games[gameID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrGameNotFound
	}

	action, err := DecodeAction(actionName, payload)
	if err != nil {
		return nil, err
	}

	return engine.ApplyAction(requesterID, action)
}

// ActiveGameCount returns the number of live games.
func (m *Manager) ActiveGameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
