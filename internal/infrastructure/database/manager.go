package database

import (
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/cardwall/core/internal/infrastructure/config"
)

// Manager owns the live database handle and lets the settings endpoint swap
// it for a new connection at runtime. Repositories hold the manager, not the
// handle, so a reconnect is visible to every subsequent query.
type Manager struct {
	mu  sync.RWMutex
	db  *DB
	cfg config.DatabaseConfig
}

// NewManager opens the initial connection.
func NewManager(cfg config.DatabaseConfig) (*Manager, error) {
	db, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Manager{db: db, cfg: cfg}, nil
}

// NewManagerWithDB wraps an already-open handle. Used by tests.
func NewManagerWithDB(db *DB) *Manager {
	return &Manager{db: db}
}

// DB returns the current sqlx handle, nil while no connection is active.
func (m *Manager) DB() *sqlx.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.db == nil {
		return nil
	}
	return m.db.DB
}

// Current returns the current wrapped handle.
func (m *Manager) Current() *DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// Config returns the configuration of the current connection.
func (m *Manager) Config() config.DatabaseConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Reconnect closes the current connection and opens a new one with the given
// config. On failure the old connection is already gone; callers are expected
// to retry with a known-good config.
func (m *Manager) Reconnect(cfg config.DatabaseConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		m.db.Close()
	}

	db, err := New(cfg)
	if err != nil {
		m.db = nil
		return err
	}

	m.db = db
	m.cfg = cfg
	return nil
}

// Close closes the current connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
