package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/database"
)

// active resolves the current connection from the manager. The connection can
// be swapped at runtime through the settings endpoint, so repositories never
// hold a *sqlx.DB of their own.
func active(m *database.Manager) (*sqlx.DB, error) {
	db := m.DB()
	if db == nil {
		return nil, entities.ErrDatabaseUnavailable
	}
	return db, nil
}

func activeDB(m *database.Manager) (*database.DB, error) {
	db := m.Current()
	if db == nil {
		return nil, entities.ErrDatabaseUnavailable
	}
	return db, nil
}
