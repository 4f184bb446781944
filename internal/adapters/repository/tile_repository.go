package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/database"
	"github.com/cardwall/core/internal/ports"
)

// TileRepositoryImpl implements the TileRepository interface. Tiles are
// immutable once stored; a re-download of the same coordinates is a no-op.
type TileRepositoryImpl struct {
	manager *database.Manager
}

// NewTileRepository creates a new tile repository.
func NewTileRepository(manager *database.Manager) ports.TileRepository {
	return &TileRepositoryImpl{manager: manager}
}

func (r *TileRepositoryImpl) Exists(ctx context.Context, zoom, x, y int) (bool, error) {
	db, err := active(r.manager)
	if err != nil {
		return false, err
	}

	var count int
	query := `SELECT COUNT(*) FROM map_tiles WHERE zoom = $1 AND x = $2 AND y = $3`
	if err := db.GetContext(ctx, &count, query, zoom, x, y); err != nil {
		return false, fmt.Errorf("check tile %d/%d/%d: %w", zoom, x, y, err)
	}
	return count > 0, nil
}

func (r *TileRepositoryImpl) Insert(ctx context.Context, zoom, x, y int, image []byte) error {
	db, err := active(r.manager)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO map_tiles (zoom, x, y, image) VALUES ($1, $2, $3, $4)
		ON CONFLICT (zoom, x, y) DO NOTHING`
	if _, err := db.ExecContext(ctx, query, zoom, x, y, image); err != nil {
		return fmt.Errorf("insert tile %d/%d/%d: %w", zoom, x, y, err)
	}
	return nil
}

func (r *TileRepositoryImpl) Get(ctx context.Context, zoom, x, y int) ([]byte, error) {
	db, err := active(r.manager)
	if err != nil {
		return nil, err
	}

	var image []byte
	query := `SELECT image FROM map_tiles WHERE zoom = $1 AND x = $2 AND y = $3`
	if err := db.GetContext(ctx, &image, query, zoom, x, y); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTileNotFound
		}
		return nil, fmt.Errorf("get tile %d/%d/%d: %w", zoom, x, y, err)
	}
	return image, nil
}
