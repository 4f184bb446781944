package ports

import (
	"context"

	"github.com/cardwall/core/internal/domain/entities"
)

// BoardGateway is the store's view of the backend: whole-board load and save
// plus the saved-board list. Load with an empty setID returns an empty board
// without touching the backend.
type BoardGateway interface {
	List(ctx context.Context) ([]entities.BoardSummary, error)
	Load(ctx context.Context, setID string) (*entities.Board, error)
	// Save submits the entire board. When update is false a new board row is
	// created; when true every existing child row of the board is replaced.
	// It returns the board id assigned by the caller or generated server-side.
	Save(ctx context.Context, board *entities.Board, update bool) (string, error)
}
