package ports

import (
	"context"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/domain/rows"
)

// BoardRepository persists whole boards. Create and Replace run as single
// all-or-nothing transactions; Replace rebuilds every child row of the board
// from the submitted payload (replace-all-children, never a diff).
type BoardRepository interface {
	List(ctx context.Context) ([]entities.BoardSummary, error)
	Get(ctx context.Context, setID string) (*rows.BoardPayload, error)
	Create(ctx context.Context, payload *rows.BoardPayload) error
	Replace(ctx context.Context, payload *rows.BoardPayload) error
	GetTasks(ctx context.Context, cardID string) ([]rows.TaskRow, []rows.ConnectionRow, error)
	GetImage(ctx context.Context, cardID string) (*entities.ImageData, error)
	AddImage(ctx context.Context, cardID string, img entities.ImageData) (string, error)
}

// ContactRepository persists address-book entries.
type ContactRepository interface {
	List(ctx context.Context) ([]entities.Contact, error)
	Create(ctx context.Context, contact *entities.Contact) error
	Update(ctx context.Context, contact *entities.Contact) error
	Delete(ctx context.Context, id string) error
}

// LegendRepository persists color legends.
type LegendRepository interface {
	List(ctx context.Context) ([]entities.ColorLegend, error)
	Create(ctx context.Context, legend *entities.ColorLegend) error
	Update(ctx context.Context, legend *entities.ColorLegend) error
	Delete(ctx context.Context, id string) error
}

// DocumentRepository persists file references attached to boards.
type DocumentRepository interface {
	List(ctx context.Context, setID string) ([]entities.Document, error)
	Create(ctx context.Context, doc *entities.Document) error
}

// AppParamRepository persists application-wide settings rows.
type AppParamRepository interface {
	GetLanguage(ctx context.Context) (string, error)
	SetLanguage(ctx context.Context, language string) error
}

// TileRepository stores downloaded map tiles.
type TileRepository interface {
	Exists(ctx context.Context, zoom, x, y int) (bool, error)
	Insert(ctx context.Context, zoom, x, y int, image []byte) error
	Get(ctx context.Context, zoom, x, y int) ([]byte, error)
}
