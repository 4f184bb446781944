package repository

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/domain/rows"
	"github.com/cardwall/core/internal/infrastructure/database"
	"github.com/cardwall/core/internal/infrastructure/logger"
	"github.com/cardwall/core/internal/ports"
)

// BoardRepositoryImpl implements the BoardRepository interface. Card images
// are stored as raw bytes in a side-table and travel base64-encoded on the
// wire; the encode/decode happens here and nowhere else.
type BoardRepositoryImpl struct {
	manager *database.Manager
	logger  *logger.Logger
}

// NewBoardRepository creates a new board repository.
func NewBoardRepository(manager *database.Manager, log *logger.Logger) ports.BoardRepository {
	return &BoardRepositoryImpl{
		manager: manager,
		logger:  log.WithComponent("board_repository"),
	}
}

func (r *BoardRepositoryImpl) List(ctx context.Context) ([]entities.BoardSummary, error) {
	db, err := active(r.manager)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, name, created_at FROM card_sets ORDER BY created_at DESC`

	summaries := []entities.BoardSummary{}
	if err := db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return summaries, nil
}

// Create inserts the board header and every child row in one transaction.
func (r *BoardRepositoryImpl) Create(ctx context.Context, payload *rows.BoardPayload) error {
	db, err := activeDB(r.manager)
	if err != nil {
		return err
	}

	err = db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := `INSERT INTO card_sets (id, name, created_at) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, query, payload.ID, payload.Name, entities.NowMillis()); err != nil {
			return fmt.Errorf("insert board header: %w", err)
		}
		return r.insertChildren(ctx, tx, payload)
	})
	if err != nil {
		r.logger.LogBoardSave(payload.ID, len(payload.Cards), len(payload.Connections), len(payload.Groups), err)
		return err
	}

	r.logger.LogBoardSave(payload.ID, len(payload.Cards), len(payload.Connections), len(payload.Groups), nil)
	return nil
}

// Replace rebuilds the board from the payload: the header name is updated and
// every child row is deleted and re-inserted inside one transaction. The
// side-tables go before the cards they reference.
func (r *BoardRepositoryImpl) Replace(ctx context.Context, payload *rows.BoardPayload) error {
	db, err := activeDB(r.manager)
	if err != nil {
		return err
	}

	err = db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var name string
		if err := tx.QueryRowxContext(ctx, `SELECT name FROM card_sets WHERE id = $1`, payload.ID).Scan(&name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entities.ErrBoardNotFound
			}
			return fmt.Errorf("get board header: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE card_sets SET name = $1 WHERE id = $2`, payload.Name, payload.ID); err != nil {
			return fmt.Errorf("update board name: %w", err)
		}

		deletes := []string{
			`DELETE FROM image_cards WHERE set_id = $1`,
			`DELETE FROM location_cards WHERE set_id = $1`,
			`DELETE FROM itineraire_cards WHERE set_id = $1`,
			`DELETE FROM cards WHERE set_id = $1`,
			`DELETE FROM connections WHERE set_id = $1`,
			`DELETE FROM groups_table WHERE set_id = $1`,
			`DELETE FROM group_connections WHERE set_id = $1`,
			`DELETE FROM task_connections WHERE set_id = $1`,
			`DELETE FROM tasks WHERE set_id = $1`,
		}
		for _, query := range deletes {
			if _, err := tx.ExecContext(ctx, query, payload.ID); err != nil {
				return fmt.Errorf("clear board children: %w", err)
			}
		}

		return r.insertChildren(ctx, tx, payload)
	})
	if err != nil {
		r.logger.LogBoardSave(payload.ID, len(payload.Cards), len(payload.Connections), len(payload.Groups), err)
		return err
	}

	r.logger.LogBoardSave(payload.ID, len(payload.Cards), len(payload.Connections), len(payload.Groups), nil)
	return nil
}

func (r *BoardRepositoryImpl) insertChildren(ctx context.Context, tx *sqlx.Tx, payload *rows.BoardPayload) error {
	cardQuery := `
		INSERT INTO cards (id, set_id, title, content, position_x, position_y, color,
			is_expanded, due_date, status, budget_type, budget_data, card_type, group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	for i := range payload.Cards {
		card := &payload.Cards[i]
		if _, err := tx.ExecContext(ctx, cardQuery,
			card.ID, payload.ID, card.Title, card.Content,
			card.PositionX, card.PositionY, card.Color, card.IsExpanded,
			card.DueDate, card.Status, card.BudgetType, card.BudgetData,
			card.CardType, card.GroupID,
		); err != nil {
			return fmt.Errorf("insert card %s: %w", card.ID, err)
		}
		if err := r.insertCardPayload(ctx, tx, payload.ID, card); err != nil {
			return err
		}
	}

	taskQuery := `
		INSERT INTO tasks (id, card_id, set_id, name, due_date, is_completed, completed_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, task := range payload.Tasks {
		if _, err := tx.ExecContext(ctx, taskQuery,
			task.ID, task.CardID, payload.ID, task.Name,
			task.DueDate, task.IsCompleted, task.CompletedDate,
		); err != nil {
			return fmt.Errorf("insert task %s: %w", task.ID, err)
		}
	}

	taskConnQuery := `
		INSERT INTO task_connections (start_id, end_id, set_id, style, color)
		VALUES ($1, $2, $3, $4, $5)`
	for _, conn := range payload.TaskConnections {
		// Edges still being drawn can arrive with one end unset; they are
		// not persistable and are skipped without failing the save.
		if conn.StartID == "" || conn.EndID == "" {
			r.logger.Warnw("Skipping incomplete task connection",
				"set_id", payload.ID, "start_id", conn.StartID, "end_id", conn.EndID)
			continue
		}
		if _, err := tx.ExecContext(ctx, taskConnQuery,
			conn.StartID, conn.EndID, payload.ID, conn.Style, conn.Color,
		); err != nil {
			return fmt.Errorf("insert task connection: %w", err)
		}
	}

	connQuery := `
		INSERT INTO connections (start_id, end_id, set_id, style, color)
		VALUES ($1, $2, $3, $4, $5)`
	for _, conn := range payload.Connections {
		if _, err := tx.ExecContext(ctx, connQuery,
			conn.StartID, conn.EndID, payload.ID, conn.Style, conn.Color,
		); err != nil {
			return fmt.Errorf("insert connection: %w", err)
		}
	}

	groupQuery := `
		INSERT INTO groups_table (id, set_id, name, bounds_x, bounds_y, bounds_width,
			bounds_height, is_minimized, original_width, original_height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, group := range payload.Groups {
		if _, err := tx.ExecContext(ctx, groupQuery,
			group.ID, payload.ID, group.Name, group.BoundsX, group.BoundsY,
			group.BoundsWidth, group.BoundsHeight, group.IsMinimized,
			group.OriginalWidth, group.OriginalHeight,
		); err != nil {
			return fmt.Errorf("insert group %s: %w", group.ID, err)
		}
	}

	groupConnQuery := `
		INSERT INTO group_connections (start_id, end_id, set_id, style, color)
		VALUES ($1, $2, $3, $4, $5)`
	for _, conn := range payload.GroupConnections {
		if _, err := tx.ExecContext(ctx, groupConnQuery,
			conn.StartID, conn.EndID, payload.ID, conn.Style, conn.Color,
		); err != nil {
			return fmt.Errorf("insert group connection: %w", err)
		}
	}

	return nil
}

func (r *BoardRepositoryImpl) insertCardPayload(ctx context.Context, tx *sqlx.Tx, setID string, card *rows.CardRow) error {
	switch card.CardType {
	case string(entities.CardTypeImage):
		if card.ImageData == nil {
			return nil
		}
		raw, err := base64.StdEncoding.DecodeString(*card.ImageData)
		if err != nil {
			return fmt.Errorf("decode image for card %s: %w", card.ID, err)
		}
		mime := ""
		if card.MimeType != nil {
			mime = *card.MimeType
		}
		query := `INSERT INTO image_cards (card_id, set_id, image_data, mime_type) VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, query, card.ID, setID, raw, mime); err != nil {
			return fmt.Errorf("insert image card %s: %w", card.ID, err)
		}
	case string(entities.CardTypeLocation):
		if card.LocationData == nil {
			return nil
		}
		query := `INSERT INTO location_cards (card_id, set_id, location_data) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, query, card.ID, setID, *card.LocationData); err != nil {
			return fmt.Errorf("insert location card %s: %w", card.ID, err)
		}
	case string(entities.CardTypeItineraire):
		if card.ItineraireData == nil {
			return nil
		}
		query := `INSERT INTO itineraire_cards (card_id, set_id, itineraire_data) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, query, card.ID, setID, *card.ItineraireData); err != nil {
			return fmt.Errorf("insert itineraire card %s: %w", card.ID, err)
		}
	}
	return nil
}

// Get loads the whole board. Structured side-payloads are merged back onto
// their card rows so the wire shape matches what was saved.
func (r *BoardRepositoryImpl) Get(ctx context.Context, setID string) (*rows.BoardPayload, error) {
	db, err := active(r.manager)
	if err != nil {
		return nil, err
	}

	payload := &rows.BoardPayload{
		ID:               setID,
		Cards:            []rows.CardRow{},
		Connections:      []rows.ConnectionRow{},
		Groups:           []rows.GroupRow{},
		GroupConnections: []rows.ConnectionRow{},
		Tasks:            []rows.TaskRow{},
		TaskConnections:  []rows.ConnectionRow{},
	}

	headerQuery := `SELECT name FROM card_sets WHERE id = $1`
	if err := db.GetContext(ctx, &payload.Name, headerQuery, setID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrBoardNotFound
		}
		return nil, fmt.Errorf("get board header: %w", err)
	}

	cardQuery := `
		SELECT id, set_id, title, content, position_x, position_y, color, is_expanded,
			due_date, status, budget_type, budget_data, card_type, group_id
		FROM cards WHERE set_id = $1`
	if err := db.SelectContext(ctx, &payload.Cards, cardQuery, setID); err != nil {
		return nil, fmt.Errorf("get cards: %w", err)
	}
	for i := range payload.Cards {
		if err := r.mergeCardPayload(ctx, db, setID, &payload.Cards[i]); err != nil {
			return nil, err
		}
	}

	connQuery := `SELECT start_id, end_id, set_id, style, color FROM connections WHERE set_id = $1`
	if err := db.SelectContext(ctx, &payload.Connections, connQuery, setID); err != nil {
		return nil, fmt.Errorf("get connections: %w", err)
	}

	groupQuery := `
		SELECT id, set_id, name, bounds_x, bounds_y, bounds_width, bounds_height,
			is_minimized, original_width, original_height
		FROM groups_table WHERE set_id = $1`
	if err := db.SelectContext(ctx, &payload.Groups, groupQuery, setID); err != nil {
		return nil, fmt.Errorf("get groups: %w", err)
	}

	groupConnQuery := `SELECT start_id, end_id, set_id, style, color FROM group_connections WHERE set_id = $1`
	if err := db.SelectContext(ctx, &payload.GroupConnections, groupConnQuery, setID); err != nil {
		return nil, fmt.Errorf("get group connections: %w", err)
	}

	taskQuery := `
		SELECT id, card_id, set_id, name, due_date, is_completed, completed_date
		FROM tasks WHERE set_id = $1`
	if err := db.SelectContext(ctx, &payload.Tasks, taskQuery, setID); err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}

	taskConnQuery := `SELECT start_id, end_id, set_id, style, color FROM task_connections WHERE set_id = $1`
	if err := db.SelectContext(ctx, &payload.TaskConnections, taskConnQuery, setID); err != nil {
		return nil, fmt.Errorf("get task connections: %w", err)
	}

	return payload, nil
}

func (r *BoardRepositoryImpl) mergeCardPayload(ctx context.Context, db *sqlx.DB, setID string, card *rows.CardRow) error {
	switch card.CardType {
	case string(entities.CardTypeImage):
		var row struct {
			ImageData []byte `db:"image_data"`
			MimeType  string `db:"mime_type"`
		}
		query := `SELECT image_data, mime_type FROM image_cards WHERE card_id = $1 AND set_id = $2`
		err := db.GetContext(ctx, &row, query, card.ID, setID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get image card %s: %w", card.ID, err)
		}
		encoded := base64.StdEncoding.EncodeToString(row.ImageData)
		card.ImageData = &encoded
		card.MimeType = &row.MimeType
	case string(entities.CardTypeLocation):
		var data string
		query := `SELECT location_data FROM location_cards WHERE card_id = $1 AND set_id = $2`
		err := db.GetContext(ctx, &data, query, card.ID, setID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get location card %s: %w", card.ID, err)
		}
		card.LocationData = &data
	case string(entities.CardTypeItineraire):
		var data string
		query := `SELECT itineraire_data FROM itineraire_cards WHERE card_id = $1 AND set_id = $2`
		err := db.GetContext(ctx, &data, query, card.ID, setID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get itineraire card %s: %w", card.ID, err)
		}
		card.ItineraireData = &data
	}
	return nil
}

// GetTasks returns the tasks of one checklist card together with the task
// connections touching them on either end.
func (r *BoardRepositoryImpl) GetTasks(ctx context.Context, cardID string) ([]rows.TaskRow, []rows.ConnectionRow, error) {
	db, err := active(r.manager)
	if err != nil {
		return nil, nil, err
	}

	taskQuery := `
		SELECT id, card_id, set_id, name, due_date, is_completed, completed_date
		FROM tasks WHERE card_id = $1`
	tasks := []rows.TaskRow{}
	if err := db.SelectContext(ctx, &tasks, taskQuery, cardID); err != nil {
		return nil, nil, fmt.Errorf("get tasks for card %s: %w", cardID, err)
	}

	connQuery := `
		SELECT start_id, end_id, set_id, style, color FROM task_connections
		WHERE start_id IN (SELECT id FROM tasks WHERE card_id = $1)
			OR end_id IN (SELECT id FROM tasks WHERE card_id = $2)`
	conns := []rows.ConnectionRow{}
	if err := db.SelectContext(ctx, &conns, connQuery, cardID, cardID); err != nil {
		return nil, nil, fmt.Errorf("get task connections for card %s: %w", cardID, err)
	}

	return tasks, conns, nil
}

func (r *BoardRepositoryImpl) GetImage(ctx context.Context, cardID string) (*entities.ImageData, error) {
	db, err := active(r.manager)
	if err != nil {
		return nil, err
	}

	var row struct {
		ImageData []byte `db:"image_data"`
		MimeType  string `db:"mime_type"`
	}
	query := `SELECT image_data, mime_type FROM image_cards WHERE card_id = $1`
	if err := db.GetContext(ctx, &row, query, cardID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrImageNotFound
		}
		return nil, fmt.Errorf("get image %s: %w", cardID, err)
	}

	return &entities.ImageData{
		Data:     base64.StdEncoding.EncodeToString(row.ImageData),
		MimeType: row.MimeType,
	}, nil
}

// AddImage stores an image outside the board save path, for cards that
// upload their picture before the first whole-board save. Returns the card
// id, generated when the caller did not supply one.
func (r *BoardRepositoryImpl) AddImage(ctx context.Context, cardID string, img entities.ImageData) (string, error) {
	db, err := active(r.manager)
	if err != nil {
		return "", err
	}

	if cardID == "" {
		cardID = uuid.New().String()
	}
	raw, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return "", fmt.Errorf("decode image for card %s: %w", cardID, err)
	}

	query := `
		INSERT INTO image_cards (card_id, set_id, image_data, mime_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (card_id, set_id) DO UPDATE SET image_data = excluded.image_data, mime_type = excluded.mime_type`
	if _, err := db.ExecContext(ctx, query, cardID, "", raw, img.MimeType); err != nil {
		return "", fmt.Errorf("insert image %s: %w", cardID, err)
	}
	return cardID, nil
}
