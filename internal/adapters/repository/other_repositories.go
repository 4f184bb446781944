package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/database"
	"github.com/cardwall/core/internal/ports"
)

// LegendRepositoryImpl implements the LegendRepository interface. The
// color-to-meaning map is stored as one encoded text column.
type LegendRepositoryImpl struct {
	manager *database.Manager
}

// NewLegendRepository creates a new legend repository.
func NewLegendRepository(manager *database.Manager) ports.LegendRepository {
	return &LegendRepositoryImpl{manager: manager}
}

type legendRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Mappings  string `db:"mappings"`
	CreatedAt int64  `db:"created_at"`
}

func (r *LegendRepositoryImpl) List(ctx context.Context) ([]entities.ColorLegend, error) {
	db, err := active(r.manager)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, name, mappings, created_at FROM color_legends ORDER BY created_at DESC`

	legendRows := []legendRow{}
	if err := db.SelectContext(ctx, &legendRows, query); err != nil {
		return nil, fmt.Errorf("list legends: %w", err)
	}

	legends := []entities.ColorLegend{}
	for _, row := range legendRows {
		legend := entities.ColorLegend{
			ID:        row.ID,
			Name:      row.Name,
			Mappings:  map[string]string{},
			CreatedAt: row.CreatedAt,
		}
		// A corrupt mappings column degrades to an empty legend rather than
		// failing the whole list.
		_ = json.Unmarshal([]byte(row.Mappings), &legend.Mappings)
		legends = append(legends, legend)
	}
	return legends, nil
}

func (r *LegendRepositoryImpl) Create(ctx context.Context, legend *entities.ColorLegend) error {
	db, err := active(r.manager)
	if err != nil {
		return err
	}

	if legend.ID == "" {
		legend.ID = uuid.New().String()
	}
	if legend.CreatedAt == 0 {
		legend.CreatedAt = entities.NowMillis()
	}
	encoded, err := json.Marshal(legend.Mappings)
	if err != nil {
		return fmt.Errorf("encode legend mappings: %w", err)
	}

	query := `INSERT INTO color_legends (id, name, mappings, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := db.ExecContext(ctx, query, legend.ID, legend.Name, string(encoded), legend.CreatedAt); err != nil {
		return fmt.Errorf("create legend: %w", err)
	}
	return nil
}

func (r *LegendRepositoryImpl) Update(ctx context.Context, legend *entities.ColorLegend) error {
	db, err := active(r.manager)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(legend.Mappings)
	if err != nil {
		return fmt.Errorf("encode legend mappings: %w", err)
	}

	query := `UPDATE color_legends SET name = $1, mappings = $2 WHERE id = $3`
	result, err := db.ExecContext(ctx, query, legend.Name, string(encoded), legend.ID)
	if err != nil {
		return fmt.Errorf("update legend: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update legend: %w", err)
	}
	if affected == 0 {
		return entities.ErrLegendNotFound
	}
	return nil
}

func (r *LegendRepositoryImpl) Delete(ctx context.Context, id string) error {
	db, err := active(r.manager)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM color_legends WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete legend: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete legend: %w", err)
	}
	if affected == 0 {
		return entities.ErrLegendNotFound
	}
	return nil
}

// DocumentRepositoryImpl implements the DocumentRepository interface.
type DocumentRepositoryImpl struct {
	manager *database.Manager
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(manager *database.Manager) ports.DocumentRepository {
	return &DocumentRepositoryImpl{manager: manager}
}

func (r *DocumentRepositoryImpl) List(ctx context.Context, setID string) ([]entities.Document, error) {
	db, err := active(r.manager)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, set_id, display_name, file_path, comment, created_at
		FROM documents WHERE set_id = $1 ORDER BY created_at DESC`

	docs := []entities.Document{}
	if err := db.SelectContext(ctx, &docs, query, setID); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *entities.Document) error {
	db, err := active(r.manager)
	if err != nil {
		return err
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.CreatedAt == 0 {
		doc.CreatedAt = entities.NowMillis()
	}

	query := `
		INSERT INTO documents (id, set_id, display_name, file_path, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := db.ExecContext(ctx, query,
		doc.ID, doc.SetID, doc.DisplayName, doc.FilePath, doc.Comment, doc.CreatedAt,
	); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// AppParamRepositoryImpl implements the AppParamRepository interface over a
// generic key/value settings table.
type AppParamRepositoryImpl struct {
	manager *database.Manager
}

// NewAppParamRepository creates a new application parameter repository.
func NewAppParamRepository(manager *database.Manager) ports.AppParamRepository {
	return &AppParamRepositoryImpl{manager: manager}
}

const languageParamKey = "language"

// GetLanguage returns the stored UI language, falling back to French when
// nothing has been stored yet.
func (r *AppParamRepositoryImpl) GetLanguage(ctx context.Context) (string, error) {
	db, err := active(r.manager)
	if err != nil {
		return "", err
	}

	var language string
	query := `SELECT param_value FROM app_params WHERE param_key = $1`
	if err := db.GetContext(ctx, &language, query, languageParamKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "fr", nil
		}
		return "", fmt.Errorf("get language: %w", err)
	}
	return language, nil
}

func (r *AppParamRepositoryImpl) SetLanguage(ctx context.Context, language string) error {
	db, err := active(r.manager)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO app_params (param_key, param_value) VALUES ($1, $2)
		ON CONFLICT (param_key) DO UPDATE SET param_value = excluded.param_value`
	if _, err := db.ExecContext(ctx, query, languageParamKey, language); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	return nil
}
