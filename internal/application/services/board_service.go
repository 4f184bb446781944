package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/domain/rows"
	"github.com/cardwall/core/internal/infrastructure/logger"
	"github.com/cardwall/core/internal/ports"
)

// BoardService handles whole-board persistence.
type BoardService struct {
	boardRepo ports.BoardRepository
	logger    *logger.Logger
}

// NewBoardService creates a new board service.
func NewBoardService(boardRepo ports.BoardRepository, logger *logger.Logger) *BoardService {
	return &BoardService{
		boardRepo: boardRepo,
		logger:    logger,
	}
}

// ListBoards returns the saved-board summaries, newest first.
func (s *BoardService) ListBoards(ctx context.Context) ([]entities.BoardSummary, error) {
	return s.boardRepo.List(ctx)
}

// GetBoard loads one board with every child collection populated.
func (s *BoardService) GetBoard(ctx context.Context, setID string) (*rows.BoardPayload, error) {
	return s.boardRepo.Get(ctx, setID)
}

// CreateBoard stores a new board. A missing id is generated here so the
// client always gets one back.
func (s *BoardService) CreateBoard(ctx context.Context, payload *rows.BoardPayload) (string, error) {
	if payload.ID == "" {
		payload.ID = uuid.New().String()
	}
	if err := s.boardRepo.Create(ctx, payload); err != nil {
		return "", fmt.Errorf("create board: %w", err)
	}
	s.logger.Infow("Board created", "set_id", payload.ID, "name", payload.Name)
	return payload.ID, nil
}

// ReplaceBoard rebuilds an existing board from the payload.
func (s *BoardService) ReplaceBoard(ctx context.Context, setID string, payload *rows.BoardPayload) error {
	payload.ID = setID
	if err := s.boardRepo.Replace(ctx, payload); err != nil {
		return fmt.Errorf("replace board: %w", err)
	}
	s.logger.Infow("Board replaced", "set_id", setID, "name", payload.Name)
	return nil
}

// GetCardTasks returns one checklist card's tasks and the task connections
// touching them.
func (s *BoardService) GetCardTasks(ctx context.Context, cardID string) ([]rows.TaskRow, []rows.ConnectionRow, error) {
	return s.boardRepo.GetTasks(ctx, cardID)
}

// GetImage returns the stored picture of an image card.
func (s *BoardService) GetImage(ctx context.Context, cardID string) (*entities.ImageData, error) {
	return s.boardRepo.GetImage(ctx, cardID)
}

// AddImage stores an image card picture ahead of the next board save.
func (s *BoardService) AddImage(ctx context.Context, cardID string, img entities.ImageData) (string, error) {
	id, err := s.boardRepo.AddImage(ctx, cardID, img)
	if err != nil {
		return "", fmt.Errorf("add image: %w", err)
	}
	s.logger.Infow("Image stored", "card_id", id, "mime_type", img.MimeType)
	return id, nil
}
