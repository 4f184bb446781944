// Package http contains the echo handlers for the REST surface. Board
// save/load exchanges the flat row shapes from the rows package; the entity
// model never crosses this boundary.
package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardwall/core/internal/application/services"
	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/domain/rows"
	"github.com/cardwall/core/internal/infrastructure/logger"
)

// SaveResponse acknowledges a board save.
type SaveResponse struct {
	Success bool   `json:"success"`
	SetID   string `json:"setId"`
}

// MessageResponse is a generic acknowledgement body.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// BoardHandler handles board persistence requests.
type BoardHandler struct {
	boardService *services.BoardService
	logger       *logger.Logger
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(boardService *services.BoardService, logger *logger.Logger) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		logger:       logger,
	}
}

// ListBoards handles GET /api/card-sets.
func (h *BoardHandler) ListBoards(c echo.Context) error {
	summaries, err := h.boardService.ListBoards(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}

// GetBoard handles GET /api/sets/:id.
func (h *BoardHandler) GetBoard(c echo.Context) error {
	payload, err := h.boardService.GetBoard(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payload)
}

// CreateBoard handles POST /api/sets.
func (h *BoardHandler) CreateBoard(c echo.Context) error {
	var payload rows.BoardPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	setID, err := h.boardService.CreateBoard(c.Request().Context(), &payload)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SaveResponse{Success: true, SetID: setID})
}

// ReplaceBoard handles PUT /api/sets/:id.
func (h *BoardHandler) ReplaceBoard(c echo.Context) error {
	var payload rows.BoardPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	setID := c.Param("id")
	if err := h.boardService.ReplaceBoard(c.Request().Context(), setID, &payload); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SaveResponse{Success: true, SetID: setID})
}

// TasksResponse carries one card's tasks and the edges between them.
type TasksResponse struct {
	Tasks       []rows.TaskRow       `json:"tasks"`
	Connections []rows.ConnectionRow `json:"connections"`
}

// GetCardTasks handles GET /api/tasks/:cardId.
func (h *BoardHandler) GetCardTasks(c echo.Context) error {
	tasks, conns, err := h.boardService.GetCardTasks(c.Request().Context(), c.Param("cardId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TasksResponse{Tasks: tasks, Connections: conns})
}

// ImageRequest is the upload body for an image card picture.
type ImageRequest struct {
	CardID    string `json:"cardId"`
	ImageData string `json:"imageData" validate:"required"`
	MimeType  string `json:"mimeType" validate:"required"`
}

// AddImage handles POST /api/image-cards.
func (h *BoardHandler) AddImage(c echo.Context) error {
	var req ImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := h.boardService.AddImage(c.Request().Context(), req.CardID, entities.ImageData{
		Data:     req.ImageData,
		MimeType: req.MimeType,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "cardId": id})
}

// GetImage handles GET /api/image-cards/:cardId.
func (h *BoardHandler) GetImage(c echo.Context) error {
	img, err := h.boardService.GetImage(c.Request().Context(), c.Param("cardId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, img)
}
