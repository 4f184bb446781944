package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cardwall/core/internal/application/services"
	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/logger"
)

// TileHandler serves locally mirrored map tiles.
type TileHandler struct {
	tileService *services.TileService
	logger      *logger.Logger
}

// NewTileHandler creates a new tile handler.
func NewTileHandler(tileService *services.TileService, logger *logger.Logger) *TileHandler {
	return &TileHandler{
		tileService: tileService,
		logger:      logger,
	}
}

// VerifyTilesRequest asks for a batch of tiles at one zoom level.
type VerifyTilesRequest struct {
	Zoom  int             `json:"zoom" validate:"min=0,max=19"`
	Tiles []entities.Tile `json:"tiles" validate:"required"`
}

// VerifyTilesResponse lists the tiles available locally after the check.
type VerifyTilesResponse struct {
	Tiles []entities.TileRef `json:"tiles"`
}

// VerifyTiles handles POST /api/verifyTiles.
func (h *TileHandler) VerifyTiles(c echo.Context) error {
	var req VerifyTilesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	refs := h.tileService.VerifyTiles(c.Request().Context(), req.Zoom, req.Tiles)
	return c.JSON(http.StatusOK, VerifyTilesResponse{Tiles: refs})
}

// GetTile handles GET /api/tiles/:zoom/:x/:y.
func (h *TileHandler) GetTile(c echo.Context) error {
	zoom, err := strconv.Atoi(c.Param("zoom"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid zoom")
	}
	x, err := strconv.Atoi(c.Param("x"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid x")
	}
	y, err := strconv.Atoi(c.Param("y"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid y")
	}

	image, err := h.tileService.GetTile(c.Request().Context(), zoom, x, y)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", image)
}
