package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardwall/core/internal/application/services"
	"github.com/cardwall/core/internal/infrastructure/config"
	"github.com/cardwall/core/internal/infrastructure/logger"
)

// SettingsHandler exposes the runtime database connection settings.
type SettingsHandler struct {
	settingsService *services.SettingsService
	logger          *logger.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settingsService *services.SettingsService, logger *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          logger,
	}
}

// GetDBConfig handles GET /api/db-config. The password is never echoed back.
func (h *SettingsHandler) GetDBConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, h.settingsService.CurrentDBConfig())
}

// UpdateDBConfig handles POST /api/db-config.
func (h *SettingsHandler) UpdateDBConfig(c echo.Context) error {
	var cfg config.DBFileConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.settingsService.UpdateDBConfig(&cfg); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Database connection updated"})
}
