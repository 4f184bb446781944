package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cardwall/core/internal/application/services"
	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/logger"
)

// ContactHandler handles address-book requests.
type ContactHandler struct {
	contactService *services.ContactService
	logger         *logger.Logger
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(contactService *services.ContactService, logger *logger.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// ListContacts handles GET /api/contacts.
func (h *ContactHandler) ListContacts(c echo.Context) error {
	contacts, err := h.contactService.ListContacts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contacts)
}

// CreateContact handles POST /api/contacts.
func (h *ContactHandler) CreateContact(c echo.Context) error {
	var contact entities.Contact
	if err := c.Bind(&contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := c.Validate(&contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.contactService.CreateContact(c.Request().Context(), &contact); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contact)
}

// UpdateContact handles PUT /api/contacts/:id.
func (h *ContactHandler) UpdateContact(c echo.Context) error {
	var contact entities.Contact
	if err := c.Bind(&contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	contact.ID = c.Param("id")
	if err := c.Validate(&contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.contactService.UpdateContact(c.Request().Context(), &contact); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/contacts/:id.
func (h *ContactHandler) DeleteContact(c echo.Context) error {
	if err := h.contactService.DeleteContact(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true})
}

// LibraryHandler handles color legends, documents and application
// parameters.
type LibraryHandler struct {
	libraryService *services.LibraryService
	logger         *logger.Logger
}

// NewLibraryHandler creates a new library handler.
func NewLibraryHandler(libraryService *services.LibraryService, logger *logger.Logger) *LibraryHandler {
	return &LibraryHandler{
		libraryService: libraryService,
		logger:         logger,
	}
}

// ListLegends handles GET /api/color-legends.
func (h *LibraryHandler) ListLegends(c echo.Context) error {
	legends, err := h.libraryService.ListLegends(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, legends)
}

// CreateLegend handles POST /api/color-legends.
func (h *LibraryHandler) CreateLegend(c echo.Context) error {
	var legend entities.ColorLegend
	if err := c.Bind(&legend); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.libraryService.CreateLegend(c.Request().Context(), &legend); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, legend)
}

// UpdateLegend handles PUT /api/color-legends/:id.
func (h *LibraryHandler) UpdateLegend(c echo.Context) error {
	var legend entities.ColorLegend
	if err := c.Bind(&legend); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	legend.ID = c.Param("id")

	if err := h.libraryService.UpdateLegend(c.Request().Context(), &legend); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, legend)
}

// DeleteLegend handles DELETE /api/color-legends/:id.
func (h *LibraryHandler) DeleteLegend(c echo.Context) error {
	if err := h.libraryService.DeleteLegend(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true})
}

// ListDocuments handles GET /api/documents/:setId.
func (h *LibraryHandler) ListDocuments(c echo.Context) error {
	docs, err := h.libraryService.ListDocuments(c.Request().Context(), c.Param("setId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, docs)
}

// CreateDocument handles POST /api/documents.
func (h *LibraryHandler) CreateDocument(c echo.Context) error {
	var doc entities.Document
	if err := c.Bind(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if doc.SetID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "setId is required")
	}

	if err := h.libraryService.CreateDocument(c.Request().Context(), &doc); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

// LanguageResponse carries the stored UI language.
type LanguageResponse struct {
	Language string `json:"language"`
}

// GetLanguage handles GET /api/app-params/language.
func (h *LibraryHandler) GetLanguage(c echo.Context) error {
	language, err := h.libraryService.GetLanguage(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, LanguageResponse{Language: language})
}

// SetLanguage handles POST /api/app-params/language.
func (h *LibraryHandler) SetLanguage(c echo.Context) error {
	var req LanguageResponse
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.libraryService.SetLanguage(c.Request().Context(), req.Language); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true})
}
