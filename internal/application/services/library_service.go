package services

import (
	"context"
	"fmt"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/logger"
	"github.com/cardwall/core/internal/ports"
)

// ContactService handles the address book.
type ContactService struct {
	contactRepo ports.ContactRepository
	logger      *logger.Logger
}

// NewContactService creates a new contact service.
func NewContactService(contactRepo ports.ContactRepository, logger *logger.Logger) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		logger:      logger,
	}
}

func (s *ContactService) ListContacts(ctx context.Context) ([]entities.Contact, error) {
	return s.contactRepo.List(ctx)
}

func (s *ContactService) CreateContact(ctx context.Context, contact *entities.Contact) error {
	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	s.logger.Infow("Contact created", "contact_id", contact.ID)
	return nil
}

func (s *ContactService) UpdateContact(ctx context.Context, contact *entities.Contact) error {
	if err := s.contactRepo.Update(ctx, contact); err != nil {
		return err
	}
	s.logger.Infow("Contact updated", "contact_id", contact.ID)
	return nil
}

func (s *ContactService) DeleteContact(ctx context.Context, id string) error {
	if err := s.contactRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("Contact deleted", "contact_id", id)
	return nil
}

// LibraryService handles color legends, documents and application
// parameters, the small satellite resources around the boards.
type LibraryService struct {
	legendRepo ports.LegendRepository
	docRepo    ports.DocumentRepository
	paramRepo  ports.AppParamRepository
	logger     *logger.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(
	legendRepo ports.LegendRepository,
	docRepo ports.DocumentRepository,
	paramRepo ports.AppParamRepository,
	logger *logger.Logger,
) *LibraryService {
	return &LibraryService{
		legendRepo: legendRepo,
		docRepo:    docRepo,
		paramRepo:  paramRepo,
		logger:     logger,
	}
}

func (s *LibraryService) ListLegends(ctx context.Context) ([]entities.ColorLegend, error) {
	return s.legendRepo.List(ctx)
}

func (s *LibraryService) CreateLegend(ctx context.Context, legend *entities.ColorLegend) error {
	if err := s.legendRepo.Create(ctx, legend); err != nil {
		return fmt.Errorf("create legend: %w", err)
	}
	s.logger.Infow("Legend created", "legend_id", legend.ID, "name", legend.Name)
	return nil
}

func (s *LibraryService) UpdateLegend(ctx context.Context, legend *entities.ColorLegend) error {
	return s.legendRepo.Update(ctx, legend)
}

func (s *LibraryService) DeleteLegend(ctx context.Context, id string) error {
	return s.legendRepo.Delete(ctx, id)
}

func (s *LibraryService) ListDocuments(ctx context.Context, setID string) ([]entities.Document, error) {
	return s.docRepo.List(ctx, setID)
}

func (s *LibraryService) CreateDocument(ctx context.Context, doc *entities.Document) error {
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	s.logger.Infow("Document created", "document_id", doc.ID, "set_id", doc.SetID)
	return nil
}

func (s *LibraryService) GetLanguage(ctx context.Context) (string, error) {
	return s.paramRepo.GetLanguage(ctx)
}

// SetLanguage stores the UI language after checking it against the supported
// set.
func (s *LibraryService) SetLanguage(ctx context.Context, language string) error {
	if !entities.IsSupportedLanguage(language) {
		return entities.ErrInvalidLanguage
	}
	if err := s.paramRepo.SetLanguage(ctx, language); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	s.logger.Infow("Language changed", "language", language)
	return nil
}
