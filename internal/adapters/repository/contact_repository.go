package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/database"
	"github.com/cardwall/core/internal/ports"
)

// ContactRepositoryImpl implements the ContactRepository interface.
type ContactRepositoryImpl struct {
	manager *database.Manager
}

// NewContactRepository creates a new contact repository.
func NewContactRepository(manager *database.Manager) ports.ContactRepository {
	return &ContactRepositoryImpl{manager: manager}
}

func (r *ContactRepositoryImpl) List(ctx context.Context) ([]entities.Contact, error) {
	db, err := active(r.manager)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, title, first_name, last_name, company, position, street_number,
			street, postal_code, city, country, email, phone
		FROM contacts ORDER BY last_name, first_name`

	contacts := []entities.Contact{}
	if err := db.SelectContext(ctx, &contacts, query); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepositoryImpl) Create(ctx context.Context, contact *entities.Contact) error {
	db, err := active(r.manager)
	if err != nil {
		return err
	}

	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}

	query := `
		INSERT INTO contacts (id, title, first_name, last_name, company, position,
			street_number, street, postal_code, city, country, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	if _, err := db.ExecContext(ctx, query,
		contact.ID, contact.Title, contact.FirstName, contact.LastName,
		contact.Company, contact.Position, contact.StreetNumber, contact.Street,
		contact.PostalCode, contact.City, contact.Country, contact.Email, contact.Phone,
	); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (r *ContactRepositoryImpl) Update(ctx context.Context, contact *entities.Contact) error {
	db, err := active(r.manager)
	if err != nil {
		return err
	}

	query := `
		UPDATE contacts
		SET title = $1, first_name = $2, last_name = $3, company = $4, position = $5,
			street_number = $6, street = $7, postal_code = $8, city = $9, country = $10,
			email = $11, phone = $12
		WHERE id = $13`

	result, err := db.ExecContext(ctx, query,
		contact.Title, contact.FirstName, contact.LastName, contact.Company,
		contact.Position, contact.StreetNumber, contact.Street, contact.PostalCode,
		contact.City, contact.Country, contact.Email, contact.Phone, contact.ID,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if affected == 0 {
		return entities.ErrContactNotFound
	}
	return nil
}

func (r *ContactRepositoryImpl) Delete(ctx context.Context, id string) error {
	db, err := active(r.manager)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if affected == 0 {
		return entities.ErrContactNotFound
	}
	return nil
}
