package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardwall/core/internal/domain/entities"
)

func TestContactCRUD(t *testing.T) {
	manager := newTestManager(t)
	repo := NewContactRepository(manager)
	ctx := context.Background()

	contact := &entities.Contact{
		Title:     "Mme.",
		FirstName: "Claire",
		LastName:  "Moreau",
		City:      "Lyon",
		Email:     "claire@example.fr",
	}
	require.NoError(t, repo.Create(ctx, contact))
	require.NotEmpty(t, contact.ID, "id is generated when missing")

	contacts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Moreau", contacts[0].LastName)

	contact.City = "Paris"
	require.NoError(t, repo.Update(ctx, contact))
	contacts, _ = repo.List(ctx)
	assert.Equal(t, "Paris", contacts[0].City)

	require.NoError(t, repo.Delete(ctx, contact.ID))
	contacts, _ = repo.List(ctx)
	assert.Empty(t, contacts)
}

func TestContactUpdateAndDeleteUnknown(t *testing.T) {
	manager := newTestManager(t)
	repo := NewContactRepository(manager)
	ctx := context.Background()

	err := repo.Update(ctx, &entities.Contact{ID: "missing", Title: "M."})
	assert.ErrorIs(t, err, entities.ErrContactNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), entities.ErrContactNotFound)
}

func TestContactListSorted(t *testing.T) {
	manager := newTestManager(t)
	repo := NewContactRepository(manager)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Contact{Title: "M.", LastName: "Zidane"}))
	require.NoError(t, repo.Create(ctx, &entities.Contact{Title: "M.", LastName: "Aubert"}))

	contacts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Aubert", contacts[0].LastName)
}

func TestLegendCRUD(t *testing.T) {
	manager := newTestManager(t)
	repo := NewLegendRepository(manager)
	ctx := context.Background()

	legend := &entities.ColorLegend{
		Name:     "Priorities",
		Mappings: map[string]string{"#ef4444": "urgent", "#3b82f6": "info"},
	}
	require.NoError(t, repo.Create(ctx, legend))
	require.NotEmpty(t, legend.ID)
	assert.NotZero(t, legend.CreatedAt)

	legends, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, legends, 1)
	assert.Equal(t, "urgent", legends[0].Mappings["#ef4444"])

	legend.Mappings["#22c55e"] = "done"
	require.NoError(t, repo.Update(ctx, legend))
	legends, _ = repo.List(ctx)
	assert.Len(t, legends[0].Mappings, 3)

	require.NoError(t, repo.Delete(ctx, legend.ID))
	assert.ErrorIs(t, repo.Delete(ctx, legend.ID), entities.ErrLegendNotFound)
}

func TestDocumentListScopedToBoard(t *testing.T) {
	manager := newTestManager(t)
	repo := NewDocumentRepository(manager)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.Document{
		SetID: "set-1", DisplayName: "Tickets", FilePath: "/files/tickets.pdf",
	}))
	require.NoError(t, repo.Create(ctx, &entities.Document{
		SetID: "set-2", DisplayName: "Visa", FilePath: "/files/visa.pdf",
	}))

	docs, err := repo.List(ctx, "set-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Tickets", docs[0].DisplayName)
	assert.NotZero(t, docs[0].CreatedAt)
}

func TestLanguageDefaultAndUpsert(t *testing.T) {
	manager := newTestManager(t)
	repo := NewAppParamRepository(manager)
	ctx := context.Background()

	lang, err := repo.GetLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fr", lang, "unset language falls back to French")

	require.NoError(t, repo.SetLanguage(ctx, "en"))
	lang, err = repo.GetLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	require.NoError(t, repo.SetLanguage(ctx, "es"))
	lang, _ = repo.GetLanguage(ctx)
	assert.Equal(t, "es", lang)
}

func TestTileInsertExistsGet(t *testing.T) {
	manager := newTestManager(t)
	repo := NewTileRepository(manager)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, 12, 2074, 1409)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Insert(ctx, 12, 2074, 1409, []byte("tile-png")))
	exists, err = repo.Exists(ctx, 12, 2074, 1409)
	require.NoError(t, err)
	assert.True(t, exists)

	image, err := repo.Get(ctx, 12, 2074, 1409)
	require.NoError(t, err)
	assert.Equal(t, []byte("tile-png"), image)

	// Re-inserting the same coordinates is a no-op, not an error.
	require.NoError(t, repo.Insert(ctx, 12, 2074, 1409, []byte("other")))
	image, _ = repo.Get(ctx, 12, 2074, 1409)
	assert.Equal(t, []byte("tile-png"), image)

	_, err = repo.Get(ctx, 1, 0, 0)
	assert.ErrorIs(t, err, entities.ErrTileNotFound)
}
