package repository

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/domain/rows"
	"github.com/cardwall/core/internal/infrastructure/database"
	"github.com/cardwall/core/internal/infrastructure/logger"
	"github.com/cardwall/core/internal/testutil"
)

func newTestManager(t *testing.T) *database.Manager {
	t.Helper()
	return database.NewManagerWithDB(database.FromSqlx(testutil.NewTestDB(t)))
}

func strPtr(s string) *string { return &s }

func samplePayload(setID string) *rows.BoardPayload {
	imageB64 := base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	return &rows.BoardPayload{
		ID:   setID,
		Name: "Vacation",
		Cards: []rows.CardRow{
			{
				ID: "c-std", SetID: setID, Title: "Plan", Content: "notes",
				PositionX: 10, PositionY: 20, Color: "#3b82f6",
				DueDate: strPtr("2026-09-01"), Status: strPtr("todo"),
				CardType: "standard",
			},
			{
				ID: "c-budget", SetID: setID, Title: "Budget",
				BudgetType: strPtr("expenses-tracking"),
				BudgetData: strPtr(`{"totalAmount":500,"availableAmount":0,"expenses":[]}`),
				CardType:   "budget",
			},
			{
				ID: "c-img", SetID: setID, Title: "Photo", CardType: "image",
				ImageData: &imageB64, MimeType: strPtr("image/png"),
			},
			{
				ID: "c-loc", SetID: setID, Title: "Hotel", CardType: "location",
				LocationData: strPtr(`{"city":"Paris","country":"France"}`),
			},
			{
				ID: "c-itin", SetID: setID, Title: "Drive", CardType: "itineraire",
				ItineraireData: strPtr(`{"start":{"address":"Lyon"},"end":{"address":"Paris"}}`),
			},
			{
				ID: "c-check", SetID: setID, Title: "Packing", CardType: "checklist",
				GroupID: strPtr("g1"),
			},
		},
		Connections: []rows.ConnectionRow{
			{StartID: "c-std", EndID: "c-budget", SetID: setID, Style: "solid", Color: "#000000"},
		},
		Groups: []rows.GroupRow{
			{
				ID: "g1", SetID: setID, Name: "Trip", BoundsX: 0, BoundsY: 0,
				BoundsWidth: 400, BoundsHeight: 300,
				OriginalWidth: intPtr(400), OriginalHeight: intPtr(300),
			},
		},
		GroupConnections: []rows.ConnectionRow{},
		Tasks: []rows.TaskRow{
			{ID: "t1", CardID: "c-check", SetID: setID, Name: "pack", IsCompleted: 1, CompletedDate: strPtr("2026-08-01T10:00:00Z")},
			{ID: "t2", CardID: "c-check", SetID: setID, Name: "book"},
		},
		TaskConnections: []rows.ConnectionRow{
			{StartID: "t1", EndID: "t2", SetID: setID, Style: "dashed", Color: "#ff0000"},
		},
	}
}

func intPtr(v int) *int { return &v }

func TestBoardCreateAndGetRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	repo := NewBoardRepository(manager, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, samplePayload("set-1")))

	got, err := repo.Get(ctx, "set-1")
	require.NoError(t, err)
	assert.Equal(t, "Vacation", got.Name)
	assert.Len(t, got.Cards, 6)
	assert.Len(t, got.Connections, 1)
	assert.Len(t, got.Groups, 1)
	assert.Len(t, got.Tasks, 2)
	assert.Len(t, got.TaskConnections, 1)

	byID := map[string]rows.CardRow{}
	for _, card := range got.Cards {
		byID[card.ID] = card
	}

	require.NotNil(t, byID["c-img"].ImageData)
	decoded, err := base64.StdEncoding.DecodeString(*byID["c-img"].ImageData)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(decoded))
	require.NotNil(t, byID["c-img"].MimeType)
	assert.Equal(t, "image/png", *byID["c-img"].MimeType)

	require.NotNil(t, byID["c-loc"].LocationData)
	assert.JSONEq(t, `{"city":"Paris","country":"France"}`, *byID["c-loc"].LocationData)
	require.NotNil(t, byID["c-itin"].ItineraireData)
	require.NotNil(t, byID["c-budget"].BudgetData)
	require.NotNil(t, byID["c-check"].GroupID)
	assert.Equal(t, "g1", *byID["c-check"].GroupID)

	group := got.Groups[0]
	require.NotNil(t, group.OriginalWidth)
	assert.Equal(t, 400, *group.OriginalWidth)
}

func TestBoardCreateSkipsIncompleteTaskConnections(t *testing.T) {
	manager := newTestManager(t)
	repo := NewBoardRepository(manager, logger.NewNop())
	ctx := context.Background()

	payload := samplePayload("set-1")
	payload.TaskConnections = append(payload.TaskConnections,
		rows.ConnectionRow{StartID: "t1", EndID: "", SetID: "set-1", Style: "solid"})

	require.NoError(t, repo.Create(ctx, payload))

	got, err := repo.Get(ctx, "set-1")
	require.NoError(t, err)
	assert.Len(t, got.TaskConnections, 1, "half-drawn edges never reach storage")
}

func TestBoardCreateRollsBackOnBadPayload(t *testing.T) {
	manager := newTestManager(t)
	repo := NewBoardRepository(manager, logger.NewNop())
	ctx := context.Background()

	payload := samplePayload("set-1")
	payload.Cards[2].ImageData = strPtr("%%% not base64 %%%")

	require.Error(t, repo.Create(ctx, payload))

	_, err := repo.Get(ctx, "set-1")
	assert.ErrorIs(t, err, entities.ErrBoardNotFound, "a failed save leaves no header behind")

	summaries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestBoardReplaceRebuildsChildren(t *testing.T) {
	manager := newTestManager(t)
	repo := NewBoardRepository(manager, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, samplePayload("set-1")))

	replacement := &rows.BoardPayload{
		ID:   "set-1",
		Name: "Vacation v2",
		Cards: []rows.CardRow{
			{ID: "c-only", SetID: "set-1", Title: "Survivor", CardType: "standard"},
		},
		Connections:      []rows.ConnectionRow{},
		Groups:           []rows.GroupRow{},
		GroupConnections: []rows.ConnectionRow{},
		Tasks:            []rows.TaskRow{},
		TaskConnections:  []rows.ConnectionRow{},
	}
	require.NoError(t, repo.Replace(ctx, replacement))

	got, err := repo.Get(ctx, "set-1")
	require.NoError(t, err)
	assert.Equal(t, "Vacation v2", got.Name)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, "c-only", got.Cards[0].ID)
	assert.Empty(t, got.Connections)
	assert.Empty(t, got.Groups)
	assert.Empty(t, got.Tasks)
	assert.Empty(t, got.TaskConnections)
}

func TestBoardReplaceUnknownBoard(t *testing.T) {
	manager := newTestManager(t)
	repo := NewBoardRepository(manager, logger.NewNop())

	err := repo.Replace(context.Background(), samplePayload("missing"))
	assert.ErrorIs(t, err, entities.ErrBoardNotFound)
}

func TestBoardGetUnknownBoard(t *testing.T) {
	manager := newTestManager(t)
	repo := NewBoardRepository(manager, logger.NewNop())

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, entities.ErrBoardNotFound)
}

func TestBoardList(t *testing.T) {
	manager := newTestManager(t)
	repo := NewBoardRepository(manager, logger.NewNop())
	ctx := context.Background()

	first := samplePayload("set-1")
	require.NoError(t, repo.Create(ctx, first))
	second := samplePayload("set-2")
	second.Name = "Moving"
	// Distinct ids per board; the sample shares card ids otherwise.
	for i := range second.Cards {
		second.Cards[i].ID += "-b"
		if second.Cards[i].GroupID != nil {
			second.Cards[i].GroupID = strPtr("g1-b")
		}
	}
	second.Groups[0].ID = "g1-b"
	second.Connections[0].StartID += "-b"
	second.Connections[0].EndID += "-b"
	second.Tasks[0].ID = "t1-b"
	second.Tasks[0].CardID += "-b"
	second.Tasks[1].ID = "t2-b"
	second.Tasks[1].CardID += "-b"
	second.TaskConnections[0].StartID = "t1-b"
	second.TaskConnections[0].EndID = "t2-b"
	require.NoError(t, repo.Create(ctx, second))

	summaries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	for _, s := range summaries {
		assert.NotZero(t, s.CreatedAt)
	}
}

func TestGetTasksForCard(t *testing.T) {
	manager := newTestManager(t)
	repo := NewBoardRepository(manager, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, samplePayload("set-1")))

	tasks, conns, err := repo.GetTasks(ctx, "c-check")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	require.Len(t, conns, 1)
	assert.Equal(t, "t1", conns[0].StartID)

	tasks, conns, err = repo.GetTasks(ctx, "c-std")
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Empty(t, conns)
}

func TestImageAddAndGet(t *testing.T) {
	manager := newTestManager(t)
	repo := NewBoardRepository(manager, logger.NewNop())
	ctx := context.Background()

	data := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	id, err := repo.AddImage(ctx, "", entities.ImageData{Data: data, MimeType: "image/jpeg"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	img, err := repo.GetImage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, data, img.Data)
	assert.Equal(t, "image/jpeg", img.MimeType)

	_, err = repo.GetImage(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrImageNotFound)
}

func TestRepositoriesWithoutConnection(t *testing.T) {
	manager := database.NewManagerWithDB(nil)
	repo := NewBoardRepository(manager, logger.NewNop())

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, entities.ErrDatabaseUnavailable)
}
