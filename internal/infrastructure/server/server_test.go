package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardwall/core/internal/adapters/client"
	"github.com/cardwall/core/internal/application/store"
	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/config"
	"github.com/cardwall/core/internal/infrastructure/database"
	"github.com/cardwall/core/internal/infrastructure/logger"
	"github.com/cardwall/core/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "cardwall", Version: "test", Environment: "test"},
		Server: config.ServerConfig{Port: 0, BodyLimit: "50M"},
		Tiles: config.TilesConfig{
			OriginURL:       "http://127.0.0.1:0/%d/%d/%d.png",
			DownloadTimeout: time.Second,
		},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: "*",
			RateLimitRequests:  1000,
			RateLimitWindow:    time.Minute,
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	manager := database.NewManagerWithDB(database.FromSqlx(testutil.NewTestDB(t)))
	srv, err := New(testConfig(), manager, logger.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Echo())
	t.Cleanup(ts.Close)
	return ts
}

func newTestStore(t *testing.T, ts *httptest.Server) *store.Store {
	t.Helper()
	gw := client.NewWithClient(ts.URL, ts.Client(), logger.NewNop())
	return store.New(gw, logger.NewNop())
}

func TestBoardSaveLoadRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	s := newTestStore(t, ts)
	ctx := context.Background()

	due := "2026-09-01"
	status := entities.CardStatusTodo
	s.AddCard(entities.Card{
		ID: "c-std", Title: "Plan", Content: "notes",
		Position: entities.Position{X: 10, Y: 20}, Color: "#3b82f6",
		DueDate: &due, Status: &status, CardType: entities.CardTypeStandard,
	})

	bt := entities.BudgetTypeExpensesTracking
	s.AddCard(entities.Card{
		ID: "c-budget", Title: "Budget", CardType: entities.CardTypeBudget,
		BudgetType: &bt,
		Budget: &entities.BudgetData{
			TotalAmount: 500,
			Expenses:    []entities.Expense{{Description: "Hotel", Amount: 120}},
		},
	})

	s.AddCard(entities.Card{
		ID: "c-img", Title: "Photo", CardType: entities.CardTypeImage,
		Image: &entities.ImageData{
			Data:     base64.StdEncoding.EncodeToString([]byte("png-bytes")),
			MimeType: "image/png",
		},
	})

	s.AddCard(entities.Card{
		ID: "c-loc", Title: "Hotel", CardType: entities.CardTypeLocation,
		Location: &entities.LocationData{City: "Paris", Country: "France"},
	})

	s.AddCard(entities.Card{
		ID: "c-check", Title: "Packing", CardType: entities.CardTypeChecklist,
	})
	s.AddTask(entities.Task{ID: "t1", CardID: "c-check", Name: "pack"})
	s.AddTask(entities.Task{ID: "t2", CardID: "c-check", Name: "book"})
	s.AddTaskConnection("t1", "t2", entities.LineStyleDashed, "#ff0000")

	s.AddConnection("c-std", "c-budget", entities.LineStyleSolid, "#000000")
	groupID := s.CreateGroup(entities.Bounds{X: 0, Y: 0, Width: 100, Height: 100}, "Trip")

	setID, err := s.SaveToDB(ctx, "Vacation")
	require.NoError(t, err)
	require.NotEmpty(t, setID)

	// A fresh store sees exactly what was saved.
	fresh := newTestStore(t, ts)
	require.NoError(t, fresh.LoadFromDB(ctx, setID))

	cards := fresh.Cards()
	require.Len(t, cards, 5)

	byID := map[string]entities.Card{}
	for _, card := range cards {
		byID[card.ID] = card
	}

	std := byID["c-std"]
	assert.Equal(t, entities.Position{X: 10, Y: 20}, std.Position)
	require.NotNil(t, std.DueDate)
	assert.Equal(t, "2026-09-01", *std.DueDate)
	require.NotNil(t, std.Status)
	assert.Equal(t, entities.CardStatusTodo, *std.Status)

	budget := byID["c-budget"]
	require.NotNil(t, budget.Budget)
	assert.Equal(t, 500.0, budget.Budget.TotalAmount)
	require.Len(t, budget.Budget.Expenses, 1)
	assert.Equal(t, "Hotel", budget.Budget.Expenses[0].Description)

	img := byID["c-img"]
	require.NotNil(t, img.Image)
	decoded, err := base64.StdEncoding.DecodeString(img.Image.Data)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(decoded))

	loc := byID["c-loc"]
	require.NotNil(t, loc.Location)
	assert.Equal(t, "Paris", loc.Location.City)

	check := byID["c-check"]
	require.Len(t, check.Tasks, 2)

	tcs := fresh.TaskConnections()
	require.Len(t, tcs, 1)
	assert.Equal(t, "t1", tcs[0].Start)

	require.Len(t, fresh.Connections(), 1)
	groups := fresh.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, groupID, groups[0].ID)
	member := byID["c-std"]
	require.NotNil(t, member.GroupID, "group membership survives the round trip")
	assert.Equal(t, groupID, *member.GroupID)
}

func TestBoardUpdateReplacesChildren(t *testing.T) {
	ts := newTestServer(t)
	s := newTestStore(t, ts)
	ctx := context.Background()

	s.AddCard(entities.Card{ID: "c1", Title: "First", CardType: entities.CardTypeStandard})
	s.AddCard(entities.Card{ID: "c2", Title: "Second", CardType: entities.CardTypeStandard})
	s.AddConnection("c1", "c2", entities.LineStyleSolid, "#000000")

	setID, err := s.SaveToDB(ctx, "Board")
	require.NoError(t, err)

	s.DeleteCard("c2")
	_, err = s.SaveToDB(ctx, "Board renamed")
	require.NoError(t, err)

	fresh := newTestStore(t, ts)
	require.NoError(t, fresh.LoadFromDB(ctx, setID))
	assert.Len(t, fresh.Cards(), 1)
	assert.Empty(t, fresh.Connections())

	summaries, err := fresh.ListSets(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Board renamed", summaries[0].Name)
}

func TestLoadUnknownBoard(t *testing.T) {
	ts := newTestServer(t)
	s := newTestStore(t, ts)

	err := s.LoadFromDB(context.Background(), "missing")
	assert.ErrorIs(t, err, entities.ErrBoardNotFound)
}

func TestNotFoundBodyShape(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/sets/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "board not found", body["error"])
}

func TestLanguageEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/api/app-params/language")
	require.NoError(t, err)
	var lang map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lang))
	resp.Body.Close()
	assert.Equal(t, "fr", lang["language"])

	resp, err = ts.Client().Post(ts.URL+"/api/app-params/language", "application/json",
		strings.NewReader(`{"language":"en"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.Client().Post(ts.URL+"/api/app-params/language", "application/json",
		strings.NewReader(`{"language":"de"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unsupported language is rejected")
}

func TestContactValidation(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Post(ts.URL+"/api/contacts", "application/json",
		strings.NewReader(`{"title":"Dr.","firstName":"Jean"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "title outside the enum is rejected")

	resp, err = ts.Client().Post(ts.URL+"/api/contacts", "application/json",
		strings.NewReader(`{"title":"M.","firstName":"Jean","lastName":"Petit"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var contact entities.Contact
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&contact))
	assert.NotEmpty(t, contact.ID)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.Client().Get(ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
