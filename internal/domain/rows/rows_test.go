package rows

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/logger"
)

func TestCardRowUnmarshalAcceptsEncodedAndDecodedPayloads(t *testing.T) {
	encoded := `{
		"id": "c1", "set_id": "s1", "title": "Budget", "card_type": "budget",
		"budget_type": "expenses-tracking",
		"budget_data": "{\"totalAmount\":100,\"availableAmount\":0,\"expenses\":[]}"
	}`
	var fromString CardRow
	require.NoError(t, json.Unmarshal([]byte(encoded), &fromString))
	require.NotNil(t, fromString.BudgetData)
	assert.JSONEq(t, `{"totalAmount":100,"availableAmount":0,"expenses":[]}`, *fromString.BudgetData)

	decoded := `{
		"id": "c1", "set_id": "s1", "title": "Budget", "card_type": "budget",
		"budget_type": "expenses-tracking",
		"budget_data": {"totalAmount":100,"availableAmount":0,"expenses":[]}
	}`
	var fromObject CardRow
	require.NoError(t, json.Unmarshal([]byte(decoded), &fromObject))
	require.NotNil(t, fromObject.BudgetData)
	assert.JSONEq(t, *fromString.BudgetData, *fromObject.BudgetData)
}

func TestCardRowUnmarshalNullAndEmptyPayloads(t *testing.T) {
	var row CardRow
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","budget_data":null,"location_data":""}`), &row))
	assert.Nil(t, row.BudgetData)
	assert.Nil(t, row.LocationData)
}

func TestCardToRowDefaults(t *testing.T) {
	card := entities.Card{ID: "c1", Title: "Untitled"}
	row := CardToRow(&card, "s1")

	assert.Equal(t, "standard", row.CardType)
	assert.Equal(t, "s1", row.SetID)
	assert.Nil(t, row.BudgetData)
}

func TestCardToRowSanitizesBudget(t *testing.T) {
	bt := entities.BudgetTypeTotalAvailable
	card := entities.Card{
		ID: "c1", CardType: entities.CardTypeBudget,
		BudgetType: &bt,
		Budget:     &entities.BudgetData{TotalAmount: 300},
	}
	row := CardToRow(&card, "s1")

	require.NotNil(t, row.BudgetData)
	var stored entities.BudgetData
	require.NoError(t, json.Unmarshal([]byte(*row.BudgetData), &stored))
	assert.NotNil(t, stored.Expenses, "expenses list is always a list, never null")
	assert.Equal(t, 300.0, stored.TotalAmount)
}

func TestMapperDecodesMalformedBudgetToDefault(t *testing.T) {
	m := NewMapper(logger.NewNop())
	bt := "expenses-tracking"
	bad := "{not json"
	row := CardRow{ID: "c1", CardType: "budget", BudgetType: &bt, BudgetData: &bad}

	card := m.CardFromRow(row)

	require.NotNil(t, card.Budget, "a corrupt column degrades to an empty budget")
	assert.Zero(t, card.Budget.TotalAmount)
	assert.NotNil(t, card.Budget.Expenses)
	assert.Empty(t, card.Budget.Expenses)
}

func TestMapperDecodesDoubleEncodedLocation(t *testing.T) {
	m := NewMapper(logger.NewNop())
	double, err := json.Marshal(`{"city":"Nice","country":"France"}`)
	require.NoError(t, err)
	data := string(double)
	row := CardRow{ID: "c1", CardType: "location", LocationData: &data}

	card := m.CardFromRow(row)

	require.NotNil(t, card.Location)
	assert.Equal(t, "Nice", card.Location.City)
}

func TestMapperDropsMalformedLocation(t *testing.T) {
	m := NewMapper(logger.NewNop())
	bad := "not json at all"
	row := CardRow{ID: "c1", CardType: "location", LocationData: &bad}

	card := m.CardFromRow(row)
	assert.Nil(t, card.Location)
}

func TestGroupRowRoundTrip(t *testing.T) {
	group := entities.Group{
		ID:   "g1",
		Name: "Trip",
		Bounds: entities.Bounds{
			X: 5, Y: 10, Width: 400, Height: 300,
		},
		IsMinimized:    true,
		OriginalBounds: &entities.Size{Width: 600, Height: 450},
	}

	restored := GroupFromRow(GroupToRow(&group, "s1"))
	assert.Equal(t, group, restored)
}

func TestGroupFromRowPartialOriginalBounds(t *testing.T) {
	w := 600
	row := GroupRow{ID: "g1", OriginalWidth: &w}

	group := GroupFromRow(row)
	assert.Nil(t, group.OriginalBounds, "one stored dimension is as good as none")
}

func TestBoardToPayloadNonNilCollections(t *testing.T) {
	payload := BoardToPayload(&entities.Board{ID: "s1", Name: "Empty"})

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), `"cards":null`)
	assert.Contains(t, string(encoded), `"cards":[]`)
	assert.Contains(t, string(encoded), `"taskConnections":[]`)
}

func TestBoardToPayloadStampsTaskConnectionSetID(t *testing.T) {
	board := entities.Board{
		ID: "s1",
		TaskConnections: []entities.TaskConnection{
			{Start: "t1", End: "t2", Style: entities.LineStyleSolid},
		},
	}

	payload := BoardToPayload(&board)
	require.Len(t, payload.TaskConnections, 1)
	assert.Equal(t, "s1", payload.TaskConnections[0].SetID)
}

func TestTaskRowCompletionRoundTrip(t *testing.T) {
	completed := "2026-08-01T10:00:00Z"
	task := entities.Task{
		ID: "t1", CardID: "c1", Name: "pack",
		IsCompleted: true, CompletedDate: &completed,
	}

	restored := TaskFromRow(TaskToRow(&task, "s1"))
	assert.Equal(t, task, restored)
}
