package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePayloadKeepsOnlyMatchingPayload(t *testing.T) {
	bt := BudgetTypeTotalAvailable
	card := Card{
		ID:         "c1",
		CardType:   CardTypeLocation,
		BudgetType: &bt,
		Budget:     &BudgetData{TotalAmount: 100},
		Image:      &ImageData{Data: "abc"},
		Location:   &LocationData{City: "Paris"},
		Itineraire: &ItineraireData{},
		Tasks:      []Task{{ID: "t1"}},
	}

	card.NormalizePayload()

	assert.NotNil(t, card.Location)
	assert.Nil(t, card.Budget)
	assert.Nil(t, card.BudgetType)
	assert.Nil(t, card.Image)
	assert.Nil(t, card.Itineraire)
	assert.Nil(t, card.Tasks)
}

func TestNormalizePayloadDefaultsType(t *testing.T) {
	card := Card{ID: "c1"}
	card.NormalizePayload()
	assert.Equal(t, CardTypeStandard, card.CardType)
}

func TestInBoundsInclusive(t *testing.T) {
	bounds := Bounds{X: 10, Y: 10, Width: 100, Height: 50}

	inside := Card{Position: Position{X: 50, Y: 30}}
	onEdge := Card{Position: Position{X: 110, Y: 60}}
	onCorner := Card{Position: Position{X: 10, Y: 10}}
	outside := Card{Position: Position{X: 111, Y: 30}}

	assert.True(t, inside.InBounds(bounds))
	assert.True(t, onEdge.InBounds(bounds))
	assert.True(t, onCorner.InBounds(bounds))
	assert.False(t, outside.InBounds(bounds))
}

func TestTaskComplete(t *testing.T) {
	task := Task{ID: "t1", Name: "pack"}

	task.Complete(true)
	assert.True(t, task.IsCompleted)
	require.NotNil(t, task.CompletedDate)
	stamp, err := time.Parse(time.RFC3339, *task.CompletedDate)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), stamp, time.Minute)

	task.Complete(false)
	assert.False(t, task.IsCompleted)
	assert.Nil(t, task.CompletedDate)
}

func TestTaskConnectionIsComplete(t *testing.T) {
	full := TaskConnection{SetID: "s1", Start: "t1", End: "t2", Style: LineStyleSolid, Color: "#000"}
	assert.True(t, full.IsComplete())

	missingEnd := full
	missingEnd.End = ""
	assert.False(t, missingEnd.IsComplete())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, CardTypeItineraire.IsValid())
	assert.False(t, CardType("poster").IsValid())
	assert.True(t, CardStatusInProgress.IsValid())
	assert.False(t, CardStatus("paused").IsValid())
	assert.True(t, LineStyleDashed.IsValid())
	assert.False(t, LineStyle("dotted").IsValid())
	assert.True(t, BudgetTypeExpensesTracking.IsValid())
	assert.False(t, BudgetType("misc").IsValid())
}

func TestSupportedLanguages(t *testing.T) {
	assert.True(t, IsSupportedLanguage("fr"))
	assert.True(t, IsSupportedLanguage("es"))
	assert.False(t, IsSupportedLanguage("de"))
	assert.False(t, IsSupportedLanguage(""))
}
