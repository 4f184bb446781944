package rows

import (
	"encoding/json"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/logger"
)

// Mapper restores entities from their row shapes. Decode failures of
// structured payload columns are absorbed: the card comes back with a safe
// default payload and the failure is logged. Callers never see a parse error
// from this layer.
type Mapper struct {
	logger *logger.Logger
}

// NewMapper creates a row mapper.
func NewMapper(log *logger.Logger) *Mapper {
	return &Mapper{logger: log.WithComponent("rows")}
}

// CardFromRow restores a card from its row shape, merging any side-table
// payload the row carries.
func (m *Mapper) CardFromRow(row CardRow) entities.Card {
	card := entities.Card{
		ID:         row.ID,
		Title:      row.Title,
		Content:    row.Content,
		Position:   entities.Position{X: row.PositionX, Y: row.PositionY},
		Color:      row.Color,
		IsExpanded: row.IsExpanded != 0,
		DueDate:    row.DueDate,
		CardType:   entities.CardType(row.CardType),
		GroupID:    row.GroupID,
	}
	if card.CardType == "" {
		card.CardType = entities.CardTypeStandard
	}
	if row.Status != nil {
		s := entities.CardStatus(*row.Status)
		card.Status = &s
	}

	if row.BudgetType != nil && *row.BudgetType != "" {
		bt := entities.BudgetType(*row.BudgetType)
		card.BudgetType = &bt
		card.Budget = m.decodeBudget(row.ID, row.BudgetData)
	}
	if card.CardType == entities.CardTypeImage && row.ImageData != nil {
		img := entities.ImageData{Data: *row.ImageData}
		if row.MimeType != nil {
			img.MimeType = *row.MimeType
		}
		card.Image = &img
	}
	if card.CardType == entities.CardTypeLocation && row.LocationData != nil {
		card.Location = m.decodeLocation(row.ID, *row.LocationData)
	}
	if card.CardType == entities.CardTypeItineraire && row.ItineraireData != nil {
		card.Itineraire = m.decodeItineraire(row.ID, *row.ItineraireData)
	}

	return card
}

// decodeBudget parses a stored budget column. A nil or malformed column
// yields the empty budget, never an error.
func (m *Mapper) decodeBudget(cardID string, raw *string) *entities.BudgetData {
	empty := &entities.BudgetData{Expenses: []entities.Expense{}}
	if raw == nil || *raw == "" {
		return empty
	}

	var budget entities.BudgetData
	if err := decodeTolerant(*raw, &budget); err != nil {
		m.logger.Warnw("Failed to parse budget data, substituting empty budget",
			"card_id", cardID, "error", err)
		return empty
	}
	if budget.Expenses == nil {
		budget.Expenses = []entities.Expense{}
	}
	return &budget
}

func (m *Mapper) decodeLocation(cardID, raw string) *entities.LocationData {
	var loc entities.LocationData
	if err := decodeTolerant(raw, &loc); err != nil {
		m.logger.Warnw("Failed to parse location data, dropping payload",
			"card_id", cardID, "error", err)
		return nil
	}
	return &loc
}

func (m *Mapper) decodeItineraire(cardID, raw string) *entities.ItineraireData {
	var it entities.ItineraireData
	if err := decodeTolerant(raw, &it); err != nil {
		m.logger.Warnw("Failed to parse itineraire data, dropping payload",
			"card_id", cardID, "error", err)
		return nil
	}
	return &it
}

// decodeTolerant unmarshals an encoded payload column, tolerating one extra
// level of string quoting left behind by double-encoding producers.
func decodeTolerant(raw string, v interface{}) error {
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	var inner string
	if json.Unmarshal([]byte(raw), &inner) == nil {
		return json.Unmarshal([]byte(inner), v)
	}
	return err
}

// BoardFromPayload restores a full board from its wire shape.
func (m *Mapper) BoardFromPayload(p *BoardPayload) entities.Board {
	board := entities.Board{
		ID:   p.ID,
		Name: p.Name,
	}
	for _, row := range p.Cards {
		board.Cards = append(board.Cards, m.CardFromRow(row))
	}
	for _, row := range p.Connections {
		board.Connections = append(board.Connections, ConnectionFromRow(row))
	}
	for _, row := range p.Groups {
		board.Groups = append(board.Groups, GroupFromRow(row))
	}
	for _, row := range p.GroupConnections {
		board.GroupConnections = append(board.GroupConnections, GroupConnectionFromRow(row))
	}
	for _, row := range p.Tasks {
		board.Tasks = append(board.Tasks, TaskFromRow(row))
	}
	for _, row := range p.TaskConnections {
		board.TaskConnections = append(board.TaskConnections, TaskConnectionFromRow(row))
	}
	return board
}

// BoardToPayload flattens a full board to its wire shape. Incomplete task
// connections are carried as-is; the storage layer decides whether to skip
// them.
func BoardToPayload(b *entities.Board) BoardPayload {
	p := BoardPayload{
		ID:               b.ID,
		Name:             b.Name,
		Cards:            []CardRow{},
		Connections:      []ConnectionRow{},
		Groups:           []GroupRow{},
		GroupConnections: []ConnectionRow{},
		Tasks:            []TaskRow{},
		TaskConnections:  []ConnectionRow{},
	}
	for i := range b.Cards {
		p.Cards = append(p.Cards, CardToRow(&b.Cards[i], b.ID))
	}
	for i := range b.Connections {
		p.Connections = append(p.Connections, ConnectionToRow(&b.Connections[i], b.ID))
	}
	for i := range b.Groups {
		p.Groups = append(p.Groups, GroupToRow(&b.Groups[i], b.ID))
	}
	for i := range b.GroupConnections {
		p.GroupConnections = append(p.GroupConnections, GroupConnectionToRow(&b.GroupConnections[i], b.ID))
	}
	for i := range b.Tasks {
		p.Tasks = append(p.Tasks, TaskToRow(&b.Tasks[i], b.ID))
	}
	for i := range b.TaskConnections {
		tc := b.TaskConnections[i]
		if tc.SetID == "" {
			tc.SetID = b.ID
		}
		p.TaskConnections = append(p.TaskConnections, TaskConnectionToRow(&tc))
	}
	return p
}
