// Package rows defines the flat shapes that cross the persistence boundary.
// The JSON wire format of the REST API and the relational column format are
// deliberately the same shape, so every struct here carries both json and db
// tags. Structured card payloads (budget, location, itineraire) travel as a
// single encoded text column.
package rows

import (
	"encoding/json"

	"github.com/cardwall/core/internal/domain/entities"
)

// CardRow is a card flattened to its column shape. The image, location and
// itineraire fields have no column in the cards table; they ride along on the
// wire and land in their side-tables.
type CardRow struct {
	ID         string  `json:"id" db:"id"`
	SetID      string  `json:"set_id" db:"set_id"`
	Title      string  `json:"title" db:"title"`
	Content    string  `json:"content" db:"content"`
	PositionX  int     `json:"position_x" db:"position_x"`
	PositionY  int     `json:"position_y" db:"position_y"`
	Color      string  `json:"color" db:"color"`
	IsExpanded int     `json:"is_expanded" db:"is_expanded"`
	DueDate    *string `json:"due_date" db:"due_date"`
	Status     *string `json:"status" db:"status"`
	BudgetType *string `json:"budget_type" db:"budget_type"`
	BudgetData *string `json:"budget_data" db:"budget_data"`
	CardType   string  `json:"card_type" db:"card_type"`
	GroupID    *string `json:"group_id" db:"group_id"`

	ImageData      *string `json:"image_data,omitempty" db:"-"`
	MimeType       *string `json:"mime_type,omitempty" db:"-"`
	LocationData   *string `json:"location_data,omitempty" db:"-"`
	ItineraireData *string `json:"itineraire_data,omitempty" db:"-"`
}

// cardRowAlias avoids recursion in UnmarshalJSON. The raw fields accept
// either an encoded string or an already-decoded object for the structured
// payload columns; some producers hand JSON columns back pre-parsed.
type cardRowAlias struct {
	ID         string  `json:"id"`
	SetID      string  `json:"set_id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	PositionX  int     `json:"position_x"`
	PositionY  int     `json:"position_y"`
	Color      string  `json:"color"`
	IsExpanded int     `json:"is_expanded"`
	DueDate    *string `json:"due_date"`
	Status     *string `json:"status"`
	BudgetType *string `json:"budget_type"`
	CardType   string  `json:"card_type"`
	GroupID    *string `json:"group_id"`
	ImageData  *string `json:"image_data"`
	MimeType   *string `json:"mime_type"`

	BudgetData     json.RawMessage `json:"budget_data"`
	LocationData   json.RawMessage `json:"location_data"`
	ItineraireData json.RawMessage `json:"itineraire_data"`
}

// UnmarshalJSON accepts structured payload fields both as encoded strings and
// as plain objects, normalizing them to their encoded text form.
func (r *CardRow) UnmarshalJSON(data []byte) error {
	var a cardRowAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	*r = CardRow{
		ID:         a.ID,
		SetID:      a.SetID,
		Title:      a.Title,
		Content:    a.Content,
		PositionX:  a.PositionX,
		PositionY:  a.PositionY,
		Color:      a.Color,
		IsExpanded: a.IsExpanded,
		DueDate:    a.DueDate,
		Status:     a.Status,
		BudgetType: a.BudgetType,
		CardType:   a.CardType,
		GroupID:    a.GroupID,
		ImageData:  a.ImageData,
		MimeType:   a.MimeType,
	}
	r.BudgetData = normalizeRawJSON(a.BudgetData)
	r.LocationData = normalizeRawJSON(a.LocationData)
	r.ItineraireData = normalizeRawJSON(a.ItineraireData)
	return nil
}

// normalizeRawJSON turns a raw JSON value into the encoded text stored in the
// column: a JSON string is unquoted (its value already is the encoded text),
// any other non-null value is kept verbatim as encoded JSON.
func normalizeRawJSON(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s == "" {
				return nil
			}
			return &s
		}
	}
	s := string(raw)
	return &s
}

// ConnectionRow is the column shape shared by connections and
// group_connections.
type ConnectionRow struct {
	StartID string `json:"start_id" db:"start_id"`
	EndID   string `json:"end_id" db:"end_id"`
	SetID   string `json:"set_id" db:"set_id"`
	Style   string `json:"style" db:"style"`
	Color   string `json:"color" db:"color"`
}

// GroupRow is a group flattened to its column shape.
type GroupRow struct {
	ID             string `json:"id" db:"id"`
	SetID          string `json:"set_id" db:"set_id"`
	Name           string `json:"name" db:"name"`
	BoundsX        int    `json:"bounds_x" db:"bounds_x"`
	BoundsY        int    `json:"bounds_y" db:"bounds_y"`
	BoundsWidth    int    `json:"bounds_width" db:"bounds_width"`
	BoundsHeight   int    `json:"bounds_height" db:"bounds_height"`
	IsMinimized    int    `json:"is_minimized" db:"is_minimized"`
	OriginalWidth  *int   `json:"original_width" db:"original_width"`
	OriginalHeight *int   `json:"original_height" db:"original_height"`
}

// TaskRow is a checklist task flattened to its column shape.
type TaskRow struct {
	ID            string  `json:"id" db:"id"`
	CardID        string  `json:"card_id" db:"card_id"`
	SetID         string  `json:"set_id" db:"set_id"`
	Name          string  `json:"name" db:"name"`
	DueDate       *string `json:"due_date" db:"due_date"`
	IsCompleted   int     `json:"is_completed" db:"is_completed"`
	CompletedDate *string `json:"completed_date" db:"completed_date"`
}

// BoardPayload is the whole-board save/load unit exchanged between the client
// gateway and the sets endpoints.
type BoardPayload struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Cards            []CardRow       `json:"cards"`
	Connections      []ConnectionRow `json:"connections"`
	Groups           []GroupRow      `json:"groups"`
	GroupConnections []ConnectionRow `json:"groupConnections"`
	Tasks            []TaskRow       `json:"tasks"`
	TaskConnections  []ConnectionRow `json:"taskConnections"`
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CardToRow flattens a card for the given board. Structured payloads are
// encoded to text; a missing card type writes "standard".
func CardToRow(c *entities.Card, setID string) CardRow {
	row := CardRow{
		ID:         c.ID,
		SetID:      setID,
		Title:      c.Title,
		Content:    c.Content,
		PositionX:  c.Position.X,
		PositionY:  c.Position.Y,
		Color:      c.Color,
		IsExpanded: boolToInt(c.IsExpanded),
		DueDate:    c.DueDate,
		CardType:   string(c.EffectiveType()),
		GroupID:    c.GroupID,
	}

	if c.Status != nil {
		s := string(*c.Status)
		row.Status = &s
	}
	if c.BudgetType != nil && c.Budget != nil {
		bt := string(*c.BudgetType)
		row.BudgetType = &bt
		if encoded, err := json.Marshal(sanitizedBudget(c.Budget)); err == nil {
			s := string(encoded)
			row.BudgetData = &s
		}
	}
	if c.EffectiveType() == entities.CardTypeImage && c.Image != nil {
		data, mime := c.Image.Data, c.Image.MimeType
		row.ImageData = &data
		row.MimeType = &mime
	}
	if c.EffectiveType() == entities.CardTypeLocation && c.Location != nil {
		if encoded, err := json.Marshal(c.Location); err == nil {
			s := string(encoded)
			row.LocationData = &s
		}
	}
	if c.EffectiveType() == entities.CardTypeItineraire && c.Itineraire != nil {
		if encoded, err := json.Marshal(c.Itineraire); err == nil {
			s := string(encoded)
			row.ItineraireData = &s
		}
	}

	return row
}

// sanitizedBudget coerces a budget payload into its canonical stored form:
// zeroed amounts and a non-nil expenses list.
func sanitizedBudget(b *entities.BudgetData) entities.BudgetData {
	out := entities.BudgetData{
		TotalAmount:     b.TotalAmount,
		AvailableAmount: b.AvailableAmount,
		Expenses:        []entities.Expense{},
	}
	if b.Expenses != nil {
		out.Expenses = append(out.Expenses, b.Expenses...)
	}
	return out
}

// ConnectionToRow flattens a card connection for the given board.
func ConnectionToRow(c *entities.Connection, setID string) ConnectionRow {
	return ConnectionRow{
		StartID: c.Start,
		EndID:   c.End,
		SetID:   setID,
		Style:   string(c.Style),
		Color:   c.Color,
	}
}

// GroupConnectionToRow flattens a group connection for the given board.
func GroupConnectionToRow(c *entities.GroupConnection, setID string) ConnectionRow {
	return ConnectionRow{
		StartID: c.Start,
		EndID:   c.End,
		SetID:   setID,
		Style:   string(c.Style),
		Color:   c.Color,
	}
}

// TaskConnectionToRow flattens a task connection.
func TaskConnectionToRow(c *entities.TaskConnection) ConnectionRow {
	return ConnectionRow{
		StartID: c.Start,
		EndID:   c.End,
		SetID:   c.SetID,
		Style:   string(c.Style),
		Color:   c.Color,
	}
}

// GroupToRow flattens a group for the given board.
func GroupToRow(g *entities.Group, setID string) GroupRow {
	row := GroupRow{
		ID:           g.ID,
		SetID:        setID,
		Name:         g.Name,
		BoundsX:      g.Bounds.X,
		BoundsY:      g.Bounds.Y,
		BoundsWidth:  g.Bounds.Width,
		BoundsHeight: g.Bounds.Height,
		IsMinimized:  boolToInt(g.IsMinimized),
	}
	if g.OriginalBounds != nil {
		w, h := g.OriginalBounds.Width, g.OriginalBounds.Height
		row.OriginalWidth = &w
		row.OriginalHeight = &h
	}
	return row
}

// TaskToRow flattens a task for the given board.
func TaskToRow(t *entities.Task, setID string) TaskRow {
	return TaskRow{
		ID:            t.ID,
		CardID:        t.CardID,
		SetID:         setID,
		Name:          t.Name,
		DueDate:       t.DueDate,
		IsCompleted:   boolToInt(t.IsCompleted),
		CompletedDate: t.CompletedDate,
	}
}

// ConnectionFromRow restores a card connection.
func ConnectionFromRow(row ConnectionRow) entities.Connection {
	return entities.Connection{
		Start: row.StartID,
		End:   row.EndID,
		Style: entities.LineStyle(row.Style),
		Color: row.Color,
	}
}

// GroupConnectionFromRow restores a group connection.
func GroupConnectionFromRow(row ConnectionRow) entities.GroupConnection {
	return entities.GroupConnection{
		Start: row.StartID,
		End:   row.EndID,
		Style: entities.LineStyle(row.Style),
		Color: row.Color,
	}
}

// TaskConnectionFromRow restores a task connection.
func TaskConnectionFromRow(row ConnectionRow) entities.TaskConnection {
	return entities.TaskConnection{
		SetID: row.SetID,
		Start: row.StartID,
		End:   row.EndID,
		Style: entities.LineStyle(row.Style),
		Color: row.Color,
	}
}

// GroupFromRow restores a group. OriginalBounds is present only when both
// stored dimensions are.
func GroupFromRow(row GroupRow) entities.Group {
	g := entities.Group{
		ID:   row.ID,
		Name: row.Name,
		Bounds: entities.Bounds{
			X:      row.BoundsX,
			Y:      row.BoundsY,
			Width:  row.BoundsWidth,
			Height: row.BoundsHeight,
		},
		IsMinimized: row.IsMinimized != 0,
	}
	if row.OriginalWidth != nil && row.OriginalHeight != nil {
		g.OriginalBounds = &entities.Size{Width: *row.OriginalWidth, Height: *row.OriginalHeight}
	}
	return g
}

// TaskFromRow restores a task.
func TaskFromRow(row TaskRow) entities.Task {
	return entities.Task{
		ID:            row.ID,
		CardID:        row.CardID,
		Name:          row.Name,
		DueDate:       row.DueDate,
		IsCompleted:   row.IsCompleted != 0,
		CompletedDate: row.CompletedDate,
	}
}
