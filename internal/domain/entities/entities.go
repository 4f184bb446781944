package entities

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrBoardNotFound   = errors.New("board not found")
	ErrCardNotFound    = errors.New("card not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrContactNotFound = errors.New("contact not found")
	ErrLegendNotFound  = errors.New("color legend not found")
	ErrImageNotFound   = errors.New("image not found")
	ErrTileNotFound    = errors.New("tile not found")
	ErrInvalidLanguage = errors.New("invalid language")

	// ErrDatabaseUnavailable is returned while no connection is configured,
	// typically after a failed reconnect.
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

// Enums and types
type CardType string

const (
	CardTypeStandard   CardType = "standard"
	CardTypeBudget     CardType = "budget"
	CardTypeImage      CardType = "image"
	CardTypeContact    CardType = "contact"
	CardTypeLocation   CardType = "location"
	CardTypeItineraire CardType = "itineraire"
	CardTypeNote       CardType = "note"
	CardTypeChecklist  CardType = "checklist"
)

type CardStatus string

const (
	CardStatusTodo       CardStatus = "todo"
	CardStatusInProgress CardStatus = "in-progress"
	CardStatusDone       CardStatus = "done"
)

type BudgetType string

const (
	BudgetTypeTotalAvailable   BudgetType = "total-available"
	BudgetTypeExpensesTracking BudgetType = "expenses-tracking"
)

type LineStyle string

const (
	LineStyleSolid  LineStyle = "solid"
	LineStyleDashed LineStyle = "dashed"
)

// Position is an integer canvas coordinate. Positions are always clamped to
// the non-negative quadrant.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Bounds is the rectangle occupied by a group on the canvas.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Size holds the pre-minimize dimensions of a group so maximize can restore
// them exactly.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Expense is a single budget line item.
type Expense struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

// BudgetData is the payload of a budget card.
type BudgetData struct {
	TotalAmount     float64   `json:"totalAmount"`
	AvailableAmount float64   `json:"availableAmount"`
	Expenses        []Expense `json:"expenses"`
}

// ImageData carries an image payload. Data is base64-encoded at every
// boundary; raw bytes exist only inside the relational backend.
type ImageData struct {
	Data     string `json:"imageData"`
	MimeType string `json:"mimeType"`
}

// LocationData is the payload of a location card. Coordinates is a
// [longitude, latitude] pair when the address has been geocoded.
type LocationData struct {
	StreetNumber string      `json:"streetNumber,omitempty"`
	Street       string      `json:"street,omitempty"`
	PostalCode   string      `json:"postalCode,omitempty"`
	City         string      `json:"city,omitempty"`
	Country      string      `json:"country,omitempty"`
	Coordinates  *[2]float64 `json:"coordinates,omitempty"`
}

// Waypoint is one end of a route card.
type Waypoint struct {
	Address     string      `json:"address"`
	Coordinates *[2]float64 `json:"coordinates,omitempty"`
}

// ItineraireData is the payload of a route card.
type ItineraireData struct {
	Start Waypoint `json:"start"`
	End   Waypoint `json:"end"`
}

// Card is a positioned, typed unit of content on the board.
//
// Exactly one type-specific payload is populated, matching CardType; an empty
// CardType means "standard". OriginalPosition is transient bookkeeping for the
// group minimize gesture and is never persisted.
type Card struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Content          string          `json:"content"`
	Position         Position        `json:"position"`
	OriginalPosition *Position       `json:"originalPosition,omitempty"`
	Color            string          `json:"color"`
	IsExpanded       bool            `json:"isExpanded"`
	DueDate          *string         `json:"dueDate"`
	Status           *CardStatus     `json:"status"`
	CardType         CardType        `json:"cardType,omitempty"`
	GroupID          *string         `json:"groupId,omitempty"`
	BudgetType       *BudgetType     `json:"budgetType,omitempty"`
	Budget           *BudgetData     `json:"budgetData,omitempty"`
	Image            *ImageData      `json:"imageData,omitempty"`
	Location         *LocationData   `json:"locationData,omitempty"`
	Itineraire       *ItineraireData `json:"itineraireData,omitempty"`
	Tasks            []Task          `json:"tasks,omitempty"`
}

// Connection is a directed, styled edge between two cards.
type Connection struct {
	Start string    `json:"start"`
	End   string    `json:"end"`
	Style LineStyle `json:"style"`
	Color string    `json:"color"`
}

// GroupConnection has the same shape as Connection but joins two groups. It
// has its own lifecycle and storage.
type GroupConnection struct {
	Start string    `json:"start"`
	End   string    `json:"end"`
	Style LineStyle `json:"style"`
	Color string    `json:"color"`
}

// Group is a rectangular spatial container. Membership is derived by
// filtering cards on GroupID; the group never enumerates its members.
type Group struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Bounds         Bounds `json:"bounds"`
	IsMinimized    bool   `json:"isMinimized"`
	OriginalBounds *Size  `json:"originalBounds,omitempty"`
}

// Task is a checklist line item owned by a checklist card. A task cannot
// outlive its card.
type Task struct {
	ID            string  `json:"id"`
	CardID        string  `json:"cardId"`
	Name          string  `json:"name"`
	DueDate       *string `json:"dueDate,omitempty"`
	IsCompleted   bool    `json:"isCompleted"`
	CompletedDate *string `json:"completedDate,omitempty"`
}

// TaskConnection is a directed edge between two tasks, scoped to a board.
type TaskConnection struct {
	SetID string    `json:"setId"`
	Start string    `json:"start"`
	End   string    `json:"end"`
	Style LineStyle `json:"style"`
	Color string    `json:"color"`
}

// BoardSummary is a row of the saved-board list.
type BoardSummary struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// Board is the top-level persistence unit: one named workspace and every
// entity belonging to it.
type Board struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	CreatedAt        int64             `json:"createdAt"`
	Cards            []Card            `json:"cards"`
	Connections      []Connection      `json:"connections"`
	Groups           []Group           `json:"groups"`
	GroupConnections []GroupConnection `json:"groupConnections"`
	Tasks            []Task            `json:"tasks"`
	TaskConnections  []TaskConnection  `json:"taskConnections"`
}

// Contact is an address-book entry, independent of any board.
type Contact struct {
	ID           string `json:"id" db:"id"`
	Title        string `json:"title" db:"title" validate:"required,oneof=M. Mme. Société"`
	FirstName    string `json:"firstName" db:"first_name"`
	LastName     string `json:"lastName" db:"last_name"`
	Company      string `json:"company" db:"company"`
	Position     string `json:"position" db:"position"`
	StreetNumber string `json:"streetNumber" db:"street_number"`
	Street       string `json:"street" db:"street"`
	PostalCode   string `json:"postalCode" db:"postal_code"`
	City         string `json:"city" db:"city"`
	Country      string `json:"country" db:"country"`
	Email        string `json:"email" db:"email"`
	Phone        string `json:"phone" db:"phone"`
}

// ColorLegend maps color tokens to user-defined meanings.
type ColorLegend struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Mappings  map[string]string `json:"colorMappings"`
	CreatedAt int64             `json:"created_at"`
}

// Document is a file reference attached to a board.
type Document struct {
	ID          string `json:"id" db:"id"`
	SetID       string `json:"setId" db:"set_id"`
	DisplayName string `json:"displayName" db:"display_name"`
	FilePath    string `json:"filePath" db:"file_path"`
	Comment     string `json:"comment" db:"comment"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
}

// Tile identifies one map tile at a zoom level.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TileRef is the answer for one verified tile.
type TileRef struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Path string `json:"path"`
}

// SupportedLanguages are the UI languages the app can persist.
var SupportedLanguages = []string{"fr", "en", "es"}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// format used by every created_at column.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// EffectiveType returns the card's type, defaulting to standard when unset.
func (c *Card) EffectiveType() CardType {
	if c.CardType == "" {
		return CardTypeStandard
	}
	return c.CardType
}

// NormalizePayload enforces the "exactly one payload, matching cardType"
// invariant: the payload matching the card's type is kept, every other
// payload is cleared, and an empty type is rewritten to standard.
func (c *Card) NormalizePayload() {
	c.CardType = c.EffectiveType()

	if c.CardType != CardTypeBudget {
		c.BudgetType = nil
		c.Budget = nil
	}
	if c.CardType != CardTypeImage {
		c.Image = nil
	}
	if c.CardType != CardTypeLocation {
		c.Location = nil
	}
	if c.CardType != CardTypeItineraire {
		c.Itineraire = nil
	}
	if c.CardType != CardTypeChecklist {
		c.Tasks = nil
	}
}

// InBounds reports whether the card's position falls inside the rectangle,
// boundary included. Group membership at creation time uses this test.
func (c *Card) InBounds(b Bounds) bool {
	return c.Position.X >= b.X && c.Position.X <= b.X+b.Width &&
		c.Position.Y >= b.Y && c.Position.Y <= b.Y+b.Height
}

// Complete marks the task done and stamps the completion time; passing false
// reopens it and clears the stamp.
func (t *Task) Complete(done bool) {
	t.IsCompleted = done
	if done {
		now := time.Now().UTC().Format(time.RFC3339)
		t.CompletedDate = &now
	} else {
		t.CompletedDate = nil
	}
}

// IsComplete reports whether a task connection carries every field the
// storage layer requires. Incomplete connections are skipped at save time,
// never rejected.
func (tc *TaskConnection) IsComplete() bool {
	return tc.SetID != "" && tc.Start != "" && tc.End != "" && tc.Style != "" && tc.Color != ""
}

// Utility methods
func (ct CardType) IsValid() bool {
	switch ct {
	case CardTypeStandard, CardTypeBudget, CardTypeImage, CardTypeContact,
		CardTypeLocation, CardTypeItineraire, CardTypeNote, CardTypeChecklist:
		return true
	default:
		return false
	}
}

func (cs CardStatus) IsValid() bool {
	switch cs {
	case CardStatusTodo, CardStatusInProgress, CardStatusDone:
		return true
	default:
		return false
	}
}

func (ls LineStyle) IsValid() bool {
	switch ls {
	case LineStyleSolid, LineStyleDashed:
		return true
	default:
		return false
	}
}

func (bt BudgetType) IsValid() bool {
	switch bt {
	case BudgetTypeTotalAvailable, BudgetTypeExpensesTracking:
		return true
	default:
		return false
	}
}

// IsSupportedLanguage reports whether lang is one of the persistable UI
// languages.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
