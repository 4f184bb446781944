// Package store owns the in-memory state of the board being edited. The
// Store is the only component allowed to mutate cards, connections, groups
// and tasks; everything else treats it as a read/command API. It is an
// injected handle, never a package global.
package store

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/infrastructure/logger"
	"github.com/cardwall/core/internal/ports"
)

// Geometry of the stacked layout a minimized group collapses its members
// into. Width accommodates long file names on document-style cards.
const (
	cardStackOffset = 100
	cardMinHeight   = 192
	cardMinWidth    = 384
	groupPadding    = 48
	groupTopOffset  = 5
)

// Store holds the current board. All mutation operations are synchronous and
// total for well-formed input; there is no version check against concurrent
// editors — the last writer wins entirely at save time.
type Store struct {
	mu      sync.Mutex
	gateway ports.BoardGateway
	logger  *logger.Logger

	cards            []entities.Card
	connections      []entities.Connection
	groups           []entities.Group
	groupConnections []entities.GroupConnection
	taskConnections  []entities.TaskConnection
	currentSetID     string
}

// New creates an empty store backed by the given gateway.
func New(gateway ports.BoardGateway, log *logger.Logger) *Store {
	return &Store{
		gateway: gateway,
		logger:  log.WithComponent("store"),
	}
}

// CardUpdate is a partial card mutation. Nil fields are left untouched;
// Clear* flags null out their nullable counterparts.
type CardUpdate struct {
	Title        *string
	Content      *string
	Color        *string
	IsExpanded   *bool
	DueDate      *string
	ClearDueDate bool
	Status       *entities.CardStatus
	ClearStatus  bool
	GroupID      *string
	ClearGroupID bool
	BudgetType   *entities.BudgetType
	Budget       *BudgetUpdate
	Image        *entities.ImageData
	Location     *entities.LocationData
	Itineraire   *entities.ItineraireData
	Tasks        []entities.Task
}

// BudgetUpdate merges into an existing budget payload field by field; it
// never replaces the payload wholesale, so updating only the total leaves the
// expense list intact.
type BudgetUpdate struct {
	TotalAmount     *float64
	AvailableAmount *float64
	Expenses        []entities.Expense
}

// ConnectionUpdate is a partial edge mutation.
type ConnectionUpdate struct {
	Style *entities.LineStyle
	Color *string
}

// TaskUpdate is a partial task mutation. Setting IsCompleted stamps or
// clears the completion date automatically.
type TaskUpdate struct {
	Name         *string
	DueDate      *string
	ClearDueDate bool
	IsCompleted  *bool
}

// AddCard appends a card. The id must be pre-assigned by the caller and
// unique within the board; the payload is normalized to match the card type.
func (s *Store) AddCard(card entities.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card.NormalizePayload()
	s.cards = append(s.cards, card)
}

// UpdateCard merges a partial update into the card with the given id.
func (s *Store) UpdateCard(id string, upd CardUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cards {
		if s.cards[i].ID != id {
			continue
		}
		applyCardUpdate(&s.cards[i], upd)
		return
	}
}

func applyCardUpdate(card *entities.Card, upd CardUpdate) {
	if upd.Title != nil {
		card.Title = *upd.Title
	}
	if upd.Content != nil {
		card.Content = *upd.Content
	}
	if upd.Color != nil {
		card.Color = *upd.Color
	}
	if upd.IsExpanded != nil {
		card.IsExpanded = *upd.IsExpanded
	}
	if upd.ClearDueDate {
		card.DueDate = nil
	} else if upd.DueDate != nil {
		d := *upd.DueDate
		card.DueDate = &d
	}
	if upd.ClearStatus {
		card.Status = nil
	} else if upd.Status != nil {
		st := *upd.Status
		card.Status = &st
	}
	if upd.ClearGroupID {
		card.GroupID = nil
	} else if upd.GroupID != nil {
		g := *upd.GroupID
		card.GroupID = &g
	}
	if upd.BudgetType != nil {
		bt := *upd.BudgetType
		card.BudgetType = &bt
	}
	if upd.Budget != nil {
		if card.Budget == nil {
			card.Budget = &entities.BudgetData{Expenses: []entities.Expense{}}
		}
		if upd.Budget.TotalAmount != nil {
			card.Budget.TotalAmount = *upd.Budget.TotalAmount
		}
		if upd.Budget.AvailableAmount != nil {
			card.Budget.AvailableAmount = *upd.Budget.AvailableAmount
		}
		if upd.Budget.Expenses != nil {
			card.Budget.Expenses = upd.Budget.Expenses
		}
	}
	if upd.Image != nil {
		img := *upd.Image
		card.Image = &img
	}
	if upd.Location != nil {
		loc := *upd.Location
		card.Location = &loc
	}
	if upd.Itineraire != nil {
		it := *upd.Itineraire
		card.Itineraire = &it
	}
	if upd.Tasks != nil {
		card.Tasks = upd.Tasks
	}
}

// DeleteCard removes the card and cascades: every connection touching it on
// either end goes, and so do the card's tasks together with any task
// connection referencing them.
func (s *Store) DeleteCard(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taskIDs := map[string]bool{}
	kept := s.cards[:0]
	for _, card := range s.cards {
		if card.ID == id {
			for _, t := range card.Tasks {
				taskIDs[t.ID] = true
			}
			continue
		}
		kept = append(kept, card)
	}
	s.cards = kept

	conns := s.connections[:0]
	for _, conn := range s.connections {
		if conn.Start == id || conn.End == id {
			continue
		}
		conns = append(conns, conn)
	}
	s.connections = conns

	if len(taskIDs) > 0 {
		tcs := s.taskConnections[:0]
		for _, tc := range s.taskConnections {
			if taskIDs[tc.Start] || taskIDs[tc.End] {
				continue
			}
			tcs = append(tcs, tc)
		}
		s.taskConnections = tcs
	}
}

// UpdateCardPosition stores a dragged position, rounded to whole pixels and
// clamped to the non-negative quadrant so sub-pixel drag deltas never
// accumulate fractional drift.
func (s *Store) UpdateCardPosition(id string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cards {
		if s.cards[i].ID == id {
			s.cards[i].Position = entities.Position{
				X: clampNonNegative(int(math.Round(x))),
				Y: clampNonNegative(int(math.Round(y))),
			}
			return
		}
	}
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// ToggleCardExpansion flips a card between collapsed and expanded.
func (s *Store) ToggleCardExpansion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cards {
		if s.cards[i].ID == id {
			s.cards[i].IsExpanded = !s.cards[i].IsExpanded
			return
		}
	}
}

// AddConnection adds a directed edge. An edge for the same ordered
// (start, end) pair replaces the existing one instead of duplicating it,
// matching the composite key the storage layer enforces.
func (s *Store) AddConnection(start, end string, style entities.LineStyle, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.connections {
		if s.connections[i].Start == start && s.connections[i].End == end {
			s.connections[i].Style = style
			s.connections[i].Color = color
			return
		}
	}
	s.connections = append(s.connections, entities.Connection{
		Start: start, End: end, Style: style, Color: color,
	})
}

// UpdateConnection merges a partial update into the edge with the exact
// ordered pair.
func (s *Store) UpdateConnection(start, end string, upd ConnectionUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.connections {
		if s.connections[i].Start == start && s.connections[i].End == end {
			if upd.Style != nil {
				s.connections[i].Style = *upd.Style
			}
			if upd.Color != nil {
				s.connections[i].Color = *upd.Color
			}
			return
		}
	}
}

// DeleteConnection removes the edge with the exact ordered pair.
func (s *Store) DeleteConnection(start, end string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.connections[:0]
	for _, conn := range s.connections {
		if conn.Start == start && conn.End == end {
			continue
		}
		kept = append(kept, conn)
	}
	s.connections = kept
}

// CreateGroup creates a group over the given rectangle. Membership is fixed
// now: every card whose position falls inside the bounds (inclusive) gets the
// new group id stamped on. The creation-time dimensions are recorded for
// restore-from-minimize. Returns the generated group id.
func (s *Store) CreateGroup(bounds entities.Bounds, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	groupID := uuid.New().String()
	for i := range s.cards {
		if s.cards[i].InBounds(bounds) {
			id := groupID
			s.cards[i].GroupID = &id
		}
	}

	s.groups = append(s.groups, entities.Group{
		ID:             groupID,
		Name:           name,
		Bounds:         bounds,
		IsMinimized:    false,
		OriginalBounds: &entities.Size{Width: bounds.Width, Height: bounds.Height},
	})
	return groupID
}

// UpdateGroupBounds resizes or repositions the group rectangle.
func (s *Store) UpdateGroupBounds(groupID string, bounds entities.Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.groups {
		if s.groups[i].ID == groupID {
			s.groups[i].Bounds = bounds
			return
		}
	}
}

// ToggleGroupMinimized collapses the group's members into a vertical stack
// (minimize) or puts everything back exactly where it was (maximize).
// Minimize then maximize is an exact involution: member positions, member
// expansion and the group bounds all return to their pre-minimize values.
func (s *Store) ToggleGroupMinimized(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var group *entities.Group
	for i := range s.groups {
		if s.groups[i].ID == groupID {
			group = &s.groups[i]
			break
		}
	}
	if group == nil {
		return
	}

	memberCount := 0
	memberIndex := 0
	for i := range s.cards {
		if s.cards[i].GroupID != nil && *s.cards[i].GroupID == groupID {
			memberCount++
		}
	}

	if !group.IsMinimized {
		for i := range s.cards {
			card := &s.cards[i]
			if card.GroupID == nil || *card.GroupID != groupID {
				continue
			}
			// Capture the pre-minimize position only once; a double
			// minimize must not overwrite it with a stacked position.
			if card.OriginalPosition == nil {
				pos := card.Position
				card.OriginalPosition = &pos
			}
			card.Position = entities.Position{
				X: group.Bounds.X + groupPadding/2,
				Y: group.Bounds.Y + groupTopOffset + memberIndex*cardStackOffset,
			}
			card.IsExpanded = false
			memberIndex++
		}

		stacked := 0
		if memberCount > 1 {
			stacked = (memberCount - 1) * cardStackOffset
		}
		group.Bounds.Width = cardMinWidth + groupPadding
		group.Bounds.Height = groupTopOffset + cardMinHeight + stacked
		group.IsMinimized = true
		return
	}

	for i := range s.cards {
		card := &s.cards[i]
		if card.GroupID == nil || *card.GroupID != groupID {
			continue
		}
		if card.OriginalPosition != nil {
			card.Position = *card.OriginalPosition
			card.OriginalPosition = nil
		}
		card.IsExpanded = true
	}
	if group.OriginalBounds != nil {
		group.Bounds.Width = group.OriginalBounds.Width
		group.Bounds.Height = group.OriginalBounds.Height
	}
	group.IsMinimized = false
}

// MoveGroup translates the group and every member card by the same delta, a
// synchronized rigid-body move.
func (s *Store) MoveGroup(groupID string, dx, dy int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.groups {
		if s.groups[i].ID == groupID {
			s.groups[i].Bounds.X += dx
			s.groups[i].Bounds.Y += dy
			found = true
			break
		}
	}
	if !found {
		return
	}

	for i := range s.cards {
		if s.cards[i].GroupID != nil && *s.cards[i].GroupID == groupID {
			s.cards[i].Position.X += dx
			s.cards[i].Position.Y += dy
		}
	}
}

// DeleteGroup removes the group and its group connections. With deleteCards
// false the members survive ungrouped; with true the member cards are
// removed entirely, cascading their connections the same way DeleteCard
// would.
func (s *Store) DeleteGroup(groupID string, deleteCards bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := s.groups[:0]
	for _, g := range s.groups {
		if g.ID == groupID {
			continue
		}
		groups = append(groups, g)
	}
	s.groups = groups

	gconns := s.groupConnections[:0]
	for _, conn := range s.groupConnections {
		if conn.Start == groupID || conn.End == groupID {
			continue
		}
		gconns = append(gconns, conn)
	}
	s.groupConnections = gconns

	removed := map[string]bool{}
	cards := s.cards[:0]
	for _, card := range s.cards {
		if card.GroupID != nil && *card.GroupID == groupID {
			if deleteCards {
				removed[card.ID] = true
				continue
			}
			card.GroupID = nil
		}
		cards = append(cards, card)
	}
	s.cards = cards

	if len(removed) > 0 {
		conns := s.connections[:0]
		for _, conn := range s.connections {
			if removed[conn.Start] || removed[conn.End] {
				continue
			}
			conns = append(conns, conn)
		}
		s.connections = conns
	}
}

// AddGroupConnection adds a directed edge between two groups, replacing an
// existing edge for the same ordered pair.
func (s *Store) AddGroupConnection(start, end string, style entities.LineStyle, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.groupConnections {
		if s.groupConnections[i].Start == start && s.groupConnections[i].End == end {
			s.groupConnections[i].Style = style
			s.groupConnections[i].Color = color
			return
		}
	}
	s.groupConnections = append(s.groupConnections, entities.GroupConnection{
		Start: start, End: end, Style: style, Color: color,
	})
}

// DeleteGroupConnection removes the group edge with the exact ordered pair.
func (s *Store) DeleteGroupConnection(start, end string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.groupConnections[:0]
	for _, conn := range s.groupConnections {
		if conn.Start == start && conn.End == end {
			continue
		}
		kept = append(kept, conn)
	}
	s.groupConnections = kept
}

// AddTask appends a task to its owning checklist card.
func (s *Store) AddTask(task entities.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cards {
		if s.cards[i].ID == task.CardID {
			s.cards[i].Tasks = append(s.cards[i].Tasks, task)
			return
		}
	}
}

// UpdateTask merges a partial update into a task on the given card. Toggling
// completion stamps or clears the completion date.
func (s *Store) UpdateTask(cardID, taskID string, upd TaskUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cards {
		if s.cards[i].ID != cardID {
			continue
		}
		for j := range s.cards[i].Tasks {
			task := &s.cards[i].Tasks[j]
			if task.ID != taskID {
				continue
			}
			if upd.Name != nil {
				task.Name = *upd.Name
			}
			if upd.ClearDueDate {
				task.DueDate = nil
			} else if upd.DueDate != nil {
				d := *upd.DueDate
				task.DueDate = &d
			}
			if upd.IsCompleted != nil {
				task.Complete(*upd.IsCompleted)
			}
			return
		}
		return
	}
}

// AddTaskConnection adds a directed edge between two tasks, scoped to the
// current board. Same ordered-pair replacement rule as card connections.
func (s *Store) AddTaskConnection(start, end string, style entities.LineStyle, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.taskConnections {
		if s.taskConnections[i].Start == start && s.taskConnections[i].End == end {
			s.taskConnections[i].Style = style
			s.taskConnections[i].Color = color
			return
		}
	}
	s.taskConnections = append(s.taskConnections, entities.TaskConnection{
		SetID: s.currentSetID, Start: start, End: end, Style: style, Color: color,
	})
}

// DeleteTaskConnection removes the task edge with the exact ordered pair.
func (s *Store) DeleteTaskConnection(start, end string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.taskConnections[:0]
	for _, conn := range s.taskConnections {
		if conn.Start == start && conn.End == end {
			continue
		}
		kept = append(kept, conn)
	}
	s.taskConnections = kept
}

// Card returns a copy of the card with the given id.
func (s *Store) Card(id string) (entities.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, card := range s.cards {
		if card.ID == id {
			return card, true
		}
	}
	return entities.Card{}, false
}

// Cards returns a copy of the card list.
func (s *Store) Cards() []entities.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Card(nil), s.cards...)
}

// Connections returns a copy of the connection list.
func (s *Store) Connections() []entities.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Connection(nil), s.connections...)
}

// Groups returns a copy of the group list.
func (s *Store) Groups() []entities.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.Group(nil), s.groups...)
}

// Group returns a copy of the group with the given id.
func (s *Store) Group(id string) (entities.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.ID == id {
			return g, true
		}
	}
	return entities.Group{}, false
}

// GroupConnections returns a copy of the group connection list.
func (s *Store) GroupConnections() []entities.GroupConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.GroupConnection(nil), s.groupConnections...)
}

// TaskConnections returns a copy of the task connection list.
func (s *Store) TaskConnections() []entities.TaskConnection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.TaskConnection(nil), s.taskConnections...)
}

// CurrentSetID returns the id of the loaded board, empty for a fresh one.
func (s *Store) CurrentSetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSetID
}

// Snapshot assembles the full board from the current state. Tasks are
// flattened out of their checklist cards.
func (s *Store) Snapshot() entities.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() entities.Board {
	board := entities.Board{
		ID:               s.currentSetID,
		Cards:            append([]entities.Card(nil), s.cards...),
		Connections:      append([]entities.Connection(nil), s.connections...),
		Groups:           append([]entities.Group(nil), s.groups...),
		GroupConnections: append([]entities.GroupConnection(nil), s.groupConnections...),
		TaskConnections:  append([]entities.TaskConnection(nil), s.taskConnections...),
	}
	for _, card := range s.cards {
		board.Tasks = append(board.Tasks, card.Tasks...)
	}
	return board
}

// SaveToDB persists the whole board under the given name. A board without an
// id gets a fresh one and is created; a board with an id is updated by
// replacing all of its children. Returns the board id.
func (s *Store) SaveToDB(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	update := s.currentSetID != ""
	setID := s.currentSetID
	if setID == "" {
		setID = uuid.New().String()
	}
	board := s.snapshotLocked()
	board.ID = setID
	board.Name = name
	s.mu.Unlock()

	savedID, err := s.gateway.Save(ctx, &board, update)
	if err != nil {
		s.logger.Errorw("Failed to save board", "set_id", setID, "error", err)
		return "", fmt.Errorf("save board: %w", err)
	}

	s.mu.Lock()
	s.currentSetID = savedID
	s.mu.Unlock()

	s.logger.Infow("Board saved", "set_id", savedID, "name", name, "cards", len(board.Cards))
	return savedID, nil
}

// LoadFromDB replaces the store contents with the board stored under setID.
// An empty setID resets to an empty board without a backend call. On a load
// failure the store is left empty and the error is returned.
func (s *Store) LoadFromDB(ctx context.Context, setID string) error {
	if setID == "" {
		s.mu.Lock()
		s.reset()
		s.mu.Unlock()
		return nil
	}

	board, err := s.gateway.Load(ctx, setID)
	if err != nil {
		s.logger.Errorw("Failed to load board", "set_id", setID, "error", err)
		s.mu.Lock()
		s.reset()
		s.mu.Unlock()
		return fmt.Errorf("load board: %w", err)
	}

	// Tasks arrive flat; hand each back to its owning checklist card.
	byCard := map[string][]entities.Task{}
	for _, task := range board.Tasks {
		byCard[task.CardID] = append(byCard[task.CardID], task)
	}
	for i := range board.Cards {
		if tasks, ok := byCard[board.Cards[i].ID]; ok {
			board.Cards[i].Tasks = tasks
		}
	}

	s.mu.Lock()
	s.currentSetID = setID
	s.cards = board.Cards
	s.connections = board.Connections
	s.groups = board.Groups
	s.groupConnections = board.GroupConnections
	s.taskConnections = board.TaskConnections
	s.mu.Unlock()
	return nil
}

// ListSets returns the saved-board list.
func (s *Store) ListSets(ctx context.Context) ([]entities.BoardSummary, error) {
	return s.gateway.List(ctx)
}

func (s *Store) reset() {
	s.currentSetID = ""
	s.cards = nil
	s.connections = nil
	s.groups = nil
	s.groupConnections = nil
	s.taskConnections = nil
}
