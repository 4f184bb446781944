// Package client talks to the REST backend on behalf of the in-memory
// store. It is the only place that knows the endpoint layout.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cardwall/core/internal/domain/entities"
	"github.com/cardwall/core/internal/domain/rows"
	"github.com/cardwall/core/internal/infrastructure/logger"
	"github.com/cardwall/core/internal/ports"
)

// Gateway implements ports.BoardGateway over HTTP.
type Gateway struct {
	baseURL string
	client  *http.Client
	mapper  *rows.Mapper
	logger  *logger.Logger
}

var _ ports.BoardGateway = (*Gateway)(nil)

// New creates a gateway against the given base URL, e.g.
// "http://localhost:3000".
func New(baseURL string, log *logger.Logger) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		mapper:  rows.NewMapper(log),
		logger:  log.WithComponent("gateway"),
	}
}

// NewWithClient creates a gateway with a caller-supplied HTTP client. Used by
// tests to point at an httptest server.
func NewWithClient(baseURL string, client *http.Client, log *logger.Logger) *Gateway {
	g := New(baseURL, log)
	g.client = client
	return g
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type saveBody struct {
	Success bool   `json:"success"`
	SetID   string `json:"setId"`
}

// List fetches the saved-board summaries.
func (g *Gateway) List(ctx context.Context) ([]entities.BoardSummary, error) {
	var summaries []entities.BoardSummary
	if err := g.getJSON(ctx, "/api/card-sets", &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// Load fetches a whole board. An empty setID short-circuits to an empty
// board. Checklist tasks are refreshed from the tasks endpoint per card; the
// dedicated query is authoritative over the snapshot inside the payload.
func (g *Gateway) Load(ctx context.Context, setID string) (*entities.Board, error) {
	if setID == "" {
		return &entities.Board{}, nil
	}

	var payload rows.BoardPayload
	if err := g.getJSON(ctx, "/api/sets/"+setID, &payload); err != nil {
		return nil, err
	}

	board := g.mapper.BoardFromPayload(&payload)

	for _, card := range payload.Cards {
		if card.CardType != string(entities.CardTypeChecklist) {
			continue
		}
		tasks, conns, err := g.fetchCardTasks(ctx, card.ID)
		if err != nil {
			g.logger.Warnw("Task refresh failed, keeping snapshot tasks",
				"card_id", card.ID, "error", err)
			continue
		}
		board.Tasks = replaceCardTasks(board.Tasks, card.ID, tasks)
		board.TaskConnections = mergeTaskConnections(board.TaskConnections, conns)
	}

	return &board, nil
}

func replaceCardTasks(all []entities.Task, cardID string, fresh []rows.TaskRow) []entities.Task {
	kept := all[:0]
	for _, task := range all {
		if task.CardID == cardID {
			continue
		}
		kept = append(kept, task)
	}
	for _, row := range fresh {
		task := rows.TaskFromRow(row)
		task.CardID = cardID
		kept = append(kept, task)
	}
	return kept
}

func mergeTaskConnections(existing []entities.TaskConnection, fresh []rows.ConnectionRow) []entities.TaskConnection {
	seen := map[[2]string]bool{}
	for _, conn := range existing {
		seen[[2]string{conn.Start, conn.End}] = true
	}
	for _, row := range fresh {
		if seen[[2]string{row.StartID, row.EndID}] {
			continue
		}
		existing = append(existing, rows.TaskConnectionFromRow(row))
	}
	return existing
}

func (g *Gateway) fetchCardTasks(ctx context.Context, cardID string) ([]rows.TaskRow, []rows.ConnectionRow, error) {
	var body struct {
		Tasks       []rows.TaskRow       `json:"tasks"`
		Connections []rows.ConnectionRow `json:"connections"`
	}
	if err := g.getJSON(ctx, "/api/tasks/"+cardID, &body); err != nil {
		return nil, nil, err
	}
	return body.Tasks, body.Connections, nil
}

// Save submits the whole board, POST for a fresh board and PUT to replace an
// existing one. Returns the set id acknowledged by the backend.
func (g *Gateway) Save(ctx context.Context, board *entities.Board, update bool) (string, error) {
	payload := rows.BoardToPayload(board)

	method := http.MethodPost
	path := "/api/sets"
	if update {
		method = http.MethodPut
		path = "/api/sets/" + board.ID
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode board: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("save board: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var ack saveBody
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return "", fmt.Errorf("decode save response: %w", err)
	}
	if !ack.Success {
		return "", fmt.Errorf("save board: backend reported failure")
	}
	return ack.SetID, nil
}

func (g *Gateway) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return entities.ErrBoardNotFound
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		if body.Details != "" {
			return fmt.Errorf("backend error (%d): %s: %s", resp.StatusCode, body.Error, body.Details)
		}
		return fmt.Errorf("backend error (%d): %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("backend error (%d)", resp.StatusCode)
}
