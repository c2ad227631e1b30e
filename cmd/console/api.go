package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/textworld-advisor/pkg/state"
)

// APIClient calls the advisor API on behalf of the console.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	return &APIClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *APIClient) Health(ctx context.Context) (*state.HealthResponse, error) {
	var out state.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Reset(ctx context.Context, gameID string) (*state.GameState, error) {
	var out state.GameState
	if err := c.do(ctx, http.MethodPost, "/reset", state.ResetRequest{GameID: gameID}, &out); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	return &out, nil
}

func (c *APIClient) Step(ctx context.Context, sessionID, action string) (*state.GameState, error) {
	var out state.GameState
	req := state.StepRequest{SessionID: sessionID, Action: action}
	if err := c.do(ctx, http.MethodPost, "/step", req, &out); err != nil {
		return nil, fmt.Errorf("failed to execute action: %w", err)
	}
	return &out, nil
}

// Suggest asks the advisor for the next action given the current state.
func (c *APIClient) Suggest(ctx context.Context, gs *state.GameState, instruction string) (*state.ActionSuggestion, error) {
	req := state.SuggestActionRequest{
		SessionID:        gs.SessionID,
		Observation:      gs.Observation,
		AvailableActions: gs.AvailableActions,
		Score:            gs.Score,
	}
	if instruction != "" {
		req.UserInstruction = &instruction
	}

	var out state.ActionSuggestion
	if err := c.do(ctx, http.MethodPost, "/gemini/suggest-action", req, &out); err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	return &out, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp state.ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("%s: %s", errorResp.Error, errorResp.Detail)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
