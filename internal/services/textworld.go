package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// TextWorldClient talks to a TextWorld engine sidecar over JSON/HTTP.
type TextWorldClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTextWorldClient creates a client for the engine sidecar at baseURL
func NewTextWorldClient(baseURL string, logger *slog.Logger) *TextWorldClient {
	return &TextWorldClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

type startEnvRequest struct {
	GamePath     string       `json:"game_path"`
	RequestInfos RequestInfos `json:"request_infos"`
}

type startEnvResponse struct {
	EnvID string `json:"env_id"`
}

type resetEnvResponse struct {
	State Snapshot `json:"state"`
}

type stepEnvRequest struct {
	Command string `json:"command"`
}

type engineErrorResponse struct {
	Error string `json:"error"`
}

// Start loads a game in the sidecar and returns its environment handle
func (c *TextWorldClient) Start(ctx context.Context, gamePath string, infos RequestInfos) (GameEnv, error) {
	var resp startEnvResponse
	if err := c.do(ctx, http.MethodPost, "/envs", startEnvRequest{GamePath: gamePath, RequestInfos: infos}, &resp); err != nil {
		return nil, fmt.Errorf("failed to start environment: %w", err)
	}
	if resp.EnvID == "" {
		return nil, fmt.Errorf("failed to start environment: engine returned empty env_id")
	}

	c.logger.Debug("TextWorld environment started", "env_id", resp.EnvID, "game_path", gamePath)
	return &textWorldEnv{client: c, id: resp.EnvID}, nil
}

func (c *TextWorldClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp engineErrorResponse
		if json.Unmarshal(responseBody.Bytes(), &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("engine returned status %d: %s", resp.StatusCode, errResp.Error)
		}
		c.logger.Error("TextWorld engine returned error",
			"status_code", resp.StatusCode,
			"path", path,
			"response_body", responseBody.String())
		return fmt.Errorf("engine returned status %d", resp.StatusCode)
	}

	if out == nil || responseBody.Len() == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody.Bytes(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type textWorldEnv struct {
	client *TextWorldClient
	id     string

	closeOnce sync.Once
	closeErr  error
}

func (e *textWorldEnv) path(suffix string) string {
	return "/envs/" + url.PathEscape(e.id) + suffix
}

func (e *textWorldEnv) Reset(ctx context.Context) (*Snapshot, error) {
	var resp resetEnvResponse
	if err := e.client.do(ctx, http.MethodPost, e.path("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to reset environment: %w", err)
	}
	return &resp.State, nil
}

func (e *textWorldEnv) Step(ctx context.Context, command string) (*StepResult, error) {
	var resp StepResult
	if err := e.client.do(ctx, http.MethodPost, e.path("/step"), stepEnvRequest{Command: command}, &resp); err != nil {
		return nil, fmt.Errorf("failed to step environment: %w", err)
	}
	return &resp, nil
}

func (e *textWorldEnv) Close(ctx context.Context) error {
	e.closeOnce.Do(func() {
		e.closeErr = e.client.do(ctx, http.MethodDelete, e.path(""), nil, nil)
	})
	return e.closeErr
}
