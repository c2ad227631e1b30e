package state

import (
	"errors"
	"strings"
)

// SuggestActionRequest asks the advisor to pick the next action.
// The caller supplies the state; the advisor does not read the session.
type SuggestActionRequest struct {
	SessionID        string   `json:"session_id"`
	Observation      string   `json:"observation"`
	AvailableActions []string `json:"available_actions"`
	Score            int      `json:"score"`
	UserInstruction  *string  `json:"user_instruction,omitempty"`
}

func (r *SuggestActionRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return errors.New("session_id is required")
	}
	if len(r.AvailableActions) == 0 {
		return errors.New("available_actions must not be empty")
	}
	return nil
}

// ActionSuggestion is the advisor's answer. SuggestedAction is always one of
// the request's AvailableActions. IsFallback is true only when the LLM was
// never reached.
type ActionSuggestion struct {
	SuggestedAction string `json:"suggested_action"`
	Reasoning       string `json:"reasoning"`
	IsFallback      bool   `json:"is_fallback"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// HealthResponse is returned by /health and /healthz.
type HealthResponse struct {
	Status              string `json:"status"`
	AppName             string `json:"app_name"`
	GeminiAPIConfigured bool   `json:"gemini_api_configured"`
}
