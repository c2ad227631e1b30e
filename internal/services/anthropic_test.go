package services

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newMessagesServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicService_Complete(t *testing.T) {
	body := `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",
		"content":[{"type":"text","text":"Reasoning: the door is locked.\nAction: unlock door"}],
		"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":12}}`
	srv := newMessagesServer(t, http.StatusOK, body)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewAnthropicService("test-key", "claude-sonnet-4-5", srv.URL, log)

	reply, err := service.Complete(context.Background(), "which action?")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if reply != "Reasoning: the door is locked.\nAction: unlock door" {
		t.Errorf("Unexpected reply %q", reply)
	}
	if service.Name() != "anthropic" {
		t.Errorf("Expected name anthropic, got %s", service.Name())
	}
}

func TestAnthropicService_NoTextContent(t *testing.T) {
	body := `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5",
		"content":[],"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":0}}`
	srv := newMessagesServer(t, http.StatusOK, body)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewAnthropicService("test-key", "claude-sonnet-4-5", srv.URL, log)

	if _, err := service.Complete(context.Background(), "hi"); err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestAnthropicService_APIError(t *testing.T) {
	srv := newMessagesServer(t, http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewAnthropicService("test-key", "claude-sonnet-4-5", srv.URL, log)

	if _, err := service.Complete(context.Background(), "hi"); err == nil {
		t.Error("Expected error for 401 response")
	}
}
