package state

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	instr := "  "
	tests := []struct {
		name    string
		req     interface{ Validate() error }
		wantErr string
	}{
		{"reset ok", &ResetRequest{GameID: "zork"}, ""},
		{"reset blank game", &ResetRequest{GameID: "  "}, "game_id"},
		{"step ok", &StepRequest{SessionID: "s", Action: "look"}, ""},
		{"step no session", &StepRequest{Action: "look"}, "session_id"},
		{"step blank action", &StepRequest{SessionID: "s", Action: " "}, "action"},
		{"suggest ok", &SuggestActionRequest{SessionID: "s", AvailableActions: []string{"look"}, UserInstruction: &instr}, ""},
		{"suggest no session", &SuggestActionRequest{AvailableActions: []string{"look"}}, "session_id"},
		{"suggest no actions", &SuggestActionRequest{SessionID: "s", AvailableActions: []string{}}, "available_actions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGameStateRewardOmittedWhenNil(t *testing.T) {
	data, err := json.Marshal(GameState{SessionID: "s", AvailableActions: []string{}})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "reward") {
		t.Errorf("reward should be omitted: %s", data)
	}

	r := 0
	data, _ = json.Marshal(GameState{Reward: &r})
	if !strings.Contains(string(data), `"reward":0`) {
		t.Errorf("zero reward should be present: %s", data)
	}
}
