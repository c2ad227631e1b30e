package advisor

import (
	"slices"
	"strings"
	"testing"
)

func firstIndex(int) int { return 0 }
func lastIndex(n int) int { return n - 1 }

func TestParseResponse(t *testing.T) {
	actions := []string{"take key", "open door", "go north"}

	tests := []struct {
		name          string
		text          string
		wantAction    string
		wantReasoning string
		wantMatched   bool
	}{
		{
			name:          "native selection label",
			text:          "選択: take key",
			wantAction:    "take key",
			wantReasoning: "選択: take key",
			wantMatched:   true,
		},
		{
			name:          "rationale and selection",
			text:          "理由: 扉を開けるには鍵が必要。\n選択: take key",
			wantAction:    "take key",
			wantReasoning: "扉を開けるには鍵が必要。",
			wantMatched:   true,
		},
		{
			name:          "fullwidth colon",
			text:          "理由：北に出口がある\n選択：go north",
			wantAction:    "go north",
			wantReasoning: "北に出口がある",
			wantMatched:   true,
		},
		{
			name:          "long native label",
			text:          "選択するアクション: Open Door",
			wantAction:    "open door",
			wantReasoning: "選択するアクション: Open Door",
			wantMatched:   true,
		},
		{
			name:          "english labels with markdown",
			text:          "**Reasoning:** The door blocks the way.\n- **Action:** open door",
			wantAction:    "open door",
			wantReasoning: "The door blocks the way.",
			wantMatched:   true,
		},
		{
			name:          "no labels, literal action in text",
			text:          "I think you should open door now.",
			wantAction:    "open door",
			wantReasoning: "I think you should open door now.",
			wantMatched:   true,
		},
		{
			name:          "unlabeled reply keeps raw text as reasoning",
			text:          "\n  I think you should open door now.\n",
			wantAction:    "open door",
			wantReasoning: "\n  I think you should open door now.\n",
			wantMatched:   true,
		},
		{
			name:          "selection candidate with extra words",
			text:          "Action: I would go north first",
			wantAction:    "go north",
			wantReasoning: "Action: I would go north first",
			wantMatched:   true,
		},
		{
			name:          "word match picks first in caller order",
			text:          "Reasoning: hmm\nAction: the door or the key",
			wantAction:    "take key",
			wantReasoning: "hmm",
			wantMatched:   true,
		},
		{
			name:          "nothing recognizable",
			text:          "わかりません",
			wantAction:    "take key",
			wantReasoning: ParseFailureReasoning,
			wantMatched:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.text, actions, firstIndex)
			if got.Action != tt.wantAction {
				t.Errorf("action: expected %q, got %q", tt.wantAction, got.Action)
			}
			if got.Reasoning != tt.wantReasoning {
				t.Errorf("reasoning: expected %q, got %q", tt.wantReasoning, got.Reasoning)
			}
			if got.Matched != tt.wantMatched {
				t.Errorf("matched: expected %v, got %v", tt.wantMatched, got.Matched)
			}
		})
	}
}

func TestParseResponse_FullTextBeatsBadCandidate(t *testing.T) {
	actions := []string{"take key", "open door"}
	got := ParseResponse("理由: open door is the way\n選択: fly", actions, firstIndex)
	if got.Action != "open door" {
		t.Errorf("expected full text scan to find 'open door', got %q", got.Action)
	}
}

func TestParseResponse_UnmatchedUsesPick(t *testing.T) {
	actions := []string{"take key", "open door", "go north"}
	got := ParseResponse("zzz", actions, lastIndex)
	if got.Action != "go north" {
		t.Errorf("expected pick to choose last action, got %q", got.Action)
	}
	if got.Matched {
		t.Error("expected Matched=false")
	}
}

func TestParseResponse_ReasoningTruncatedByRunes(t *testing.T) {
	long := strings.Repeat("あ", 250)
	actions := []string{"look"}

	got := ParseResponse("理由: "+long+"\n選択: look", actions, firstIndex)
	if n := len([]rune(got.Reasoning)); n != 200 {
		t.Errorf("expected 200 runes of labelled reasoning, got %d", n)
	}

	got = ParseResponse(long+" look", actions, firstIndex)
	if n := len([]rune(got.Reasoning)); n != 200 {
		t.Errorf("expected 200 runes of raw reasoning, got %d", n)
	}
	if got.Reasoning != strings.Repeat("あ", 200) {
		t.Error("expected raw reasoning to be the response prefix")
	}
}

func TestParseResponse_AlwaysMember(t *testing.T) {
	actions := []string{"examine lamp", "turn on lamp", "go west"}
	inputs := []string{
		"",
		"   ",
		"選択:",
		"選択: ",
		":::",
		"Action: ：",
		"理由: only reasoning",
		"\n\n\n",
		"選択: 🚪",
		strings.Repeat("x", 5000),
	}
	for _, in := range inputs {
		for _, pick := range []func(int) int{firstIndex, lastIndex} {
			got := ParseResponse(in, actions, pick)
			if !slices.Contains(actions, got.Action) {
				t.Errorf("input %q produced non-member action %q", in, got.Action)
			}
		}
	}
}

func TestSplitLabel(t *testing.T) {
	tests := []struct {
		line      string
		wantLabel string
		wantValue string
		wantOK    bool
	}{
		{"選択: take key", "選択", "take key", true},
		{"選択：take key", "選択", "take key", true},
		{"* **Action**: `go north`", "Action", "go north", true},
		{"no delimiter here", "", "", false},
		{": orphan value", "", "orphan value", false},
	}
	for _, tt := range tests {
		label, value, ok := splitLabel(tt.line)
		if label != tt.wantLabel || value != tt.wantValue || ok != tt.wantOK {
			t.Errorf("splitLabel(%q) = (%q, %q, %v), expected (%q, %q, %v)",
				tt.line, label, value, ok, tt.wantLabel, tt.wantValue, tt.wantOK)
		}
	}
}
