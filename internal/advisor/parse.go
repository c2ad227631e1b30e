package advisor

import (
	"strings"

	"golang.org/x/text/cases"
)

const (
	maxReasoningRunes = 200

	ParseFailureReasoning = "Could not parse an action from the LLM response, random action selected"
)

var (
	rationaleLabels = []string{"理由", "reasoning", "reason"}
	selectionLabels = []string{"選択", "選択するアクション", "action", "selected action", "suggested action"}
)

// Parsed is the action and reasoning recovered from a model reply.
type Parsed struct {
	Action    string
	Reasoning string
	// Matched is false when no action could be recognized and one was picked at random
	Matched bool
}

// ParseResponse maps free-form model text onto one of actions. pick(n) must
// return an index in [0, n) and is only used when nothing matches.
// actions must be non-empty.
func ParseResponse(text string, actions []string, pick func(n int) int) Parsed {
	trimmed := strings.TrimSpace(text)
	rationale, selection := scanLabels(trimmed)

	reasoning := rationale
	if reasoning == "" {
		reasoning = text
	}
	reasoning = truncateRunes(reasoning, maxReasoningRunes)

	if action, ok := resolve(selection, trimmed, actions); ok {
		return Parsed{Action: action, Reasoning: reasoning, Matched: true}
	}
	return Parsed{
		Action:    actions[pick(len(actions))],
		Reasoning: ParseFailureReasoning,
	}
}

// scanLabels returns the values of the first rationale and selection lines.
func scanLabels(text string) (rationale, selection string) {
	var foundRationale, foundSelection bool
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := splitLabel(line)
		if !ok {
			continue
		}
		switch {
		case !foundRationale && isLabel(label, rationaleLabels):
			rationale, foundRationale = value, true
		case !foundSelection && isLabel(label, selectionLabels):
			selection, foundSelection = value, true
		}
		if foundRationale && foundSelection {
			break
		}
	}
	return rationale, selection
}

// splitLabel splits "label: value" on the first ASCII or fullwidth colon.
func splitLabel(line string) (label, value string, ok bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*•> ")

	idx, width := -1, 0
	if i := strings.IndexAny(line, ":："); i >= 0 {
		idx = i
		if strings.HasPrefix(line[i:], "：") {
			width = len("：")
		} else {
			width = 1
		}
	}
	if idx < 0 {
		return "", "", false
	}

	label = cleanToken(line[:idx])
	value = cleanToken(line[idx+width:])
	return label, value, label != ""
}

func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_`\"'「」【】")
	return strings.TrimSpace(s)
}

func isLabel(label string, labels []string) bool {
	label = fold(label)
	for _, l := range labels {
		if label == l {
			return true
		}
	}
	return false
}

// resolve tries the selection candidate first, then the whole reply.
func resolve(candidate, text string, actions []string) (string, bool) {
	if candidate != "" {
		fc := fold(candidate)
		for _, action := range actions {
			if fold(strings.TrimSpace(action)) == fc {
				return action, true
			}
		}
		if action, ok := cascade(fc, actions); ok {
			return action, true
		}
	}
	return cascade(fold(text), actions)
}

// cascade finds the first action contained in haystack, then the first action
// with any word contained in haystack. Ties go to caller order.
func cascade(haystack string, actions []string) (string, bool) {
	if haystack == "" {
		return "", false
	}
	for _, action := range actions {
		if fa := fold(strings.TrimSpace(action)); fa != "" && strings.Contains(haystack, fa) {
			return action, true
		}
	}
	for _, action := range actions {
		for _, word := range strings.Fields(fold(action)) {
			if strings.Contains(haystack, word) {
				return action, true
			}
		}
	}
	return "", false
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
