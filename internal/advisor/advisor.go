package advisor

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jwebster45206/textworld-advisor/internal/services"
	"github.com/jwebster45206/textworld-advisor/pkg/state"
)

// FallbackReasoning is returned when the model was not consulted successfully.
const FallbackReasoning = "LLM unavailable, random action selected"

var ErrNoActions = errors.New("available_actions must not be empty")

// SuggestInput is the caller supplied state the advice is based on.
type SuggestInput struct {
	Observation      string
	AvailableActions []string
	Score            int
	UserInstruction  string
}

type Options struct {
	// Timeout bounds each model call; zero means no extra bound
	Timeout time.Duration
	// Pick returns a random index in [0, n). Defaults to math/rand.
	Pick func(n int) int
}

// Advisor picks the next action, consulting the LLM when one is configured.
type Advisor struct {
	llm     services.LLMService
	timeout time.Duration
	pick    func(n int) int
	logger  *slog.Logger
}

// New creates an advisor. llm may be nil, in which case every suggestion is a fallback.
func New(llm services.LLMService, opts Options, logger *slog.Logger) *Advisor {
	pick := opts.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return &Advisor{
		llm:     llm,
		timeout: opts.Timeout,
		pick:    pick,
		logger:  logger,
	}
}

// Configured reports whether an LLM client is available.
func (a *Advisor) Configured() bool {
	return a.llm != nil
}

type outcomeKind int

const (
	fromModel outcomeKind = iota
	fromFallback
)

type outcome struct {
	kind      outcomeKind
	action    string
	reasoning string
}

// Suggest never fails because of the model; the only error is ErrNoActions.
func (a *Advisor) Suggest(ctx context.Context, in SuggestInput) (state.ActionSuggestion, error) {
	if len(in.AvailableActions) == 0 {
		return state.ActionSuggestion{}, ErrNoActions
	}

	out := a.consult(ctx, in)
	switch out.kind {
	case fromModel:
		a.logger.Info("LLM suggested action", "action", out.action)
		a.logger.Debug("LLM reasoning", "reasoning", out.reasoning)
	case fromFallback:
		a.logger.Info("Using fallback action", "action", out.action)
	}

	return state.ActionSuggestion{
		SuggestedAction: out.action,
		Reasoning:       out.reasoning,
		IsFallback:      out.kind == fromFallback,
	}, nil
}

// consult is the single place model failures turn into a fallback.
func (a *Advisor) consult(ctx context.Context, in SuggestInput) outcome {
	if a.llm == nil {
		return a.fallback(in.AvailableActions)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.llm.Complete(ctx, BuildPrompt(in))
	if err != nil {
		a.logger.Warn("LLM call failed, using fallback", "provider", a.llm.Name(), "error", err)
		return a.fallback(in.AvailableActions)
	}
	if strings.TrimSpace(text) == "" {
		a.logger.Warn("LLM returned empty text, using fallback", "provider", a.llm.Name())
		return a.fallback(in.AvailableActions)
	}

	p := ParseResponse(text, in.AvailableActions, a.pick)
	if !p.Matched {
		a.logger.Warn("Could not parse action from LLM response", "response", truncateRunes(text, maxReasoningRunes))
	}
	return outcome{kind: fromModel, action: p.Action, reasoning: p.Reasoning}
}

func (a *Advisor) fallback(actions []string) outcome {
	return outcome{
		kind:      fromFallback,
		action:    actions[a.pick(len(actions))],
		reasoning: FallbackReasoning,
	}
}
