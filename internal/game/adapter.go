package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jwebster45206/textworld-advisor/internal/services"
	"github.com/jwebster45206/textworld-advisor/internal/storage"
	"github.com/jwebster45206/textworld-advisor/pkg/state"
)

// Game file extensions, probed in this order.
var gameExtensions = []string{".z8", ".ulx", ".zblorb"}

type AdapterOptions struct {
	GamesDir string
	MaxSteps int
}

// Adapter connects sessions to engine environments and turns engine
// snapshots into public GameState values.
type Adapter struct {
	store    storage.Store
	engine   services.GameEngine
	gamesDir string
	maxSteps int
	logger   *slog.Logger
}

func NewAdapter(store storage.Store, engine services.GameEngine, opts AdapterOptions, logger *slog.Logger) *Adapter {
	return &Adapter{
		store:    store,
		engine:   engine,
		gamesDir: opts.GamesDir,
		maxSteps: opts.MaxSteps,
		logger:   logger,
	}
}

// ResolveGamePath finds the game file for gameID in the games directory.
func (a *Adapter) ResolveGamePath(gameID string) (string, error) {
	if gameID == "" || gameID == "." || gameID == ".." ||
		strings.ContainsAny(gameID, `/\`) || strings.Contains(gameID, "..") {
		return "", fmt.Errorf("%w: %q", ErrGameNotFound, gameID)
	}

	for _, ext := range gameExtensions {
		path := filepath.Join(a.gamesDir, gameID+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q in %s", ErrGameNotFound, gameID, a.gamesDir)
}

// Initialize starts the game for an existing session and returns its first state.
func (a *Adapter) Initialize(ctx context.Context, sessionID, gameID string) (*state.GameState, error) {
	path, err := a.ResolveGamePath(gameID)
	if err != nil {
		return nil, err
	}

	env, err := a.engine.Start(ctx, path, services.DefaultRequestInfos)
	if err != nil {
		return nil, engineError("failed to initialize game", err)
	}

	snap, err := env.Reset(ctx)
	if err != nil {
		a.closeEnv(env, sessionID)
		return nil, engineError("failed to initialize game", err)
	}

	var previous services.GameEnv
	err = a.store.Update(sessionID, func(s *storage.Session) {
		previous = s.Env
		s.Env = env
		s.LastSnapshot = snap
		s.CurrentStep = 0
		s.History = nil
	})
	if err != nil {
		a.closeEnv(env, sessionID)
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, err
		}
		return nil, engineError("failed to initialize game", err)
	}
	if previous != nil && previous != env {
		a.closeEnv(previous, sessionID)
	}

	a.logger.Debug("Game initialized", "session_id", sessionID, "game_id", gameID, "path", path)

	gs := a.translate(sessionID, snap, false, 0)
	return &gs, nil
}

// Execute runs one action and returns the resulting state with the score delta as reward.
func (a *Adapter) Execute(ctx context.Context, sessionID, action string) (*state.GameState, error) {
	sess, err := a.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Env == nil {
		return nil, engineError("game not initialized", nil)
	}

	previousScore := scoreOf(sess.LastSnapshot)

	res, err := sess.Env.Step(ctx, action)
	if err != nil {
		return nil, engineError("failed to execute action", err)
	}

	snap := res.State
	reward := scoreOf(&snap) - previousScore
	step := sess.CurrentStep + 1
	gs := a.translate(sessionID, &snap, res.Done, step)
	gs.Reward = &reward

	record := state.StepRecord{
		StepNumber:  step,
		Action:      action,
		Observation: gs.Observation,
		Reward:      reward,
		Score:       gs.Score,
		Done:        gs.Done,
	}

	err = a.store.Update(sessionID, func(s *storage.Session) {
		s.LastSnapshot = &snap
		s.CurrentStep = step
		s.History = append(s.History, record)
	})
	if err != nil {
		return nil, err
	}

	return &gs, nil
}

// Lookup returns the current state of a session without touching the engine.
func (a *Adapter) Lookup(sessionID string) (*state.GameState, error) {
	sess, err := a.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.LastSnapshot == nil {
		return nil, engineError("game not initialized", nil)
	}

	done := false
	if n := len(sess.History); n > 0 {
		done = sess.History[n-1].Done
	}
	gs := a.translate(sessionID, sess.LastSnapshot, done, sess.CurrentStep)
	return &gs, nil
}

// History returns the executed steps of a session, oldest first.
func (a *Adapter) History(sessionID string) ([]state.StepRecord, error) {
	sess, err := a.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.History == nil {
		return []state.StepRecord{}, nil
	}
	return slices.Clone(sess.History), nil
}

func (a *Adapter) translate(sessionID string, snap *services.Snapshot, engineDone bool, step int) state.GameState {
	gs := state.GameState{
		SessionID:        sessionID,
		AvailableActions: []string{},
		MaxSteps:         a.maxSteps,
		CurrentStep:      step,
		Done:             engineDone,
	}
	if snap == nil {
		return gs
	}

	switch {
	case snap.Feedback != nil:
		gs.Observation = *snap.Feedback
	case snap.Description != nil:
		gs.Observation = *snap.Description
	}
	if snap.AdmissibleCommands != nil {
		gs.AvailableActions = slices.Clone(snap.AdmissibleCommands)
	}
	gs.Score = scoreOf(snap)
	gs.Done = engineDone || snap.Won || snap.Lost
	return gs
}

func (a *Adapter) closeEnv(env services.GameEnv, sessionID string) {
	if err := env.Close(context.Background()); err != nil {
		a.logger.Warn("Failed to close game environment", "session_id", sessionID, "error", err)
	}
}

func scoreOf(snap *services.Snapshot) int {
	if snap == nil || snap.Score == nil {
		return 0
	}
	return *snap.Score
}
