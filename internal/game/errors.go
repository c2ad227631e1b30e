package game

import (
	"errors"
	"fmt"
)

var ErrGameNotFound = errors.New("game not found")

// EngineError is any failure reported by, or about, the game engine.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func engineError(op string, err error) error {
	return &EngineError{Op: op, Err: err}
}
