package pipevine

import (
	"errors"
	"fmt"
)

// Sentinel errors for stage and pipeline lifecycle.
var (
	// ErrWriteAfterEnd indicates Write was called after End.
	ErrWriteAfterEnd = errors.New("write after end")
)

// StageError tags an error with the stage that raised it. The shared
// error handler a Pipeline attaches to every member wraps the stage's
// error in a StageError before re-emitting it as the composite's own
// EventError, so observers can tell which member failed.
//
// The tag exists only for propagation; it is not persisted. Errors are
// never routed to sibling stages - the pipeline is a composition
// layer, not a supervisor.
type StageError struct {
	// Stage is the member that raised the error.
	Stage Stage
	// Name is the stage's diagnostic name, if it has one.
	Name string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("stage %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("stage error: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Err
}
