// Package journal records the lifecycle of a pipeline - topology
// mutations, stage errors, end-of-stream - to a pluggable store, so
// the mutation history of a long-lived pipeline can be inspected or
// replayed after the fact.
//
// Two stores ship with the package: MemoryStore for tests and
// short-lived processes, and SQLiteStore for single-process
// production use.
package journal

import (
	"errors"
	"time"
)

// Sentinel errors for journal stores.
var (
	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("journal store is closed")

	// ErrNoEntries indicates no entries exist for the pipeline.
	ErrNoEntries = errors.New("no journal entries for pipeline")
)

// Kind classifies a journal entry.
type Kind string

// Entry kinds recorded by a pipeline.
const (
	// KindStageAttached records a stage inserted by a splice.
	KindStageAttached Kind = "stage_attached"

	// KindStageDetached records a stage removed by a splice. Buffered
	// carries the number of chunks still inside the stage at removal;
	// those chunks never reach the composite (discard-on-remove).
	KindStageDetached Kind = "stage_detached"

	// KindStageError records an error raised by a member stage.
	KindStageError Kind = "stage_error"

	// KindEndOfStream records the composite reaching end-of-stream.
	KindEndOfStream Kind = "end_of_stream"
)

// Entry is one journal record. Seq is assigned by the store and is
// strictly increasing per pipeline.
type Entry struct {
	// ID is the entry's unique identifier.
	ID string
	// PipelineID identifies the pipeline the entry belongs to.
	PipelineID string
	// Seq orders entries within a pipeline, starting at 1.
	Seq int64
	// Time is when the entry was recorded.
	Time time.Time
	// Kind classifies the entry.
	Kind Kind
	// Stage is the diagnostic name of the stage involved, if any.
	Stage string
	// Index is the stage's position at attach/detach time.
	Index int
	// Buffered is the chunk count left inside a detached stage.
	Buffered int
	// Detail carries kind-specific context (e.g. the error text).
	Detail string
}

// Store persists journal entries. Implementations are safe for
// concurrent use.
type Store interface {
	// Append stores an entry, assigning its per-pipeline sequence
	// number.
	Append(entry Entry) error

	// List returns all entries for a pipeline in sequence order.
	// Returns ErrNoEntries when the pipeline has none.
	List(pipelineID string) ([]Entry, error)

	// Delete removes all entries for a pipeline.
	Delete(pipelineID string) error

	// Close releases the store's resources.
	Close() error
}
