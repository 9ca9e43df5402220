package journal

import (
	"time"

	"github.com/google/uuid"
)

// Journal records entries for one pipeline against a Store.
// Pass it to a pipeline with the WithJournal option; the pipeline then
// records every splice outcome, tagged stage error, and end-of-stream.
//
// Journal methods are safe for concurrent use when the underlying
// Store is.
type Journal struct {
	store      Store
	pipelineID string
}

// New creates a journal for the given pipeline identity.
//
// Panics if store is nil or pipelineID is empty.
func New(store Store, pipelineID string) *Journal {
	if store == nil {
		panic("journal: store cannot be nil")
	}
	if pipelineID == "" {
		panic("journal: pipeline ID cannot be empty")
	}
	return &Journal{store: store, pipelineID: pipelineID}
}

// PipelineID returns the pipeline identity this journal records for.
func (j *Journal) PipelineID() string {
	return j.pipelineID
}

// RecordAttach records a stage inserted at index.
func (j *Journal) RecordAttach(stage string, index int) error {
	return j.record(Entry{
		Kind:  KindStageAttached,
		Stage: stage,
		Index: index,
	})
}

// RecordDetach records a stage removed from index, with the number of
// chunks left buffered inside it.
func (j *Journal) RecordDetach(stage string, index, bufferedChunks int) error {
	return j.record(Entry{
		Kind:     KindStageDetached,
		Stage:    stage,
		Index:    index,
		Buffered: bufferedChunks,
	})
}

// RecordError records an error raised by a member stage.
func (j *Journal) RecordError(stage string, err error) error {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return j.record(Entry{
		Kind:   KindStageError,
		Stage:  stage,
		Detail: detail,
	})
}

// RecordEnd records the pipeline reaching end-of-stream.
func (j *Journal) RecordEnd() error {
	return j.record(Entry{Kind: KindEndOfStream})
}

func (j *Journal) record(entry Entry) error {
	entry.ID = uuid.NewString()
	entry.PipelineID = j.pipelineID
	entry.Time = time.Now()
	return j.store.Append(entry)
}

// Entries returns the pipeline's journal in sequence order.
func (j *Journal) Entries() ([]Entry, error) {
	return j.store.List(j.pipelineID)
}

// Replay folds a journal into the stage-name list the pipeline held
// after the last recorded mutation. Detached stages are matched by
// name and recorded index.
func Replay(entries []Entry) []string {
	var stages []string
	for _, entry := range entries {
		switch entry.Kind {
		case KindStageAttached:
			i := entry.Index
			if i < 0 {
				i = 0
			}
			if i > len(stages) {
				i = len(stages)
			}
			stages = append(stages[:i:i], append([]string{entry.Stage}, stages[i:]...)...)
		case KindStageDetached:
			i := entry.Index
			if i >= 0 && i < len(stages) && stages[i] == entry.Stage {
				stages = append(stages[:i:i], stages[i+1:]...)
				continue
			}
			// Index drifted (names are not unique); fall back to the
			// first name match.
			for k, name := range stages {
				if name == entry.Stage {
					stages = append(stages[:k:k], stages[k+1:]...)
					break
				}
			}
		}
	}
	return stages
}
