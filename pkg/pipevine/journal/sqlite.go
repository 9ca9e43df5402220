package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists journal entries to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite journal store.
// The path should be a file path (e.g., "./journal.db") or ":memory:"
// for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS journal (
			id TEXT NOT NULL PRIMARY KEY,
			pipeline_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			time TEXT NOT NULL,
			kind TEXT NOT NULL,
			stage TEXT NOT NULL,
			idx INTEGER NOT NULL,
			buffered INTEGER NOT NULL,
			detail TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_journal_pipeline_id
		ON journal(pipeline_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	// Sequence is max + 1 for this pipeline, computed in the insert so
	// two stores over the same file cannot hand out duplicates.
	_, err := s.db.Exec(`
		INSERT INTO journal (id, pipeline_id, seq, time, kind, stage, idx, buffered, detail)
		VALUES (
			?, ?,
			COALESCE((SELECT MAX(seq) FROM journal WHERE pipeline_id = ?), 0) + 1,
			?, ?, ?, ?, ?, ?
		)
	`, entry.ID, entry.PipelineID, entry.PipelineID,
		entry.Time.UTC().Format(time.RFC3339Nano),
		string(entry.Kind), entry.Stage, entry.Index, entry.Buffered, entry.Detail)

	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(pipelineID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, seq, time, kind, stage, idx, buffered, detail
		FROM journal
		WHERE pipeline_id = ?
		ORDER BY seq
	`, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var timestamp, kind string
		if err := rows.Scan(&entry.ID, &entry.Seq, &timestamp, &kind,
			&entry.Stage, &entry.Index, &entry.Buffered, &entry.Detail); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry.PipelineID = pipelineID
		entry.Kind = Kind(kind)
		entry.Time, _ = time.Parse(time.RFC3339Nano, timestamp)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	return entries, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(pipelineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM journal WHERE pipeline_id = ?
	`, pipelineID)
	if err != nil {
		return fmt.Errorf("delete journal entries: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
