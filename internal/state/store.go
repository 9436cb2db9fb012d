// Package state provides the persistent query history archive.
//
// The archive is a SQLite database the executor flushes history records
// into, so `snowbridge history` can show past sessions. It is an optional
// sink: the in-memory history log in internal/history remains the source of
// truth for the current session.
package state

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/leapstack-labs/snowbridge/pkg/core"
)

// Store implements the executor's RecordSink over SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (or creates) the history archive at the given path and runs
// pending migrations. Use ":memory:" for an ephemeral archive.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history archive: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history archive: %w", err)
	}

	s := &Store{db: db, path: path, logger: logger}
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// OpenReadOnly opens an existing archive without running migrations.
func OpenReadOnly(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open history archive: %w", err)
	}
	return &Store{db: db, path: path, logger: slog.New(slog.DiscardHandler)}, nil
}

// Close closes the archive.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AppendRecord persists one history record.
func (s *Store) AppendRecord(rec core.QueryRecord) error {
	if s.db == nil {
		return fmt.Errorf("history archive not opened")
	}

	s.logger.Debug("archiving history record", slog.String("status", string(rec.Status)))

	_, err := s.db.Exec(
		`INSERT INTO query_history (id, executed_at, statement, status, message) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), rec.Timestamp, rec.Statement, string(rec.Status), rec.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to archive history record: %w", err)
	}
	return nil
}

// ListRecords retrieves the most recent records up to the given limit,
// newest first.
func (s *Store) ListRecords(limit int) ([]core.QueryRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history archive not opened")
	}

	rows, err := s.db.Query(
		`SELECT executed_at, statement, status, message FROM query_history ORDER BY executed_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []core.QueryRecord
	for rows.Next() {
		var rec core.QueryRecord
		var ts time.Time
		var status string
		if err := rows.Scan(&ts, &rec.Statement, &status, &rec.Message); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		rec.Timestamp = ts
		rec.Status = core.QueryStatus(status)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history records: %w", err)
	}

	return records, nil
}
