// Package executor runs SQL statements through a warehouse adapter, records
// every outcome in the query history log, and annotates successful results
// with source lineage.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/snowbridge/internal/history"
	"github.com/leapstack-labs/snowbridge/internal/lineage"
	"github.com/leapstack-labs/snowbridge/pkg/adapter"
	"github.com/leapstack-labs/snowbridge/pkg/core"
)

// StatementFailedError is returned when the driver or remote service rejects
// a statement. The failure has already been recorded in the history log by
// the time the caller sees this error.
type StatementFailedError struct {
	Statement string
	Message   string
	Err       error
}

func (e *StatementFailedError) Error() string {
	return fmt.Sprintf("statement failed: %s", e.Message)
}

func (e *StatementFailedError) Unwrap() error {
	return e.Err
}

// RecordSink receives history records for persistence beyond process
// lifetime. Sink failures are observability losses, not execution failures.
type RecordSink interface {
	AppendRecord(rec core.QueryRecord) error
}

// Executor runs statements against a single adapter-owned connection.
type Executor struct {
	adapter adapter.Adapter
	log     *history.Log
	sink    RecordSink
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithSink attaches a persistent record sink flushed on every append.
func WithSink(sink RecordSink) Option {
	return func(e *Executor) { e.sink = sink }
}

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// New creates an executor over the given adapter.
func New(a adapter.Adapter, opts ...Option) *Executor {
	e := &Executor{
		adapter: a,
		log:     history.New(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// History returns a read-only snapshot of the session's query history.
func (e *Executor) History() []core.QueryRecord {
	return e.log.Snapshot()
}

// Run executes a statement and returns the materialized result annotated
// with its source lineage.
//
// Bind parameters are passed through to the driver untouched; any named
// placeholder interpolation happens before Run is called. On driver failure
// exactly one failed record (statement text + driver message) is appended to
// history before the error propagates. On success exactly one passed record
// is appended, then lineage is computed and attached.
//
// A missing connection fails fast with adapter.ErrNotConnected and is not
// recorded: nothing was submitted to the warehouse.
func (e *Executor) Run(ctx context.Context, stmt string, binds ...any) (*core.Result, error) {
	db, err := e.adapter.DB()
	if err != nil {
		return nil, err
	}

	e.logger.Debug("executing statement", slog.String("statement", stmt))

	rows, err := db.QueryContext(ctx, stmt, binds...)
	if err != nil {
		return nil, e.fail(stmt, err)
	}
	defer func() { _ = rows.Close() }()

	result, err := materialize(rows)
	if err != nil {
		return nil, e.fail(stmt, err)
	}

	// Success is recorded first; lineage is attached to the result after.
	e.record(stmt, core.QueryPassed, "")

	result.Sources = lineage.Join(lineage.ExtractSources(stmt))

	return result, nil
}

// fail records a statement failure and wraps the driver error.
func (e *Executor) fail(stmt string, err error) error {
	e.record(stmt, core.QueryFailed, err.Error())
	return &StatementFailedError{
		Statement: stmt,
		Message:   err.Error(),
		Err:       err,
	}
}

func (e *Executor) record(stmt string, status core.QueryStatus, message string) {
	rec := e.log.Append(stmt, status, message)
	if e.sink == nil {
		return
	}
	if err := e.sink.AppendRecord(rec); err != nil {
		e.logger.Warn("failed to persist history record", slog.String("error", err.Error()))
	}
}

// materialize drains sql.Rows into a tabular Result.
func materialize(rows *sql.Rows) (*core.Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &core.Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			// Convert []byte to string for readability
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
