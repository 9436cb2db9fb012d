// Package history provides the append-only, in-memory query history log.
//
// Records are ordered by append time and never mutated after being written.
// The log is exposed only through Snapshot, which returns a copy so the live
// record slice cannot be modified by callers.
package history

import (
	"sync"
	"time"

	"github.com/leapstack-labs/snowbridge/pkg/core"
)

// Log is an append-only query history log. Appends are serialized with a
// mutex so a connector instance can be shared across goroutines.
type Log struct {
	mu      sync.Mutex
	records []core.QueryRecord
}

// New creates an empty history log.
func New() *Log {
	return &Log{}
}

// Append records the outcome of a statement execution and returns the record.
func (l *Log) Append(statement string, status core.QueryStatus, message string) core.QueryRecord {
	rec := core.QueryRecord{
		Timestamp: time.Now().UTC(),
		Statement: statement,
		Status:    status,
		Message:   message,
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()

	return rec
}

// Snapshot returns a copy of the log in append order. Mutating the returned
// slice has no effect on the log.
func (l *Log) Snapshot() []core.QueryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]core.QueryRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
