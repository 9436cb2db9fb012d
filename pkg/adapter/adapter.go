// Package adapter provides the database adapter interface and registry for
// snowbridge's warehouse connections.
package adapter

import (
	"context"
	"database/sql"
	"errors"

	"github.com/leapstack-labs/snowbridge/pkg/core"
)

// ErrNotConnected is returned when an operation requires a live connection
// and none exists. It is surfaced immediately and never retried internally.
var ErrNotConnected = errors.New("not connected to database")

// Adapter defines the interface that all warehouse adapters must implement.
// The adapter owns exactly one connection handle; acquire it with Connect,
// check it with IsConnected/Ping, and release it with Close. Close is
// idempotent and must be invoked explicitly by the owner; correctness never
// relies on finalizers.
type Adapter interface {
	// Connect establishes a connection using the provided target config.
	Connect(ctx context.Context, cfg core.TargetConfig) error

	// Close releases the connection. Safe to call multiple times; secondary
	// errors during cleanup are suppressed.
	Close() error

	// IsConnected reports whether a connection handle is held.
	IsConnected() bool

	// Ping verifies the held connection is still valid.
	Ping(ctx context.Context) error

	// DB returns the live connection handle, or ErrNotConnected.
	DB() (*sql.DB, error)

	// Exec executes a statement that doesn't return rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query executes a statement that returns rows.
	Query(ctx context.Context, sql string, args ...any) (*core.Rows, error)

	// Begin starts a transaction on the held connection. Commit and rollback
	// are direct passthroughs on the returned handle.
	Begin(ctx context.Context) (*sql.Tx, error)

	// TableMetadata retrieves column metadata for a table.
	TableMetadata(ctx context.Context, table string) (*core.TableMetadata, error)

	// DriverName returns the adapter's registered driver name.
	DriverName() string
}
