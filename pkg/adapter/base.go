package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/snowbridge/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// handle management, Close, Exec, Query, and Begin implementations.
//
// The handle is guarded by a mutex so a connector instance can be shared
// across goroutines without racing Connect/Close against queries.
type BaseSQLAdapter struct {
	Logger *slog.Logger

	mu sync.RWMutex
	db *sql.DB
}

// SetDB stores the connection handle. Called by concrete adapters from Connect.
func (b *BaseSQLAdapter) SetDB(db *sql.DB) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.db = db
}

// DB returns the live connection handle, failing fast with ErrNotConnected
// rather than letting callers dereference a nil handle.
func (b *BaseSQLAdapter) DB() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.db == nil {
		return nil, ErrNotConnected
	}
	return b.db, nil
}

// IsConnected reports whether a connection handle is held.
func (b *BaseSQLAdapter) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.db != nil
}

// Ping verifies the held connection is still valid.
func (b *BaseSQLAdapter) Ping(ctx context.Context) error {
	db, err := b.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the connection handle. It is idempotent: closing an already
// closed adapter is a no-op. Driver errors during close are best-effort
// cleanup failures; they are logged and suppressed.
func (b *BaseSQLAdapter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	if err := b.db.Close(); err != nil && b.Logger != nil {
		b.Logger.Debug("suppressed error during connection close", slog.String("error", err.Error()))
	}
	b.db = nil
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string, args ...any) error {
	db, err := b.DB()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (b *BaseSQLAdapter) Query(ctx context.Context, sqlStr string, args ...any) (*core.Rows, error) {
	db, err := b.DB()
	if err != nil {
		return nil, err
	}
	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &core.Rows{Rows: rows}, nil
}

// Begin starts a transaction on the held connection.
func (b *BaseSQLAdapter) Begin(ctx context.Context) (*sql.Tx, error) {
	db, err := b.DB()
	if err != nil {
		return nil, err
	}
	return db.BeginTx(ctx, nil)
}

// ParseQualifiedName splits a table reference into schema and name, falling
// back to the given default schema when the reference is unqualified.
func ParseQualifiedName(table, defaultSchema string) (schema, name string) {
	if parts := strings.Split(table, "."); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return defaultSchema, table
}

// TableMetadataCommon provides a shared implementation of TableMetadata over
// information_schema.columns with driver-appropriate placeholders.
func (b *BaseSQLAdapter) TableMetadataCommon(ctx context.Context, table, defaultSchema, p1, p2 string) (*core.TableMetadata, error) {
	db, err := b.DB()
	if err != nil {
		return nil, err
	}

	schema, tableName := ParseQualifiedName(table, defaultSchema)

	//nolint:gosec // Placeholders come from the adapter, not user input
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, p1, p2)

	rows, err := db.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	return &core.TableMetadata{
		Schema:  schema,
		Name:    tableName,
		Columns: columns,
	}, nil
}
