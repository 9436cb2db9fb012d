// Package postgres provides a PostgreSQL adapter for snowbridge.
//
// It exists as a local-development target: the executor, history log, and
// CLI can be exercised against a local postgres without a warehouse account.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"github.com/leapstack-labs/snowbridge/pkg/adapter"
	"github.com/leapstack-labs/snowbridge/pkg/core"
)

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter

	cfg core.TargetConfig
}

// New creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Adapter{}
	a.Logger = logger
	return a
}

// DriverName returns the registered driver name for this adapter.
func (a *Adapter) DriverName() string {
	return "postgres"
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg core.TargetConfig) error {
	dsn := BuildDSN(cfg)

	a.Logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.SetDB(db)
	a.cfg = cfg
	return nil
}

// BuildDSN constructs a PostgreSQL key=value connection string.
func BuildDSN(cfg core.TargetConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// TableMetadata retrieves metadata for a specified table.
func (a *Adapter) TableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	schema := a.cfg.Schema
	if schema == "" {
		schema = "public"
	}
	return a.TableMetadataCommon(ctx, table, schema, "$1", "$2")
}

// Ensure Adapter implements the adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
