// Package snowflake provides the Snowflake warehouse adapter for snowbridge.
//
// The connection lifecycle is fully driver-managed: this package only builds
// a DSN from the target config, opens the handle, and verifies it with a
// ping. Timeouts, cancellation, and pooling are delegated to the driver.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/leapstack-labs/snowbridge/pkg/adapter"
	"github.com/leapstack-labs/snowbridge/pkg/core"
)

func init() {
	adapter.Register("snowflake", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

// Adapter implements the adapter.Adapter interface for Snowflake.
type Adapter struct {
	adapter.BaseSQLAdapter

	cfg core.TargetConfig
}

// New creates a new Snowflake adapter instance.
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
	return "snowflake"
}

// Connect establishes a connection to Snowflake.
func (a *Adapter) Connect(ctx context.Context, cfg core.TargetConfig) error {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return fmt.Errorf("failed to build snowflake DSN: %w", err)
	}

	a.Logger.Debug("connecting to snowflake",
		slog.String("account", cfg.Account),
		slog.String("warehouse", cfg.Warehouse),
		slog.String("database", cfg.Database))

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return fmt.Errorf("failed to open snowflake connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping snowflake: %w", err)
	}

	a.SetDB(db)
	a.cfg = cfg
	return nil
}

// BuildDSN constructs a Snowflake connection string from a target config.
// Session parameters (warehouse, database, schema, role, timezone) travel in
// the DSN so the driver establishes the session context.
func BuildDSN(cfg core.TargetConfig) (string, error) {
	sc := &sf.Config{
		Account:     cfg.Account,
		User:        cfg.User,
		Password:    cfg.Password,
		Database:    cfg.Database,
		Schema:      cfg.Schema,
		Warehouse:   cfg.Warehouse,
		Role:        cfg.Role,
		Region:      cfg.Region,
		Application: "snowbridge",
	}

	if cfg.Timezone != "" {
		tz := cfg.Timezone
		sc.Params = map[string]*string{"timezone": &tz}
	}

	return sf.DSN(sc)
}

// TableMetadata retrieves metadata for a specified table.
func (a *Adapter) TableMetadata(ctx context.Context, table string) (*core.TableMetadata, error) {
	schema := a.cfg.Schema
	if schema == "" {
		schema = "PUBLIC"
	}
	return a.TableMetadataCommon(ctx, table, schema, "?", "?")
}

// Ensure Adapter implements the adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
