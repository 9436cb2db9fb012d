// Package core defines the shared types used across snowbridge packages:
// target configuration, query history records, and tabular results.
package core

import (
	"database/sql"
	"time"
)

// TargetConfig holds warehouse target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // snowflake, postgres

	// Snowflake-specific
	Account   string `koanf:"account"`
	Region    string `koanf:"region"`
	Warehouse string `koanf:"warehouse"`
	Role      string `koanf:"role"`

	// Network databases (postgres)
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Common
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	Schema   string `koanf:"schema"`
	Timezone string `koanf:"timezone"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// QueryStatus classifies the outcome of a statement execution.
type QueryStatus string

const (
	// QueryPassed indicates the statement executed successfully.
	QueryPassed QueryStatus = "passed"

	// QueryFailed indicates the driver or remote service rejected the statement.
	QueryFailed QueryStatus = "failed"
)

// QueryRecord is a single entry in the query history log.
type QueryRecord struct {
	Timestamp time.Time   `json:"timestamp"`
	Statement string      `json:"statement"`
	Status    QueryStatus `json:"status"`
	Message   string      `json:"message,omitempty"`
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// Result is a materialized query result with its lineage annotation.
// Sources holds the comma-joined output of the lineage extractor and is
// attached once, immediately after the result is produced; it is never
// recomputed or mutated afterwards.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Sources string   `json:"snowflake-sources"`
}

// Column describes a single column of a warehouse table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// TableMetadata holds metadata about a warehouse table.
type TableMetadata struct {
	Schema  string
	Name    string
	Columns []Column
}
