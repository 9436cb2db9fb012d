// Package config provides configuration management for the snowbridge CLI.
//
// Configuration is loaded from (lowest to highest precedence) built-in
// defaults, a snowbridge.yaml file, SNOWBRIDGE_-prefixed environment
// variables, and CLI flags.
package config

import (
	"github.com/leapstack-labs/snowbridge/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
// This allows CLI code to use config.TargetConfig without importing pkg/core.
type TargetConfig = core.TargetConfig

// Config holds all CLI configuration options.
type Config struct {
	HistoryPath  string               `koanf:"history_path"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Token        string               `koanf:"token"` // SQL API bearer token; env/flag only, never written back
	Target       *TargetConfig        `koanf:"target"`
	API          *APIConfig           `koanf:"api"`
	Environments map[string]EnvConfig `koanf:"environments"`
}

// APIConfig holds SQL REST API settings.
type APIConfig struct {
	TimeoutMS int64  `koanf:"timeout_ms"`
	BaseURL   string `koanf:"base_url"` // endpoint override, primarily for testing
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	HistoryPath string        `koanf:"history_path"`
	Target      *TargetConfig `koanf:"target"`
}

// Default configuration values.
const (
	DefaultHistoryFile = ".snowbridge/history.db"
	DefaultEnv         = "dev"
	DefaultOutput      = "table"
	DefaultTargetType  = "snowflake"
)

// ApplyTargetDefaults applies default values to a TargetConfig based on the
// target type.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "" {
		t.Type = DefaultTargetType
	}

	switch t.Type {
	case "snowflake":
		if t.Schema == "" {
			t.Schema = "PUBLIC"
		}
	case "postgres":
		if t.Port == 0 {
			t.Port = 5432
		}
		if t.Schema == "" {
			t.Schema = "public"
		}
	}
}

// MergeTargetConfig merges two target configs, with override taking precedence.
func MergeTargetConfig(base, override *core.TargetConfig) *core.TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	merged.Options = make(map[string]string)
	for k, v := range base.Options {
		merged.Options[k] = v
	}

	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Account != "" {
		merged.Account = override.Account
	}
	if override.Region != "" {
		merged.Region = override.Region
	}
	if override.Warehouse != "" {
		merged.Warehouse = override.Warehouse
	}
	if override.Role != "" {
		merged.Role = override.Role
	}
	if override.Host != "" {
		merged.Host = override.Host
	}
	if override.Port != 0 {
		merged.Port = override.Port
	}
	if override.User != "" {
		merged.User = override.User
	}
	if override.Password != "" {
		merged.Password = override.Password
	}
	if override.Database != "" {
		merged.Database = override.Database
	}
	if override.Schema != "" {
		merged.Schema = override.Schema
	}
	if override.Timezone != "" {
		merged.Timezone = override.Timezone
	}
	for k, v := range override.Options {
		merged.Options[k] = v
	}

	return &merged
}
