package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowbridge/internal/cli/config"
	"github.com/leapstack-labs/snowbridge/internal/executor"
	"github.com/leapstack-labs/snowbridge/internal/state"
	"github.com/leapstack-labs/snowbridge/pkg/adapter"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext creates a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	historyPath := getEnvOrDefault("SNOWBRIDGE_HISTORY_PATH", config.DefaultHistoryFile)
	environment := getEnvOrDefault("SNOWBRIDGE_ENVIRONMENT", config.DefaultEnv)
	verbose := os.Getenv("SNOWBRIDGE_VERBOSE") == "true"
	outputFormat := getEnvOrDefault("SNOWBRIDGE_OUTPUT", config.DefaultOutput)

	return &config.Config{
		HistoryPath:  historyPath,
		Environment:  environment,
		Verbose:      verbose,
		OutputFormat: outputFormat,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// createExecutor connects the configured adapter and wires it to an executor
// backed by the history archive. The returned cleanup closes both.
func createExecutor(cmd *cobra.Command, cmdCtx *CommandContext) (*executor.Executor, func(), error) {
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	if cfg.Target == nil {
		return nil, nil, fmt.Errorf("no target configured (create a snowbridge.yaml or set SNOWBRIDGE_TARGET__* variables)")
	}
	if err := config.ValidateTarget(cfg.Target); err != nil {
		return nil, nil, fmt.Errorf("invalid target configuration: %w", err)
	}

	a, err := adapter.NewAdapter(*cfg.Target, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := a.Connect(cmd.Context(), *cfg.Target); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s target: %w", cfg.Target.Type, err)
	}

	// Ensure history directory exists
	historyDir := filepath.Dir(cfg.HistoryPath)
	if historyDir != "." && historyDir != "" {
		if err := os.MkdirAll(historyDir, 0750); err != nil {
			_ = a.Close()
			return nil, nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	store, err := state.Open(cfg.HistoryPath, logger)
	if err != nil {
		_ = a.Close()
		return nil, nil, err
	}

	exec := executor.New(a,
		executor.WithSink(store),
		executor.WithLogger(logger),
	)

	cleanup := func() {
		_ = store.Close()
		_ = a.Close()
	}

	return exec, cleanup, nil
}
