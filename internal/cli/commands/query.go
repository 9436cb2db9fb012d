package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a SQL statement against the configured warehouse",
		Long: `Execute a SQL statement against the configured warehouse target.

Results are annotated with source lineage extracted from the statement text,
and every execution is recorded in the query history archive. Supports
multiple output formats for scripting and integration.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  snowbridge query "SELECT * FROM analytics.public.orders"

  # Read SQL from a file
  snowbridge query --input report.sql

  # Pipe SQL in
  cat report.sql | snowbridge query

  # Output as JSON (includes the snowflake-sources field)
  snowbridge query "SELECT count(*) FROM orders" --format json

  # Interactive mode
  snowbridge query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx := NewCommandContext(cmd)

	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !term.IsTerminal(int(os.Stdin.Fd())):
		// Read from stdin (piped input)
		content, err := resolveStatement(cmd, nil, "")
		if err != nil {
			return err
		}
		sqlQuery = content
	default:
		// No input, TTY detected - enter REPL mode
		return runQueryREPL(cmd, cmdCtx, opts)
	}

	exec, cleanup, err := createExecutor(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := exec.Run(cmd.Context(), sqlQuery)
	if err != nil {
		return err
	}

	return renderResult(cmd.OutOrStdout(), result, opts.Format)
}
