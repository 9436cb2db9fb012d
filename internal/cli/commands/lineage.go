package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowbridge/internal/lineage"
)

// LineageOptions holds options for the lineage command.
type LineageOptions struct {
	OutputFormat string
	Input        string
}

// NewLineageCommand creates the lineage command.
func NewLineageCommand() *cobra.Command {
	opts := &LineageOptions{}

	cmd := &cobra.Command{
		Use:   "lineage [SQL]",
		Short: "Extract source lineage from a SQL statement",
		Long: `Scan a SQL statement and list the source tables and procedures it reads
from, without connecting to any warehouse.

Sources are the identifiers following FROM, JOIN, and CALL keywords. The scan
is purely textual, so aliases, subqueries, and string literals containing
keywords can produce spurious entries. When no sources are found, the
sentinel "no_snowflake_sources_found" is reported.`,
		Example: `  # Extract sources from a statement
  snowbridge lineage "select * from db.sch.tbl join db.sch.other on 1=1"

  # Read the statement from a file
  snowbridge lineage --input query.sql

  # Pipe a statement in
  cat query.sql | snowbridge lineage

  # Output as JSON
  snowbridge lineage "call my_proc(1)" --output json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputFormat, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runLineage(cmd *cobra.Command, args []string, opts *LineageOptions) error {
	stmt, err := resolveStatement(cmd, args, opts.Input)
	if err != nil {
		return err
	}
	if strings.TrimSpace(stmt) == "" {
		return fmt.Errorf("no SQL statement provided (pass as argument, --input, or stdin)")
	}

	sources := lineage.ExtractSources(stmt)

	if opts.OutputFormat == "json" {
		out := struct {
			Statement string   `json:"statement"`
			Sources   []string `json:"sources"`
		}{Statement: stmt, Sources: sources}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sources (%d):\n", len(sources))
	for _, src := range sources {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", src)
	}
	return nil
}

// resolveStatement picks the SQL text from args, an input file, or stdin.
func resolveStatement(cmd *cobra.Command, args []string, input string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case input != "":
		content, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	default:
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	}
}
