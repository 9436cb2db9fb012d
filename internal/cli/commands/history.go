package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowbridge/internal/state"
	"github.com/leapstack-labs/snowbridge/pkg/core"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Format string
	Limit  int
	Status string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the query history archive",
		Long: `Display past query executions from the history archive.

Every statement run through snowbridge is recorded with its timestamp,
statement text, pass/fail status, and failure message when applicable.`,
		Example: `  # Show recent queries
  snowbridge history

  # Show only failures
  snowbridge history --status failed

  # Output as JSON
  snowbridge history --format json --limit 100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "Maximum number of records to show")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (passed|failed)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx := NewCommandContext(cmd)
	historyPath := cmdCtx.Cfg.HistoryPath

	if _, err := os.Stat(historyPath); os.IsNotExist(err) {
		return fmt.Errorf("history archive not found at %s (run 'snowbridge query' first)", historyPath)
	}

	store, err := state.OpenReadOnly(historyPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.ListRecords(opts.Limit)
	if err != nil {
		return err
	}

	if opts.Status != "" {
		filtered := records[:0]
		for _, rec := range records {
			if string(rec.Status) == opts.Status {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	renderHistoryRecords(cmd.OutOrStdout(), records, opts.Format)
	return nil
}

// renderHistoryRecords prints history records in the chosen format.
func renderHistoryRecords(w io.Writer, records []core.QueryRecord, format string) {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(records)
		return
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(no queries recorded)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Time", "Status", "Statement", "Message"})
	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			string(rec.Status),
			truncate(rec.Statement, 60),
			truncate(rec.Message, 40),
		})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d records)\n", len(records))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
