package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowbridge/internal/executor"
	"github.com/leapstack-labs/snowbridge/internal/lineage"
)

func runQueryREPL(cmd *cobra.Command, cmdCtx *CommandContext, opts *QueryOptions) error {
	ctx := cmd.Context()

	exec, cleanup, err := createExecutor(cmd, cmdCtx)
	if err != nil {
		return err
	}
	defer cleanup()

	// Setup readline history file next to the history archive
	historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.HistoryPath), "repl_history")

	// Configure readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "snowbridge> ",
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Snowbridge SQL REPL (target: %s)\n", cmdCtx.Cfg.Target.Type)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	// REPL loop
	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("snowbridge> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") {
			if handled := handleDotCommand(cmd, exec, line, opts.Format); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("       ...> ")
			continue
		}
		rl.SetPrompt("snowbridge> ")

		// Execute statement
		stmt := strings.TrimSuffix(multiLineBuffer.String(), ";")
		multiLineBuffer.Reset()

		result, err := exec.Run(ctx, stmt)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		if err := renderResult(cmd.OutOrStdout(), result, opts.Format); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

func handleDotCommand(cmd *cobra.Command, exec *executor.Executor, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(cmd.OutOrStdout())
		return true

	case ".history":
		renderHistoryRecords(cmd.OutOrStdout(), exec.History(), format)
		return true

	case ".sources":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .sources <sql>")
			return true
		}
		stmt := strings.TrimPrefix(line, parts[0])
		for _, src := range lineage.ExtractSources(stmt) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", src)
		}
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .history        Show this session's query history
  .sources <sql>  Extract source lineage without executing
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter creates a readline completer with common SQL keywords and
// dot-commands.
func newREPLCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("SELECT"),
		readline.PcItem("INSERT"),
		readline.PcItem("UPDATE"),
		readline.PcItem("DELETE"),
		readline.PcItem("CREATE"),
		readline.PcItem("DROP"),
		readline.PcItem("CALL"),
		readline.PcItem("SHOW"),
		readline.PcItem("DESCRIBE"),
		readline.PcItem("USE"),
		readline.PcItem(".help"),
		readline.PcItem(".history"),
		readline.PcItem(".sources"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	}

	return readline.NewPrefixCompleter(items...)
}
