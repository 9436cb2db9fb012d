package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowbridge/internal/lineage"
	"github.com/leapstack-labs/snowbridge/internal/sqlapi"
	"github.com/leapstack-labs/snowbridge/pkg/core"
)

// SubmitOptions holds options for the submit command.
type SubmitOptions struct {
	Format    string
	Input     string
	Warehouse string
	Database  string
	Schema    string
	Role      string
	Timeout   time.Duration
	Async     bool
	Binds     []string
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand() *cobra.Command {
	opts := &SubmitOptions{}

	cmd := &cobra.Command{
		Use:   "submit [SQL]",
		Short: "Submit a statement through the Snowflake SQL REST API",
		Long: `Submit a SQL statement to the Snowflake SQL REST API (/api/v2/statements)
instead of a driver connection.

Requires a bearer token, supplied via the token config key, the --token flag,
or the SNOWBRIDGE_TOKEN environment variable. Session context (warehouse,
database, schema, role) defaults to the configured target and can be
overridden per call.`,
		Example: `  # Submit a statement synchronously
  snowbridge submit "SELECT count(*) FROM orders"

  # Submit asynchronously and print the statement handle
  snowbridge submit "CALL refresh_all()" --async

  # Override the session warehouse and set a bind
  snowbridge submit "SELECT * FROM orders WHERE id = :1" \
    --warehouse LOADING_WH --bind 1=42`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().StringVar(&opts.Warehouse, "warehouse", "", "Warehouse override for this statement")
	cmd.Flags().StringVar(&opts.Database, "database", "", "Database override for this statement")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "Schema override for this statement")
	cmd.Flags().StringVar(&opts.Role, "role", "", "Role override for this statement")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Statement timeout (e.g. 30s, 5m)")
	cmd.Flags().BoolVar(&opts.Async, "async", false, "Submit asynchronously and return the statement handle")
	cmd.Flags().StringArrayVar(&opts.Binds, "bind", nil, "Bind parameter as name=value or name:type=value (repeatable)")

	return cmd
}

func runSubmit(cmd *cobra.Command, args []string, opts *SubmitOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	stmt, err := resolveStatement(cmd, args, opts.Input)
	if err != nil {
		return err
	}
	if strings.TrimSpace(stmt) == "" {
		return fmt.Errorf("no SQL statement provided (pass as argument, --input, or stdin)")
	}

	if cfg.Target == nil || cfg.Target.Account == "" {
		return fmt.Errorf("submit requires a snowflake target with an account identifier")
	}

	binds, err := parseBinds(opts.Binds)
	if err != nil {
		return err
	}

	client := newAPIClient(cmdCtx)
	client.SetToken(cfg.Token)

	resp, err := client.Submit(cmd.Context(), stmt, sqlapi.SubmitOptions{
		Warehouse: opts.Warehouse,
		Database:  opts.Database,
		Schema:    opts.Schema,
		Role:      opts.Role,
		Timeout:   opts.Timeout,
		Async:     opts.Async,
		Binds:     binds,
	})
	if err != nil {
		return err
	}

	if opts.Async {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Statement submitted: %s\n", resp.StatementHandle)
		return nil
	}

	result := resultFromResponse(resp)
	result.Sources = lineage.Join(lineage.ExtractSources(stmt))

	return renderResult(cmd.OutOrStdout(), result, opts.Format)
}

// newAPIClient builds a SQL API client from the loaded configuration.
func newAPIClient(cmdCtx *CommandContext) *sqlapi.Client {
	cfg := cmdCtx.Cfg

	apiCfg := sqlapi.Config{
		Account: cfg.Target.Account,
		Region:  cfg.Target.Region,
		Defaults: sqlapi.SessionDefaults{
			Warehouse: cfg.Target.Warehouse,
			Database:  cfg.Target.Database,
			Schema:    cfg.Target.Schema,
			Role:      cfg.Target.Role,
		},
		Logger: cmdCtx.Logger,
	}
	if cfg.API != nil {
		apiCfg.BaseURL = cfg.API.BaseURL
		apiCfg.Timeout = time.Duration(cfg.API.TimeoutMS) * time.Millisecond
	}

	return sqlapi.New(apiCfg)
}

// parseBinds parses --bind flags of the form name=value or name:type=value.
func parseBinds(specs []string) (map[string]sqlapi.Bind, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	binds := make(map[string]sqlapi.Bind, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid bind %q (expected name=value or name:type=value)", spec)
		}

		var bindType string
		if n, t, hasType := strings.Cut(name, ":"); hasType {
			name, bindType = n, t
		}

		binds[name] = sqlapi.Bind{Type: bindType, Value: value}
	}
	return binds, nil
}

// resultFromResponse converts a SQL API response into a tabular result.
func resultFromResponse(resp *sqlapi.StatementResponse) *core.Result {
	result := &core.Result{}
	if resp.ResultSetMetaData != nil {
		for _, rt := range resp.ResultSetMetaData.RowType {
			result.Columns = append(result.Columns, rt.Name)
		}
	}
	for _, row := range resp.Data {
		values := make([]any, len(row))
		for i, cell := range row {
			if cell != nil {
				values[i] = *cell
			}
		}
		result.Rows = append(result.Rows, values)
	}
	return result
}
