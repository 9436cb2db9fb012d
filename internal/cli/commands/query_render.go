package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/snowbridge/pkg/core"
)

func renderResult(w io.Writer, res *core.Result, format string) error {
	switch format {
	case "json":
		return renderJSON(w, res)
	case "csv":
		return renderCSV(w, res)
	case "md", "markdown":
		return renderMarkdown(w, res)
	default:
		return renderTable(w, res)
	}
}

func renderTable(w io.Writer, res *core.Result) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		renderSources(w, res.Sources)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	// Header
	headerRow := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	// Rows
	for _, values := range res.Rows {
		row := make(table.Row, len(res.Columns))
		for i := range res.Columns {
			row[i] = formatValue(values[i])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	renderSources(w, res.Sources)
	return nil
}

// renderJSON encodes the full result, lineage included, as one object.
func renderJSON(w io.Writer, res *core.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func renderCSV(w io.Writer, res *core.Result) error {
	// Header
	_, _ = fmt.Fprintln(w, strings.Join(res.Columns, ","))

	// Rows
	for _, values := range res.Rows {
		fields := make([]string, len(res.Columns))
		for i := range res.Columns {
			fields[i] = escapeCSV(formatValue(values[i]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(fields, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, res *core.Result) error {
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	// Header
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(res.Columns, " | "))
	// Separator
	seps := make([]string, len(res.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	// Rows
	for _, values := range res.Rows {
		fields := make([]string, len(res.Columns))
		for i := range res.Columns {
			fields[i] = formatValue(values[i])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(fields, " | "))
	}
	renderSources(w, res.Sources)
	return nil
}

func renderSources(w io.Writer, sources string) {
	if sources == "" {
		return
	}
	_, _ = fmt.Fprintf(w, "Sources: %s\n", sources)
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
