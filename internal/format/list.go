package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// DetectionRow is one line of the detect listing.
type DetectionRow struct {
	Path        string `json:"path"`
	RawVersion  string `json:"raw_version"`
	Schema      string `json:"schema"`
	Generation  string `json:"generation"`
	Records     int    `json:"records"`
	ParseErrors int    `json:"parse_errors"`
	Error       string `json:"error,omitempty"`
}

// SchemaRow is one line of the schemas listing.
type SchemaRow struct {
	Name   string `json:"name"`
	Schema string `json:"schema"`
	Covers string `json:"covers"`
	Source string `json:"source"`
}

// WriteDetections writes detection rows to w in the requested format.
func WriteDetections(w io.Writer, rows []DetectionRow, includeHeader bool, format string) error {
	switch strings.ToLower(format) {
	case "", "table", "text":
		return writeDetectionsTable(w, rows, includeHeader)
	case "plain":
		return writeDetectionsPlain(w, rows, includeHeader)
	case "json":
		return writeJSON(w, nonNil(rows))
	case "jsonl":
		return writeJSONL(w, rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeDetectionsPlain(w io.Writer, rows []DetectionRow, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "path\tversion\tschema\tgeneration\trecords\tparse_errors\terror"); err != nil {
			return err
		}
	}
	for _, row := range rows {
		line := fmt.Sprintf(
			"%s\t%s\t%s\t%s\t%d\t%d\t%s",
			row.Path,
			row.RawVersion,
			row.Schema,
			row.Generation,
			row.Records,
			row.ParseErrors,
			escapeNewlines(row.Error),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeDetectionsTable(w io.Writer, rows []DetectionRow, includeHeader bool) error {
	tw := newTable(w)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Path", "Version", "Schema", "Generation", "Records", "Parse errors"})
	}

	for _, row := range rows {
		generation := row.Generation
		if row.Error != "" {
			generation = "error: " + row.Error
		}
		tw.AppendRow(table.Row{row.Path, dash(row.RawVersion), dash(row.Schema), generation, row.Records, row.ParseErrors})
	}

	if len(rows) == 0 {
		tw.AppendRow(table.Row{"(no session files)", "-", "-", "-", 0, 0})
	}

	_ = tw.Render()
	return nil
}

// WriteSchemas writes the schema generation listing to w.
func WriteSchemas(w io.Writer, rows []SchemaRow, includeHeader bool, format string) error {
	switch strings.ToLower(format) {
	case "", "table", "text":
		tw := newTable(w)
		if includeHeader {
			tw.AppendHeader(table.Row{"Name", "Schema", "CLI versions", "Source"})
		}
		for _, row := range rows {
			tw.AppendRow(table.Row{row.Name, row.Schema, row.Covers, row.Source})
		}
		_ = tw.Render()
		return nil
	case "plain":
		if includeHeader {
			if _, err := fmt.Fprintln(w, "name\tschema\tcovers\tsource"); err != nil {
				return err
			}
		}
		for _, row := range rows {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Name, row.Schema, row.Covers, row.Source); err != nil {
				return err
			}
		}
		return nil
	case "json":
		return writeJSON(w, nonNil(rows))
	case "jsonl":
		return writeJSONL(w, rows)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONL[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}
