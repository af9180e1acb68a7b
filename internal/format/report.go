// Package format renders validation results for humans and machines.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"sessionlint/internal/model"
	"sessionlint/internal/report"
	"sessionlint/internal/version"
)

// DefaultLimit is the number of individual errors listed when Options.Limit
// is zero.
const DefaultLimit = 50

// snippetPreview is how much of a record the text report shows in verbose mode.
const snippetPreview = 100

var rule = strings.Repeat("=", 60)

// Options controls report rendering.
type Options struct {
	// Format is one of text (default), plain, table, json, jsonl.
	Format string
	// Limit caps the listed errors in human formats. Zero selects
	// DefaultLimit, a negative value lists every error.
	Limit   int
	Verbose bool
	Color   bool
	// Width is the terminal width used to cap table columns.
	Width int
	// Strict marks parse and file errors as failures in the verdict.
	Strict bool
}

func (o Options) limit(n int) int {
	switch {
	case o.Limit < 0:
		return n
	case o.Limit == 0:
		return min(n, DefaultLimit)
	default:
		return min(n, o.Limit)
	}
}

func (o Options) width() int {
	if o.Width > 0 {
		return o.Width
	}
	return defaultWidth
}

// WriteReport writes res to w in the requested format.
func WriteReport(w io.Writer, res model.AggregateResult, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "", "text":
		return writeReportText(w, res, opts)
	case "plain":
		return writeReportPlain(w, res, opts)
	case "table":
		return writeReportTable(w, res, opts)
	case "json":
		return writeReportJSON(w, res, opts)
	case "jsonl":
		return writeReportJSONL(w, res, opts)
	default:
		return fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// linePrinter keeps the first write error so the text report can be written
// without checking every call.
type linePrinter struct {
	w   io.Writer
	err error
}

func (p *linePrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *linePrinter) println(s string) {
	p.printf("%s\n", s)
}

func (p *linePrinter) banner(title string) {
	p.println(rule)
	p.println(title)
	p.println(rule)
}

func writeReportText(w io.Writer, res model.AggregateResult, opts Options) error {
	p := &linePrinter{w: w}
	bold := text.Colors{text.Bold}

	p.printf("\n")
	p.banner(colorize(opts.Color, bold, "VALIDATION RESULTS"))

	p.printf("\nFiles scanned:   %d\n", res.FilesScanned)
	p.printf("Files validated: %d\n", res.FilesValidated)
	p.printf("Files skipped:   %d\n", res.FilesSkipped)
	p.printf("Total lines:     %d\n", res.TotalLines)
	p.printf("Valid lines:     %d\n", res.ValidLines)
	p.printf("Failed lines:    %d\n", res.FailedLines())
	p.printf("Files w/errors:  %d\n", res.FailedFiles)

	if opts.Verbose && len(res.Files) > 0 {
		p.printf("\nFiles:\n")
		for _, f := range res.Files {
			p.printf("  %s: %s\n", f.Path, fileStatus(f))
		}
	}

	if len(res.Skipped) > 0 {
		p.printf("\nSkipped files (CLI < %s, no schema available):\n", version.MinSupported)
		for _, s := range res.Skipped {
			p.printf("  %s: v%s (%d lines)\n", s.Name, s.RawVersion, s.Lines)
		}
	}

	hist := report.Histogram(res)
	if len(hist) > 0 {
		p.printf("\nError types:\n")
		for _, h := range hist {
			p.printf("  %s: %d\n", h.Label, h.Count)
		}
	}

	if len(res.Errors) > 0 {
		shown := opts.limit(len(res.Errors))
		p.printf("\n")
		p.banner(colorize(opts.Color, bold, fmt.Sprintf("ERRORS (showing first %d of %d)", shown, len(res.Errors))))
		for i, e := range res.Errors[:shown] {
			p.printf("\n[%d] %s:%d\n", i+1, e.File, e.Line)
			p.printf("    Path: %s\n", e.Path)
			p.printf("    Error: %s\n", colorize(opts.Color, text.Colors{text.FgRed}, e.Message))
			if opts.Verbose && e.Snippet != "" {
				p.printf("    Data: %s\n", truncateWidth(e.Snippet, snippetPreview))
			}
		}
	}

	if res.OnlySkipped() {
		p.printf("\n")
		p.banner(colorize(opts.Color, text.Colors{text.FgYellow}, "NO LINES VALIDATED (all files below minimum supported version)"))
		return p.err
	}

	p.printf("\n")
	p.banner(fmt.Sprintf("SUCCESS RATE: %.2f%%", res.SuccessRate()))

	switch {
	case res.FailedLines() > 0:
		p.printf("\n%s\n", colorize(opts.Color, text.Colors{text.FgRed}, fmt.Sprintf("%d lines failed validation.", res.FailedLines())))
	case !res.Success(opts.Strict):
		p.printf("\n%s\n", colorize(opts.Color, text.Colors{text.FgRed}, "All lines validated, but files had parse or file errors."))
	default:
		p.printf("\n%s\n", colorize(opts.Color, text.Colors{text.FgGreen}, "All lines validated successfully!"))
	}
	return p.err
}

func fileStatus(f model.FileSummary) string {
	switch {
	case f.Fault:
		return "file error"
	case f.Skipped:
		return fmt.Sprintf("skipped (v%s)", f.RawVersion)
	case f.TotalLines == 0 && f.Errors == 0:
		return "empty"
	default:
		return fmt.Sprintf("schema %s, %d/%d valid, %d errors", f.Schema, f.ValidLines, f.TotalLines, f.Errors)
	}
}

func writeReportPlain(w io.Writer, res model.AggregateResult, opts Options) error {
	rows := [][2]any{
		{"files_scanned", res.FilesScanned},
		{"files_validated", res.FilesValidated},
		{"files_skipped", res.FilesSkipped},
		{"total_lines", res.TotalLines},
		{"valid_lines", res.ValidLines},
		{"failed_lines", res.FailedLines()},
		{"failed_files", res.FailedFiles},
		{"success_rate", fmt.Sprintf("%.2f", res.SuccessRate())},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%v\n", row[0], row[1]); err != nil {
			return err
		}
	}
	for _, h := range report.Histogram(res) {
		if _, err := fmt.Fprintf(w, "kind\t%s\t%d\n", h.Kind, h.Count); err != nil {
			return err
		}
	}
	for _, s := range res.Skipped {
		if _, err := fmt.Fprintf(w, "skipped\t%s\t%s\t%d\n", s.Name, s.RawVersion, s.Lines); err != nil {
			return err
		}
	}
	for _, e := range res.Errors[:opts.limit(len(res.Errors))] {
		line := fmt.Sprintf("error\t%s\t%d\t%s\t%s\t%s", e.File, e.Line, e.Path, e.Kind, escapeNewlines(e.Message))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func escapeNewlines(text string) string {
	return strings.ReplaceAll(text, "\n", "\\n")
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	return tw
}

func writeReportTable(w io.Writer, res model.AggregateResult, opts Options) error {
	summary := newTable(w)
	summary.SetTitle("Validation results")
	summary.AppendHeader(table.Row{"Metric", "Value"})
	summary.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	summary.AppendRows([]table.Row{
		{"Files scanned", res.FilesScanned},
		{"Files validated", res.FilesValidated},
		{"Files skipped", res.FilesSkipped},
		{"Total lines", res.TotalLines},
		{"Valid lines", res.ValidLines},
		{"Failed lines", res.FailedLines()},
		{"Files w/errors", res.FailedFiles},
	})
	summary.AppendFooter(table.Row{"Success rate", fmt.Sprintf("%.2f%%", res.SuccessRate())})
	_ = summary.Render()

	if opts.Verbose && len(res.Files) > 0 {
		files := newTable(w)
		files.AppendHeader(table.Row{"File", "Schema", "Version", "Lines", "Valid", "Errors", "Status"})
		files.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, WidthMax: max(opts.width()/2, 20)},
			{Number: 4, Align: text.AlignRight},
			{Number: 5, Align: text.AlignRight},
			{Number: 6, Align: text.AlignRight},
		})
		for _, f := range res.Files {
			files.AppendRow(table.Row{f.Path, dash(f.Schema), dash(f.RawVersion), f.TotalLines, f.ValidLines, f.Errors, fileStatus(f)})
		}
		_ = files.Render()
	}

	if len(res.Skipped) > 0 {
		skipped := newTable(w)
		skipped.SetTitle(fmt.Sprintf("Skipped files (CLI < %s)", version.MinSupported))
		skipped.AppendHeader(table.Row{"File", "Version", "Lines"})
		skipped.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
		for _, s := range res.Skipped {
			skipped.AppendRow(table.Row{s.Name, s.RawVersion, s.Lines})
		}
		_ = skipped.Render()
	}

	if hist := report.Histogram(res); len(hist) > 0 {
		kinds := newTable(w)
		kinds.AppendHeader(table.Row{"Error type", "Count"})
		kinds.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		for _, h := range hist {
			kinds.AppendRow(table.Row{h.Label, h.Count})
		}
		_ = kinds.Render()
	}

	if len(res.Errors) > 0 {
		shown := opts.limit(len(res.Errors))
		errs := newTable(w)
		errs.SetTitle(fmt.Sprintf("Errors (showing first %d of %d)", shown, len(res.Errors)))
		errs.AppendHeader(table.Row{"#", "File", "Line", "Path", "Message"})
		errs.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight},
			{Number: 3, Align: text.AlignRight},
			{Number: 5, WidthMax: max(opts.width()/2, 30)},
		})
		for i, e := range res.Errors[:shown] {
			errs.AppendRow(table.Row{i + 1, e.File, e.Line, e.Path, escapeNewlines(e.Message)})
		}
		_ = errs.Render()
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type jsonSummary struct {
	FilesScanned   int     `json:"files_scanned"`
	FilesValidated int     `json:"files_validated"`
	FilesSkipped   int     `json:"files_skipped"`
	TotalLines     int     `json:"total_lines"`
	ValidLines     int     `json:"valid_lines"`
	FailedLines    int     `json:"failed_lines"`
	FailedFiles    int     `json:"failed_files"`
	SkippedLines   int     `json:"skipped_lines"`
	SuccessRate    float64 `json:"success_rate"`
	Success        bool    `json:"success"`
}

func summarize(res model.AggregateResult, opts Options) jsonSummary {
	return jsonSummary{
		FilesScanned:   res.FilesScanned,
		FilesValidated: res.FilesValidated,
		FilesSkipped:   res.FilesSkipped,
		TotalLines:     res.TotalLines,
		ValidLines:     res.ValidLines,
		FailedLines:    res.FailedLines(),
		FailedFiles:    res.FailedFiles,
		SkippedLines:   res.SkippedLines(),
		SuccessRate:    res.SuccessRate(),
		Success:        res.Success(opts.Strict),
	}
}

type jsonReport struct {
	Summary    jsonSummary             `json:"summary"`
	ErrorKinds []report.KindCount      `json:"error_kinds"`
	Skipped    []model.SkippedFile     `json:"skipped_files"`
	Files      []model.FileSummary     `json:"files"`
	Errors     []model.ValidationError `json:"errors"`
}

// writeReportJSON emits the full result. Machine output is never capped.
func writeReportJSON(w io.Writer, res model.AggregateResult, opts Options) error {
	doc := jsonReport{
		Summary:    summarize(res, opts),
		ErrorKinds: report.Histogram(res),
		Skipped:    nonNil(res.Skipped),
		Files:      nonNil(res.Files),
		Errors:     nonNil(res.Errors),
	}
	return writeJSON(w, doc)
}

type jsonlFile struct {
	Record string `json:"record"`
	model.FileSummary
}

type jsonlError struct {
	Record string `json:"record"`
	model.ValidationError
}

type jsonlSummary struct {
	Record string `json:"record"`
	jsonSummary
	ErrorKinds []report.KindCount `json:"error_kinds"`
}

// writeReportJSONL emits one object per file, one per error, then a summary.
func writeReportJSONL(w io.Writer, res model.AggregateResult, opts Options) error {
	enc := json.NewEncoder(w)
	for _, f := range res.Files {
		if err := enc.Encode(jsonlFile{Record: "file", FileSummary: f}); err != nil {
			return err
		}
	}
	for _, e := range res.Errors {
		if err := enc.Encode(jsonlError{Record: "error", ValidationError: e}); err != nil {
			return err
		}
	}
	return enc.Encode(jsonlSummary{
		Record:      "summary",
		jsonSummary: summarize(res, opts),
		ErrorKinds:  report.Histogram(res),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
