package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionlint/internal/model"
)

func sampleResult() model.AggregateResult {
	return model.AggregateResult{
		FilesScanned:   3,
		FilesValidated: 2,
		FilesSkipped:   1,
		TotalLines:     5,
		ValidLines:     4,
		FailedFiles:    1,
		ErrorKinds: map[model.ErrorKind]int{
			model.KindParse:        1,
			model.KindUnknownField: 2,
		},
		Errors: []model.ValidationError{
			{File: "a.jsonl", Line: 1, Path: model.PathParse, Message: "JSON parse error: unexpected EOF", Snippet: `{"type":`, Kind: model.KindParse},
			{File: "a.jsonl", Line: 3, Path: model.PathRoot, Message: "Additional properties are not allowed ('x' was unexpected)", Snippet: `{"x":1}`, Kind: model.KindUnknownField},
			{File: "a.jsonl", Line: 3, Path: model.PathRoot, Message: "Additional properties are not allowed ('y' was unexpected)", Snippet: `{"y":1}`, Kind: model.KindUnknownField},
		},
		Skipped: []model.SkippedFile{
			{Name: "legacy.jsonl", RawVersion: "1.0.30", Reason: "CLI version 1.0.30 < minimum supported 2.0.76", Lines: 2},
		},
		Files: []model.FileSummary{
			{Path: "a.jsonl", Schema: "2.0.76", RawVersion: "2.0.76", TotalLines: 2, ValidLines: 1, Errors: 3},
			{Path: "b.jsonl", Schema: "2.1.59", RawVersion: "2.1.59", TotalLines: 3, ValidLines: 3},
			{Path: "legacy.jsonl", RawVersion: "1.0.30", TotalLines: 2, Skipped: true},
		},
	}
}

func TestWriteReportText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), Options{}))

	out := buf.String()
	for _, want := range []string{
		"VALIDATION RESULTS",
		"Files scanned:   3\n",
		"Files validated: 2\n",
		"Failed lines:    1\n",
		"Files w/errors:  1\n",
		"Skipped files (CLI < 2.0.76, no schema available):\n  legacy.jsonl: v1.0.30 (2 lines)\n",
		"Error types:\n  Unknown fields: 2\n  JSON parse errors: 1\n",
		"ERRORS (showing first 3 of 3)",
		"[1] a.jsonl:1\n    Path: (parse)\n    Error: JSON parse error: unexpected EOF\n",
		"SUCCESS RATE: 80.00%",
		"1 lines failed validation.",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Data:")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteReportTextVerboseAndLimit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), Options{Verbose: true, Limit: 1}))

	out := buf.String()
	assert.Contains(t, out, "ERRORS (showing first 1 of 3)")
	assert.Contains(t, out, `    Data: {"type":`)
	assert.Contains(t, out, "  b.jsonl: schema 2.1.59, 3/3 valid, 0 errors\n")
	assert.Contains(t, out, "  legacy.jsonl: skipped (v1.0.30)\n")
	assert.NotContains(t, out, "[2]")
}

func TestWriteReportTextSuccess(t *testing.T) {
	res := model.AggregateResult{FilesScanned: 1, FilesValidated: 1, TotalLines: 4, ValidLines: 4}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res, Options{Format: "text"}))
	assert.Contains(t, buf.String(), "SUCCESS RATE: 100.00%")
	assert.Contains(t, buf.String(), "All lines validated successfully!")
	assert.NotContains(t, buf.String(), "ERRORS")
}

func TestWriteReportTextOnlySkipped(t *testing.T) {
	res := model.AggregateResult{
		FilesScanned: 1,
		FilesSkipped: 1,
		Skipped:      []model.SkippedFile{{Name: "old.jsonl", RawVersion: "2.0.1", Lines: 7}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res, Options{}))
	assert.Contains(t, buf.String(), "NO LINES VALIDATED (all files below minimum supported version)")
	assert.NotContains(t, buf.String(), "SUCCESS RATE")
}

func TestWriteReportTextColor(t *testing.T) {
	text.EnableColors()
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), Options{Color: true}))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestWriteReportTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), Options{Format: "table", Width: 120}))

	out := buf.String()
	assert.Contains(t, out, "Validation results")
	assert.Contains(t, out, "│ Files scanned")
	assert.Contains(t, out, "80.00%")
	assert.Contains(t, out, "legacy.jsonl")
	assert.Contains(t, out, "Unknown fields")
	assert.Contains(t, out, "Errors (showing first 3 of 3)")
	assert.Contains(t, out, "'x' was unexpected")
}

func TestWriteReportPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), Options{Format: "plain", Limit: 2}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "files_scanned\t3", lines[0])
	assert.Contains(t, lines, "success_rate\t80.00")
	assert.Contains(t, lines, "kind\tunknown_field\t2")
	assert.Contains(t, lines, "skipped\tlegacy.jsonl\t1.0.30\t2")
	assert.Contains(t, lines, "error\ta.jsonl\t1\t(parse)\tparse\tJSON parse error: unexpected EOF")

	errorLines := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "error\t") {
			errorLines++
		}
	}
	assert.Equal(t, 2, errorLines)
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), Options{Format: "json", Limit: 1}))

	var doc struct {
		Summary struct {
			FilesScanned int     `json:"files_scanned"`
			FailedLines  int     `json:"failed_lines"`
			SkippedLines int     `json:"skipped_lines"`
			SuccessRate  float64 `json:"success_rate"`
			Success      bool    `json:"success"`
		} `json:"summary"`
		ErrorKinds []struct {
			Kind  string `json:"kind"`
			Count int    `json:"count"`
		} `json:"error_kinds"`
		Errors []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, 3, doc.Summary.FilesScanned)
	assert.Equal(t, 1, doc.Summary.FailedLines)
	assert.Equal(t, 2, doc.Summary.SkippedLines)
	assert.InDelta(t, 80.0, doc.Summary.SuccessRate, 0.001)
	assert.False(t, doc.Summary.Success)
	require.Len(t, doc.ErrorKinds, 2)
	assert.Equal(t, "unknown_field", doc.ErrorKinds[0].Kind)
	// Machine output lists every error regardless of the limit.
	assert.Len(t, doc.Errors, 3)
	assert.Equal(t, "(parse)", doc.Errors[0]["path"])
}

func TestWriteReportJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), Options{Format: "jsonl"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3+3+1)

	records := map[string]int{}
	for _, l := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &rec))
		records[rec["record"].(string)]++
	}
	assert.Equal(t, map[string]int{"file": 3, "error": 3, "summary": 1}, records)
	assert.Contains(t, lines[len(lines)-1], `"files_scanned":3`)
}

func TestWriteReportInvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, sampleResult(), Options{Format: "xml"})
	assert.Error(t, err)
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "short", truncateWidth("short", 10))
	got := truncateWidth(strings.Repeat("x", 20), 10)
	assert.Equal(t, "xxxxxxx...", got)
	assert.Equal(t, "abc", truncateWidth("abc", 0))
}
