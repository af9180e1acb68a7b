package model

// Field path markers used when an error is not tied to a location inside a record.
const (
	PathRoot  = "(root)"
	PathParse = "(parse)"
	PathFile  = "(file)"
)

// ErrorKind classifies a ValidationError for the report histogram.
type ErrorKind string

const (
	KindParse           ErrorKind = "parse"
	KindMissingRequired ErrorKind = "missing_required"
	KindInvalidValue    ErrorKind = "invalid_value"
	KindUnknownField    ErrorKind = "unknown_field"
	KindFile            ErrorKind = "file"
	KindOther           ErrorKind = "other"
)

// Label returns the human readable histogram label.
func (k ErrorKind) Label() string {
	switch k {
	case KindParse:
		return "JSON parse errors"
	case KindMissingRequired:
		return "Missing required fields"
	case KindInvalidValue:
		return "Invalid value"
	case KindUnknownField:
		return "Unknown fields"
	case KindFile:
		return "File errors"
	default:
		return "Other"
	}
}

// ValidationError describes a single problem found in a session file.
type ValidationError struct {
	File       string    `json:"file"`
	Line       int       `json:"line"`
	Path       string    `json:"path"`
	Message    string    `json:"message"`
	SchemaPath string    `json:"schema_path"`
	Snippet    string    `json:"snippet"`
	Kind       ErrorKind `json:"kind"`
}

// FileResult is the outcome of validating one file.
type FileResult struct {
	Path       string            `json:"path"`
	TotalLines int               `json:"total_lines"`
	ValidLines int               `json:"valid_lines"`
	Errors     []ValidationError `json:"errors"`
	Skipped    bool              `json:"skipped"`
	SkipReason string            `json:"skip_reason,omitempty"`
	RawVersion string            `json:"raw_version,omitempty"`
	SchemaKey  SchemaKey         `json:"-"`
}

// Schema returns the schema generation the file was validated against, or ""
// when no schema was used.
func (r FileResult) Schema() string {
	if !r.SchemaKey.Valid() {
		return ""
	}
	return r.SchemaKey.String()
}

// SkippedFile records a file excluded from validation.
type SkippedFile struct {
	Name       string `json:"name"`
	RawVersion string `json:"raw_version"`
	Reason     string `json:"reason"`
	Lines      int    `json:"lines"`
}

// FileSummary is the per-file line of the report.
type FileSummary struct {
	Path       string `json:"path"`
	Schema     string `json:"schema,omitempty"`
	RawVersion string `json:"raw_version,omitempty"`
	TotalLines int    `json:"total_lines"`
	ValidLines int    `json:"valid_lines"`
	Errors     int    `json:"errors"`
	Skipped    bool   `json:"skipped,omitempty"`
	Fault      bool   `json:"fault,omitempty"`
}

// AggregateResult folds many FileResults into directory level totals.
type AggregateResult struct {
	FilesScanned   int               `json:"files_scanned"`
	FilesValidated int               `json:"files_validated"`
	FilesSkipped   int               `json:"files_skipped"`
	TotalLines     int               `json:"total_lines"`
	ValidLines     int               `json:"valid_lines"`
	FailedFiles    int               `json:"failed_files"`
	ErrorKinds     map[ErrorKind]int `json:"error_kinds"`
	Errors         []ValidationError `json:"errors"`
	Skipped        []SkippedFile     `json:"skipped_files"`
	Files          []FileSummary     `json:"files"`
}

// FailedLines is the number of validated lines that did not pass.
func (a AggregateResult) FailedLines() int {
	return a.TotalLines - a.ValidLines
}

// SkippedLines is the number of parsed lines in skipped files.
func (a AggregateResult) SkippedLines() int {
	n := 0
	for _, s := range a.Skipped {
		n += s.Lines
	}
	return n
}

// SuccessRate returns the percentage of valid lines, 100 when nothing was validated.
func (a AggregateResult) SuccessRate() float64 {
	if a.TotalLines == 0 {
		return 100
	}
	return float64(a.ValidLines) / float64(a.TotalLines) * 100
}

// OnlySkipped reports whether no lines were validated because every
// non-empty file was below the minimum supported version.
func (a AggregateResult) OnlySkipped() bool {
	return a.TotalLines == 0 && len(a.Skipped) > 0
}

// Success implements the exit status contract: every validated line is
// schema-valid. Parse and file errors do not consume line slots, so they only
// fail the run when strict is set.
func (a AggregateResult) Success(strict bool) bool {
	if a.FailedLines() != 0 {
		return false
	}
	if strict {
		return a.ErrorKinds[KindParse] == 0 && a.ErrorKinds[KindFile] == 0
	}
	return true
}
