package validate

import (
	"sessionlint/internal/model"
	"sessionlint/internal/version"
)

// FileDetection is the version check for one file without validation.
type FileDetection struct {
	Path        string
	Detection   version.Detection
	Records     int
	ParseErrors int
}

// DetectFile reads path and reports which schema generation it would be
// validated against.
func DetectFile(path string) (FileDetection, error) {
	lines, parseErrs, err := readRecords(path)
	if err != nil {
		return FileDetection{Path: path}, err
	}

	records := make([]model.Record, len(lines))
	for i, line := range lines {
		records[i] = line.record
	}
	return FileDetection{
		Path:        path,
		Detection:   version.Detect(records),
		Records:     len(lines),
		ParseErrors: len(parseErrs),
	}, nil
}
