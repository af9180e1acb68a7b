package validate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"sessionlint/internal/model"
)

// parsedLine is a line that decoded as JSON, kept with its position. value
// is the decoded document; record is set only when value is an object.
type parsedLine struct {
	number int
	raw    string
	value  any
	record model.Record
}

// openSession opens path, decompressing .gz and .zst files on the fly.
func openSession(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(file)
		if err != nil {
			file.Close() //nolint:errcheck
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return &stackedReader{Reader: zr, closers: []io.Closer{zr, file}}, nil

	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(file)
		if err != nil {
			file.Close() //nolint:errcheck
			return nil, fmt.Errorf("open zstd stream: %w", err)
		}
		rc := zr.IOReadCloser()
		return &stackedReader{Reader: rc, closers: []io.Closer{rc, file}}, nil

	default:
		return file, nil
	}
}

type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// lineReader yields the lines of a session log without a length cap. A record
// carrying an inline image or a large tool result may run to many megabytes.
type lineReader struct {
	r   *bufio.Reader
	err error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// next returns the next line without its terminator. ok is false once the
// input is exhausted or a read fails; Err reports the failure.
func (lr *lineReader) next() (line string, ok bool) {
	if lr.err != nil {
		return "", false
	}
	line, err := lr.r.ReadString('\n')
	if err != nil {
		lr.err = err
		if err != io.EOF || line == "" {
			return "", false
		}
	}
	return strings.TrimSuffix(line, "\n"), true
}

func (lr *lineReader) Err() error {
	if lr.err == io.EOF {
		return nil
	}
	return lr.err
}

// readRecords decodes every non-blank line of path. Lines that fail to decode
// become parse errors and do not stop the scan.
func readRecords(path string) ([]parsedLine, []model.ValidationError, error) {
	rc, err := openSession(path)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close() //nolint:errcheck

	var (
		lines     []parsedLine
		parseErrs []model.ValidationError
		lineNum   int
	)

	reader := newLineReader(rc)
	for {
		line, ok := reader.next()
		if !ok {
			break
		}
		lineNum++
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		doc, err := decodeLine(text)
		if err != nil {
			parseErrs = append(parseErrs, model.ValidationError{
				File:    path,
				Line:    lineNum,
				Path:    model.PathParse,
				Message: fmt.Sprintf("JSON parse error: %v", err),
				Snippet: Snippet(text),
				Kind:    model.KindParse,
			})
			continue
		}
		lines = append(lines, parsedLine{number: lineNum, raw: text, value: doc, record: model.AsRecord(doc)})
	}

	if err := reader.Err(); err != nil {
		return nil, nil, fmt.Errorf("read session: %w", err)
	}

	return lines, parseErrs, nil
}

// decodeLine decodes one JSON value. Any value is accepted here; a record
// that is not an object is rejected by the schema.
func decodeLine(text string) (any, error) {
	return jsonschema.UnmarshalJSON(strings.NewReader(text))
}
