// Package validate checks session log files against the schema generation
// they were written under.
package validate

import (
	"cmp"
	"context"
	"fmt"
	"runtime/debug"
	"slices"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/sync/errgroup"

	"sessionlint/internal/model"
	"sessionlint/internal/version"
)

//go:generate mockgen -source=file.go -destination=mock_resolver_test.go -package=validate SchemaResolver

// SchemaResolver returns the compiled schema for a generation.
type SchemaResolver interface {
	Resolve(key model.SchemaKey) (*jsonschema.Schema, error)
}

// Outcome is the result of validating one file. Fault is set when the file
// could not be processed; Result then holds a single file error. State is the
// phase the file ended in: done, skipped or faulted.
type Outcome struct {
	Result model.FileResult
	Fault  error
	State  string
}

// Failed reports whether the file hit a processing fault.
func (o Outcome) Failed() bool {
	return o.Fault != nil
}

// FileValidator validates whole session files.
type FileValidator struct {
	resolver SchemaResolver
	logger   zerolog.Logger
}

// NewFileValidator returns a validator that resolves schemas through resolver.
func NewFileValidator(resolver SchemaResolver, logger zerolog.Logger) *FileValidator {
	return &FileValidator{
		resolver: resolver,
		logger:   logger.With().Str("component", "file-validator").Logger(),
	}
}

// Validate processes path. It never panics and never returns an error: any
// fault is folded into the returned Outcome.
func (v *FileValidator) Validate(path string) (out Outcome) {
	ctx := context.Background()
	logger := v.logger.With().Str("file", path).Logger()
	lc := newLifecycle(logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("validator panicked")
			out = faultOutcome(ctx, lc, path, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err := v.validate(ctx, lc, path)
	if err != nil {
		logger.Warn().Err(err).Str("state", lc.Current()).Msg("file fault")
		return faultOutcome(ctx, lc, path, err)
	}

	logger.Debug().
		Str("state", lc.Current()).
		Str("version", result.RawVersion).
		Str("schema", result.Schema()).
		Bool("skipped", result.Skipped).
		Int("total", result.TotalLines).
		Int("valid", result.ValidLines).
		Int("errors", len(result.Errors)).
		Msg("file validated")
	return Outcome{Result: result, State: lc.Current()}
}

func (v *FileValidator) validate(ctx context.Context, lc *fsm.FSM, path string) (model.FileResult, error) {
	result := model.FileResult{Path: path}

	lines, parseErrs, err := readRecords(path)
	if err != nil {
		return result, err
	}
	result.Errors = parseErrs

	if len(lines) == 0 {
		return result, transition(ctx, lc, EventEmpty)
	}
	if err := transition(ctx, lc, EventRead); err != nil {
		return result, err
	}

	records := make([]model.Record, len(lines))
	for i, line := range lines {
		records[i] = line.record
	}
	detected := version.Detect(records)
	result.RawVersion = detected.Raw

	if !detected.Supported() {
		result.Skipped = true
		result.SkipReason = version.SkipReason(detected.Raw)
		result.TotalLines = len(lines)
		return result, transition(ctx, lc, EventSkip)
	}
	if err := transition(ctx, lc, EventValidate); err != nil {
		return result, err
	}

	sch, err := v.resolver.Resolve(detected.Key)
	if err != nil {
		return result, err
	}
	result.SchemaKey = detected.Key

	for _, line := range lines {
		result.TotalLines++
		lineErrs := ValidateRecord(path, line.number, line.raw, line.value, sch)
		if len(lineErrs) == 0 {
			result.ValidLines++
			continue
		}
		result.Errors = append(result.Errors, lineErrs...)
	}

	// Parse errors were collected first; restore line order.
	sortByLine(result.Errors)

	return result, transition(ctx, lc, EventFinish)
}

func sortByLine(errs []model.ValidationError) {
	slices.SortStableFunc(errs, func(a, b model.ValidationError) int {
		return cmp.Compare(a.Line, b.Line)
	})
}

func transition(ctx context.Context, lc *fsm.FSM, event string) error {
	if err := lc.Event(ctx, event); err != nil {
		return fmt.Errorf("file state %s -> %s: %w", lc.Current(), event, err)
	}
	return nil
}

func faultOutcome(ctx context.Context, lc *fsm.FSM, path string, err error) Outcome {
	if lc.Can(EventFault) {
		_ = lc.Event(ctx, EventFault)
	}
	return Outcome{
		Result: model.FileResult{
			Path: path,
			Errors: []model.ValidationError{{
				File:    path,
				Line:    0,
				Path:    model.PathFile,
				Message: fmt.Sprintf("File error: %v", err),
				Kind:    model.KindFile,
			}},
		},
		Fault: err,
		State: StateFaulted,
	}
}

// ValidateAll validates paths with at most workers files in flight. Outcomes
// are returned in the order of paths regardless of completion order.
func (v *FileValidator) ValidateAll(paths []string, workers int) []Outcome {
	outcomes := make([]Outcome, len(paths))
	if workers <= 1 {
		for i, path := range paths {
			outcomes[i] = v.Validate(path)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			outcomes[i] = v.Validate(path)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
