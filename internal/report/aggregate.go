// Package report folds per-file validation outcomes into run level totals.
package report

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"

	"sessionlint/internal/model"
	"sessionlint/internal/validate"
)

// Aggregator accumulates outcomes in the order they are added.
type Aggregator struct {
	result model.AggregateResult
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		result: model.AggregateResult{
			ErrorKinds: make(map[model.ErrorKind]int),
		},
	}
}

// Add folds one file outcome into the running totals.
func (a *Aggregator) Add(out validate.Outcome) {
	res := out.Result
	a.result.FilesScanned++

	summary := model.FileSummary{
		Path:       res.Path,
		Schema:     res.Schema(),
		RawVersion: res.RawVersion,
		TotalLines: res.TotalLines,
		ValidLines: res.ValidLines,
		Errors:     len(res.Errors),
		Skipped:    res.Skipped,
		Fault:      out.Failed(),
	}
	a.result.Files = append(a.result.Files, summary)

	if res.Skipped {
		a.result.FilesSkipped++
		a.result.Skipped = append(a.result.Skipped, model.SkippedFile{
			Name:       filepath.Base(res.Path),
			RawVersion: res.RawVersion,
			Reason:     res.SkipReason,
			Lines:      res.TotalLines,
		})
		return
	}

	a.result.FilesValidated++
	a.result.TotalLines += res.TotalLines
	a.result.ValidLines += res.ValidLines

	if len(res.Errors) == 0 {
		return
	}
	a.result.FailedFiles++
	for _, e := range res.Errors {
		if e.Kind == "" {
			e.Kind = Classify(e.Message)
		}
		a.result.ErrorKinds[e.Kind]++
		a.result.Errors = append(a.result.Errors, e)
	}
}

// Result returns the totals folded so far. The returned value shares no
// slices with later Add calls.
func (a *Aggregator) Result() model.AggregateResult {
	res := a.result
	res.Errors = slices.Clone(a.result.Errors)
	res.Skipped = slices.Clone(a.result.Skipped)
	res.Files = slices.Clone(a.result.Files)
	res.ErrorKinds = make(map[model.ErrorKind]int, len(a.result.ErrorKinds))
	for k, v := range a.result.ErrorKinds {
		res.ErrorKinds[k] = v
	}
	return res
}

// Aggregate folds outcomes in order.
func Aggregate(outcomes []validate.Outcome) model.AggregateResult {
	agg := NewAggregator()
	for _, out := range outcomes {
		agg.Add(out)
	}
	return agg.Result()
}

// Classify derives an error kind from message text. It is only used for
// errors that were not tagged when they were produced.
func Classify(message string) model.ErrorKind {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "parse error"):
		return model.KindParse
	case strings.HasPrefix(lower, "file error"):
		return model.KindFile
	case strings.Contains(lower, "additional properties"), strings.Contains(lower, "additionalproperties"):
		return model.KindUnknownField
	case strings.Contains(lower, "required"):
		return model.KindMissingRequired
	case strings.Contains(lower, "not valid"):
		return model.KindInvalidValue
	default:
		return model.KindOther
	}
}

// KindCount is one histogram bucket.
type KindCount struct {
	Kind  model.ErrorKind `json:"kind"`
	Label string          `json:"label"`
	Count int             `json:"count"`
}

// Histogram returns the error kind counts, largest first. Ties are broken by
// label so output is stable.
func Histogram(res model.AggregateResult) []KindCount {
	out := make([]KindCount, 0, len(res.ErrorKinds))
	for k, n := range res.ErrorKinds {
		if n == 0 {
			continue
		}
		out = append(out, KindCount{Kind: k, Label: k.Label(), Count: n})
	}
	slices.SortFunc(out, func(a, b KindCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
