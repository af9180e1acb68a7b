// Package store enumerates the session files a validation run should read.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the session log suffixes recognized in a directory.
var DefaultExtensions = []string{".jsonl", ".jsonl.gz", ".jsonl.zst"}

// ErrNoCandidates is reported as a warning when a directory holds no session
// files. An empty run is not a failure.
var ErrNoCandidates = errors.New("no session files found")

// ListOptions controls how candidates are enumerated.
type ListOptions struct {
	Root       string
	Extensions []string
	Recursive  bool
}

// ListResult contains candidate paths and non-fatal warnings.
type ListResult struct {
	Paths []string
	// Empty counts zero byte files that were left out.
	Empty    int
	Warnings []error
}

// ListCandidates returns the files under Root to validate. A Root naming a
// regular file is always a candidate, whatever its size or suffix.
func ListCandidates(opts ListOptions) (ListResult, error) {
	root := opts.Root
	if root == "" {
		return ListResult{}, errors.New("root path is required")
	}

	info, err := os.Stat(root)
	if err != nil {
		return ListResult{}, fmt.Errorf("stat target: %w", err)
	}
	if !info.IsDir() {
		return ListResult{Paths: []string{root}}, nil
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var result ListResult

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			return nil
		}

		if d.IsDir() {
			if path != root && !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !hasExtension(d.Name(), exts) {
			return nil
		}

		// Stat follows symlinks so a linked session file is still a candidate.
		fi, err := os.Stat(path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("stat %s: %w", path, err))
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		if fi.Size() == 0 {
			result.Empty++
			return nil
		}

		result.Paths = append(result.Paths, path)
		return nil
	})
	if err != nil {
		return result, err
	}

	sort.Strings(result.Paths)

	if len(result.Paths) == 0 {
		result.Warnings = append(result.Warnings, fmt.Errorf("%w under %s", ErrNoCandidates, root))
	}
	return result, nil
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
