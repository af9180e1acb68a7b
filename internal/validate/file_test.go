package validate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sessionlint/internal/model"
	"sessionlint/internal/schema"
)

var (
	earliestUser = `{"type":"user","uuid":"u-1","sessionId":"` + testSessionID + `","timestamp":"2026-01-10T10:00:00Z","version":"2.0.76","message":{"role":"user","content":"hi"}}`
	earliestBad  = `{"type":"user","uuid":"u-2","sessionId":"` + testSessionID + `","timestamp":"2026-01-10T10:00:01Z","version":"2.0.76","message":{"role":"user","content":"hi"},"bogus":1}`
	latestUser   = `{"type":"user","uuid":"u-3","sessionId":"` + testSessionID + `","timestamp":"2026-01-10T10:00:00Z","version":"2.1.59","message":{"role":"user","content":"hi"}}`
	progressLine = `{"type":"progress","uuid":"p-1","sessionId":"` + testSessionID + `","timestamp":"2026-01-10T10:00:02Z","data":{"kind":"bash"},"toolUseID":"t-1"}`
)

func newTestValidator(t *testing.T) *FileValidator {
	t.Helper()
	reg, err := schema.NewRegistry(schema.Sources{})
	require.NoError(t, err)
	return NewFileValidator(reg, zerolog.Nop())
}

func writeSession(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateMixedFile(t *testing.T) {
	path := writeSession(t, t.TempDir(), "mixed.jsonl", `{not json`, earliestUser, earliestBad)

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed())

	res := out.Result
	assert.Equal(t, 2, res.TotalLines)
	assert.Equal(t, 1, res.ValidLines)
	assert.Equal(t, "2.0.76", res.RawVersion)
	assert.Equal(t, model.KeyEarliest, res.SchemaKey)
	assert.False(t, res.Skipped)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 1, res.Errors[0].Line)
	assert.Equal(t, model.KindParse, res.Errors[0].Kind)
	assert.Equal(t, model.PathParse, res.Errors[0].Path)
	assert.True(t, strings.HasPrefix(res.Errors[0].Message, "JSON parse error:"))
	assert.Equal(t, 3, res.Errors[1].Line)
	assert.Equal(t, model.KindUnknownField, res.Errors[1].Kind)
}

func TestValidateEmptyFile(t *testing.T) {
	path := writeSession(t, t.TempDir(), "empty.jsonl", "", "   ", "")

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed())
	assert.Zero(t, out.Result.TotalLines)
	assert.Zero(t, out.Result.ValidLines)
	assert.Empty(t, out.Result.Errors)
	assert.False(t, out.Result.Skipped)
}

func TestValidateOnlyParseErrors(t *testing.T) {
	path := writeSession(t, t.TempDir(), "broken.jsonl", `{"a":`, `[1,`)

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed())
	assert.Equal(t, StateDone, out.State)
	assert.Zero(t, out.Result.TotalLines)
	require.Len(t, out.Result.Errors, 2)
	for _, e := range out.Result.Errors {
		assert.Equal(t, model.KindParse, e.Kind)
	}
}

func TestValidateNonObjectLinesTakeLineSlots(t *testing.T) {
	path := writeSession(t, t.TempDir(), "garbage.jsonl", earliestUser, `[1]`, `"str"`)

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed())

	res := out.Result
	assert.Equal(t, model.KeyEarliest, res.SchemaKey)
	assert.Equal(t, 3, res.TotalLines)
	assert.Equal(t, 1, res.ValidLines)
	require.Len(t, res.Errors, 2)
	for i, e := range res.Errors {
		assert.Equal(t, i+2, e.Line)
		assert.Equal(t, model.PathRoot, e.Path)
		assert.Equal(t, model.KindInvalidValue, e.Kind)
	}
	assert.Contains(t, res.Errors[0].Message, "got array, want object")
}

func TestValidateArrayAfterVersionedRecord(t *testing.T) {
	path := writeSession(t, t.TempDir(), "array.jsonl", latestUser, `[1]`)

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed())
	assert.Equal(t, 2, out.Result.TotalLines)
	assert.Equal(t, 1, out.Result.ValidLines)
	require.Len(t, out.Result.Errors, 1)
	assert.Equal(t, 2, out.Result.Errors[0].Line)
}

func TestValidateOversizedLine(t *testing.T) {
	huge := `{"type":"summary","summary":"` + strings.Repeat("x", 9<<20) + `","leafUuid":"u-1"}`
	path := writeSession(t, t.TempDir(), "huge.jsonl", earliestUser, huge, earliestBad, `{broken`)

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed(), "%v", out.Fault)

	res := out.Result
	assert.Equal(t, 3, res.TotalLines)
	require.NotEmpty(t, res.Errors)
	lines := map[int]model.ErrorKind{}
	for _, e := range res.Errors {
		lines[e.Line] = e.Kind
	}
	assert.Equal(t, model.KindUnknownField, lines[3])
	assert.Equal(t, model.KindParse, lines[4])
	assert.Less(t, len(res.Errors[0].Snippet), SnippetLimit*4)
}

func TestValidateLastLineWithoutNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tail.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(earliestUser+"\r\n"+earliestUser), 0o644))

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed())
	assert.Equal(t, 2, out.Result.TotalLines)
	assert.Equal(t, 2, out.Result.ValidLines)
}

func TestValidateSkipsUnsupportedVersion(t *testing.T) {
	old := strings.Replace(earliestUser, "2.0.76", "2.0.50", 1)
	path := writeSession(t, t.TempDir(), "old.jsonl", old, old, `oops`)

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed())

	res := out.Result
	assert.Equal(t, StateSkipped, out.State)
	assert.True(t, res.Skipped)
	assert.Equal(t, "2.0.50", res.RawVersion)
	assert.Equal(t, "CLI version 2.0.50 < minimum supported 2.0.76", res.SkipReason)
	assert.Equal(t, 2, res.TotalLines)
	assert.Zero(t, res.ValidLines)
	assert.Equal(t, "", res.Schema())
}

func TestValidateSkipsUnparsableVersion(t *testing.T) {
	odd := strings.Replace(earliestUser, "2.0.76", "dev-build", 1)
	path := writeSession(t, t.TempDir(), "odd.jsonl", odd, latestUser)

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed())
	assert.Equal(t, "2.1.59", out.Result.RawVersion)
	assert.Equal(t, model.KeyLatest, out.Result.SchemaKey)
}

func TestValidateProgressFallback(t *testing.T) {
	path := writeSession(t, t.TempDir(), "progress.jsonl", progressLine)

	out := newTestValidator(t).Validate(path)
	require.False(t, out.Failed())
	assert.Equal(t, model.KeyLatest, out.Result.SchemaKey)
	assert.Equal(t, 1, out.Result.ValidLines)
	assert.Empty(t, out.Result.RawVersion)
}

func TestValidateMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.jsonl")

	out := newTestValidator(t).Validate(path)
	require.True(t, out.Failed())
	assert.ErrorIs(t, out.Fault, os.ErrNotExist)
	assert.Equal(t, StateFaulted, out.State)

	require.Len(t, out.Result.Errors, 1)
	got := out.Result.Errors[0]
	assert.Equal(t, 0, got.Line)
	assert.Equal(t, model.PathFile, got.Path)
	assert.Equal(t, model.KindFile, got.Kind)
	assert.True(t, strings.HasPrefix(got.Message, "File error:"))
}

func TestValidateResolverFault(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMockSchemaResolver(ctrl)
	resolver.EXPECT().Resolve(model.KeyEarliest).Return(nil, errors.New("schema store offline"))

	path := writeSession(t, t.TempDir(), "a.jsonl", earliestUser)
	out := NewFileValidator(resolver, zerolog.Nop()).Validate(path)

	require.True(t, out.Failed())
	assert.Equal(t, StateFaulted, out.State)
	assert.Contains(t, out.Result.Errors[0].Message, "schema store offline")
}

func TestValidateResolvesOncePerFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := NewMockSchemaResolver(ctrl)
	resolver.EXPECT().Resolve(model.KeyLatest).Return(compiled(t, model.KeyLatest), nil).Times(1)

	path := writeSession(t, t.TempDir(), "a.jsonl", latestUser, progressLine, latestUser)
	out := NewFileValidator(resolver, zerolog.Nop()).Validate(path)

	require.False(t, out.Failed())
	assert.Equal(t, StateDone, out.State)
	assert.Equal(t, 3, out.Result.ValidLines)
}

func TestValidateIsIdempotent(t *testing.T) {
	path := writeSession(t, t.TempDir(), "mixed.jsonl", `{not json`, earliestUser, earliestBad)
	v := newTestValidator(t)

	first := v.Validate(path)
	second := v.Validate(path)
	assert.Equal(t, first, second)
}

func TestValidateCompressed(t *testing.T) {
	dir := t.TempDir()
	lines := []string{`{not json`, earliestUser, earliestBad}
	plain := writeSession(t, dir, "s.jsonl", lines...)
	data, err := os.ReadFile(plain)
	require.NoError(t, err)

	gzPath := filepath.Join(dir, "s.jsonl.gz")
	gzFile, err := os.Create(gzPath)
	require.NoError(t, err)
	gw := gzip.NewWriter(gzFile)
	_, err = gw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, gzFile.Close())

	zstPath := filepath.Join(dir, "s.jsonl.zst")
	zstFile, err := os.Create(zstPath)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(zstFile)
	require.NoError(t, err)
	_, err = zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zstFile.Close())

	v := newTestValidator(t)
	want := v.Validate(plain).Result

	for _, path := range []string{gzPath, zstPath} {
		got := v.Validate(path)
		require.False(t, got.Failed(), path)
		assert.Equal(t, want.TotalLines, got.Result.TotalLines, path)
		assert.Equal(t, want.ValidLines, got.Result.ValidLines, path)
		assert.Len(t, got.Result.Errors, len(want.Errors), path)
	}
}

func TestValidateCorruptGzipIsFault(t *testing.T) {
	path := writeSession(t, t.TempDir(), "bad.jsonl.gz", "plain text")

	out := newTestValidator(t).Validate(path)
	assert.True(t, out.Failed())
}

func TestValidateAllParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, body := range [][]string{
		{earliestUser, earliestBad},
		{latestUser, progressLine},
		{`{bad`},
		{strings.Replace(earliestUser, "2.0.76", "2.0.10", 1)},
		{},
	} {
		paths = append(paths, writeSession(t, dir, string(rune('a'+i))+".jsonl", body...))
	}
	paths = append(paths, filepath.Join(dir, "missing.jsonl"))

	v := newTestValidator(t)
	seq := v.ValidateAll(paths, 1)
	par := v.ValidateAll(paths, 4)

	require.Len(t, par, len(paths))
	for i := range paths {
		assert.Equal(t, paths[i], par[i].Result.Path)
		assert.Equal(t, seq[i].Result, par[i].Result)
		assert.Equal(t, seq[i].Failed(), par[i].Failed())
	}
}
