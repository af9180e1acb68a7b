// Package version detects which schema generation a session log was written under.
package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"sessionlint/internal/model"
)

// MinSupported is the oldest CLI version with a schema.
const MinSupported = "2.0.76"

var minSupported = semver.MustParse(MinSupported)

// ErrTooFewParts is returned by Parse for versions without major, minor and patch.
var ErrTooFewParts = errors.New("version needs major.minor.patch")

// Tag is a parsed CLI version.
type Tag struct {
	Raw     string
	Version *semver.Version
}

// Major returns the major component.
func (t Tag) Major() uint64 { return t.Version.Major() }

// Minor returns the minor component.
func (t Tag) Minor() uint64 { return t.Version.Minor() }

// Patch returns the patch component.
func (t Tag) Patch() uint64 { return t.Version.Patch() }

// Parse reads the first three dot separated components of raw as integers.
// Extra components are ignored and leading zeros are dropped, so 2.01.5 reads
// as 2.1.5; pre-release and build suffixes on the patch component make the
// version unparsable.
func Parse(raw string) (Tag, error) {
	parts := strings.Split(raw, ".")
	if len(parts) < 3 {
		return Tag{}, fmt.Errorf("parse version %q: %w", raw, ErrTooFewParts)
	}

	core := make([]string, 3)
	for i, part := range parts[:3] {
		core[i] = trimLeadingZeros(part)
	}
	v, err := semver.StrictNewVersion(strings.Join(core, "."))
	if err != nil {
		return Tag{}, fmt.Errorf("parse version %q: %w", raw, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return Tag{}, fmt.Errorf("parse version %q: non-numeric patch", raw)
	}

	return Tag{Raw: raw, Version: v}, nil
}

// trimLeadingZeros drops leading zeros from an all-digit component. Anything
// else is returned unchanged for the strict parser to reject.
func trimLeadingZeros(part string) string {
	if part == "" || strings.TrimLeft(part, "0123456789") != "" {
		return part
	}
	if trimmed := strings.TrimLeft(part, "0"); trimmed != "" {
		return trimmed
	}
	return "0"
}

// Supported reports whether t is at or above MinSupported.
func (t Tag) Supported() bool {
	return !t.Version.LessThan(minSupported)
}

// Key classifies a supported version into its schema generation.
func (t Tag) Key() model.SchemaKey {
	if !t.Supported() {
		return model.KeyUnsupported
	}
	major, minor, patch := t.Major(), t.Minor(), t.Patch()
	switch {
	case major >= 2 && minor >= 1 && patch >= 2:
		return model.KeyLatest
	case major >= 2 && minor >= 1:
		return model.KeyMid
	default:
		return model.KeyEarliest
	}
}

// Detection is the result of scanning a file for its CLI version.
type Detection struct {
	// Key is KeyUnsupported when the version is below MinSupported.
	Key model.SchemaKey
	// Raw is the version string that decided the outcome, empty when the
	// generation was inferred without one.
	Raw string
}

// Supported reports whether the detection resolved to a schema.
func (d Detection) Supported() bool {
	return d.Key.Valid()
}

// Detect returns the schema generation for records in file order.
//
// The first record whose version parses decides. Records with unparsable
// versions are passed over. Without any usable version, a progress record
// implies the latest generation; otherwise the earliest is assumed.
func Detect(records []model.Record) Detection {
	for _, rec := range records {
		raw := rec.Version()
		if raw == "" {
			continue
		}
		tag, err := Parse(raw)
		if err != nil {
			continue
		}
		return Detection{Key: tag.Key(), Raw: raw}
	}

	for _, rec := range records {
		if rec.Type() == model.EntryTypeProgress {
			return Detection{Key: model.KeyLatest}
		}
	}
	return Detection{Key: model.KeyEarliest}
}

// SkipReason formats the message recorded for an unsupported file.
func SkipReason(raw string) string {
	return fmt.Sprintf("CLI version %s < minimum supported %s", raw, MinSupported)
}

// Range describes the CLI versions served by key.
func Range(key model.SchemaKey) string {
	switch key {
	case model.KeyEarliest:
		return ">= 2.0.76, < 2.1.0"
	case model.KeyMid:
		return ">= 2.1.0, < 2.1.2"
	case model.KeyLatest:
		return ">= 2.1.2"
	default:
		return "< " + MinSupported
	}
}
