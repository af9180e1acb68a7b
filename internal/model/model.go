// Package model provides the shared types of the session validation pipeline.
package model

import "fmt"

// SchemaKey selects one schema generation. Keys are ordered:
// KeyEarliest < KeyMid < KeyLatest.
type SchemaKey int

const (
	// KeyUnsupported is only produced by version detection and never resolved.
	KeyUnsupported SchemaKey = iota
	// KeyEarliest covers CLI 2.0.76 through 2.0.x.
	KeyEarliest
	// KeyMid covers CLI 2.1.0 and 2.1.1.
	KeyMid
	// KeyLatest covers CLI 2.1.2 and newer.
	KeyLatest
)

// SchemaKeys lists the resolvable keys in ascending order.
var SchemaKeys = []SchemaKey{KeyEarliest, KeyMid, KeyLatest}

// String returns the schema generation name, which is also the directory the
// schema document lives in.
func (k SchemaKey) String() string {
	switch k {
	case KeyEarliest:
		return "2.0.76"
	case KeyMid:
		return "2.1.1"
	case KeyLatest:
		return "2.1.59"
	default:
		return "unsupported"
	}
}

// Name returns the symbolic name used in configuration files.
func (k SchemaKey) Name() string {
	switch k {
	case KeyEarliest:
		return "earliest"
	case KeyMid:
		return "mid"
	case KeyLatest:
		return "latest"
	default:
		return "unsupported"
	}
}

// Valid reports whether k can be resolved to a schema.
func (k SchemaKey) Valid() bool {
	return k >= KeyEarliest && k <= KeyLatest
}

// ParseSchemaKey accepts either the symbolic name or the generation name.
func ParseSchemaKey(s string) (SchemaKey, error) {
	for _, k := range SchemaKeys {
		if s == k.Name() || s == k.String() {
			return k, nil
		}
	}
	return KeyUnsupported, fmt.Errorf("unknown schema key %q", s)
}

// EntryType represents the top-level "type" field values in session logs.
type EntryType string

const (
	EntryTypeUser      EntryType = "user"
	EntryTypeAssistant EntryType = "assistant"
	EntryTypeSummary   EntryType = "summary"
	EntryTypeSystem    EntryType = "system"
	// EntryTypeProgress only appears in logs written by CLI 2.1.2 and newer.
	EntryTypeProgress EntryType = "progress"
)

// Record is one decoded JSON object from a session log line. The shape is
// left open; the schema decides what is allowed.
type Record map[string]any

// AsRecord returns v as a Record when it decoded from a JSON object, and nil
// for any other JSON value. The accessors treat a nil Record as empty.
func AsRecord(v any) Record {
	switch obj := v.(type) {
	case Record:
		return obj
	case map[string]any:
		return Record(obj)
	default:
		return nil
	}
}

// Version returns the "version" field when it is a string.
func (r Record) Version() string {
	v, _ := r["version"].(string)
	return v
}

// Type returns the "type" field when it is a string.
func (r Record) Type() EntryType {
	v, _ := r["type"].(string)
	return EntryType(v)
}
