// Package schema loads and caches the JSON Schema documents for each session
// log generation.
package schema

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"sessionlint/internal/model"
)

//go:embed schemas
var embedded embed.FS

// ErrUnknownKey is returned when a key outside the closed set is resolved.
var ErrUnknownKey = errors.New("unknown schema key")

// baseURL anchors every document so relative $refs between the session
// schemas and the history schema resolve the same way whether a document is
// embedded or read from disk.
const baseURL = "file:///sessionlint/schemas/"

const historyDoc = "history.schema.json"

// Sources maps each schema generation to a locator. An empty locator selects
// the embedded document; anything else is read from the filesystem.
type Sources struct {
	Earliest string `yaml:"earliest,omitempty"`
	Mid      string `yaml:"mid,omitempty"`
	Latest   string `yaml:"latest,omitempty"`
	History  string `yaml:"history,omitempty"`
}

// Locator returns the configured locator for key.
func (s Sources) Locator(key model.SchemaKey) string {
	switch key {
	case model.KeyEarliest:
		return s.Earliest
	case model.KeyMid:
		return s.Mid
	case model.KeyLatest:
		return s.Latest
	default:
		return ""
	}
}

// Describe returns where the document for key comes from.
func (s Sources) Describe(key model.SchemaKey) string {
	if loc := s.Locator(key); loc != "" {
		return loc
	}
	return "embedded:" + embeddedName(key)
}

// DescribeHistory returns where the history document comes from.
func (s Sources) DescribeHistory() string {
	if s.History != "" {
		return s.History
	}
	return "embedded:" + historyDoc
}

func embeddedName(key model.SchemaKey) string {
	return path.Join("v"+key.String(), "session.schema.json")
}

func resourceURL(key model.SchemaKey) string {
	return baseURL + embeddedName(key)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for load and compile events.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry resolves schema keys to compiled schemas. Documents are loaded at
// construction; each generation is compiled on first use and cached. A
// Registry is safe for concurrent use.
type Registry struct {
	sources Sources
	logger  zerolog.Logger

	mu       sync.Mutex
	compiler *jsonschema.Compiler
	compiled map[model.SchemaKey]*jsonschema.Schema
}

// NewRegistry loads every document named by src.
func NewRegistry(src Sources, opts ...Option) (*Registry, error) {
	r := &Registry{
		sources:  src,
		logger:   zerolog.Nop(),
		compiler: jsonschema.NewCompiler(),
		compiled: make(map[model.SchemaKey]*jsonschema.Schema, len(model.SchemaKeys)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "schema-registry").Logger()
	r.compiler.DefaultDraft(jsonschema.Draft2020)

	history, err := loadDocument(src.History, historyDoc)
	if err != nil {
		return nil, fmt.Errorf("load history schema: %w", err)
	}
	if err := r.compiler.AddResource(baseURL+historyDoc, history); err != nil {
		return nil, fmt.Errorf("add history schema: %w", err)
	}

	for _, key := range model.SchemaKeys {
		doc, err := loadDocument(src.Locator(key), embeddedName(key))
		if err != nil {
			return nil, fmt.Errorf("load schema %s: %w", key, err)
		}
		if err := r.compiler.AddResource(resourceURL(key), doc); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", key, err)
		}
		r.logger.Debug().Str("schema", key.String()).Str("source", src.Describe(key)).Msg("schema loaded")
	}

	return r, nil
}

// Resolve returns the compiled schema for key.
func (r *Registry) Resolve(key model.SchemaKey) (*jsonschema.Schema, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if sch, ok := r.compiled[key]; ok {
		return sch, nil
	}

	sch, err := r.compiler.Compile(resourceURL(key))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", key, err)
	}
	r.compiled[key] = sch
	r.logger.Debug().Str("schema", key.String()).Msg("schema compiled")
	return sch, nil
}

// Sources returns the locators the registry was built from.
func (r *Registry) Sources() Sources {
	return r.sources
}

// Keys lists the generations the registry serves.
func (r *Registry) Keys() []model.SchemaKey {
	return append([]model.SchemaKey(nil), model.SchemaKeys...)
}

func loadDocument(locator, name string) (any, error) {
	var data []byte
	var err error
	if locator == "" {
		data, err = embedded.ReadFile(path.Join("schemas", name))
	} else {
		data, err = os.ReadFile(locator)
	}
	if err != nil {
		return nil, err
	}
	return decode(bytes.NewReader(data))
}

func decode(r io.Reader) (any, error) {
	doc, err := jsonschema.UnmarshalJSON(r)
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return doc, nil
}
