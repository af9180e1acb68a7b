// Package config loads sessionlint.yaml and supplies defaults for every
// setting the CLI exposes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sessionlint/internal/schema"
	"sessionlint/internal/store"
)

// FileName is the config file looked up from the working directory.
const FileName = "sessionlint.yaml"

// EnvConfig names a config file explicitly.
const EnvConfig = "SESSIONLINT_CONFIG"

const (
	DefaultWorkers    = 1
	DefaultErrorLimit = 50
	DefaultFormat     = "text"
	DefaultLogLevel   = "warn"

	maxWalkUp = 10
)

// Config is the top-level configuration loaded from sessionlint.yaml.
type Config struct {
	Schemas    schema.Sources `yaml:"schemas,omitempty"`
	Extensions []string       `yaml:"extensions,omitempty"`
	Recursive  *bool          `yaml:"recursive,omitempty"`
	Workers    int            `yaml:"workers,omitempty"`
	ErrorLimit int            `yaml:"error_limit,omitempty"` // negative lists every error
	Format     string         `yaml:"format,omitempty"`
	LogLevel   string         `yaml:"log_level,omitempty"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// New returns a Config with all defaults populated.
func New() *Config {
	return &Config{
		Extensions: append([]string(nil), store.DefaultExtensions...),
		Recursive:  boolPtr(false),
		Workers:    DefaultWorkers,
		ErrorLimit: DefaultErrorLimit,
		Format:     DefaultFormat,
		LogLevel:   DefaultLogLevel,
	}
}

// IsRecursive reports whether directories are walked recursively.
func (c *Config) IsRecursive() bool {
	return c.Recursive != nil && *c.Recursive
}

// Load finds sessionlint.yaml. SESSIONLINT_CONFIG wins when set; otherwise
// the file is searched for by walking up from startDir. If no file is found,
// defaults are returned with a nil error.
func Load(startDir string) (*Config, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return LoadFile(p)
	}

	p, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("locate %s: %w", FileName, err)
	}
	return LoadFile(p)
}

// LoadFile reads the config at path and merges it onto the defaults. Schema
// locators are resolved relative to the config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := New()
	merge(cfg, &fileCfg)
	cfg.Path = path
	cfg.Schemas = resolveSources(filepath.Dir(path), cfg.Schemas)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges that YAML typing cannot express. It also
// normalizes Format to lower case.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	c.Format = strings.ToLower(c.Format)
	switch c.Format {
	case "text", "plain", "table", "json", "jsonl":
	default:
		return fmt.Errorf("unsupported format %q", c.Format)
	}
	return nil
}

func merge(dst, src *Config) {
	if src.Schemas.Earliest != "" {
		dst.Schemas.Earliest = src.Schemas.Earliest
	}
	if src.Schemas.Mid != "" {
		dst.Schemas.Mid = src.Schemas.Mid
	}
	if src.Schemas.Latest != "" {
		dst.Schemas.Latest = src.Schemas.Latest
	}
	if src.Schemas.History != "" {
		dst.Schemas.History = src.Schemas.History
	}
	if len(src.Extensions) > 0 {
		dst.Extensions = src.Extensions
	}
	if src.Recursive != nil {
		dst.Recursive = src.Recursive
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.ErrorLimit != 0 {
		dst.ErrorLimit = src.ErrorLimit
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

func resolveSources(dir string, src schema.Sources) schema.Sources {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	return schema.Sources{
		Earliest: abs(src.Earliest),
		Mid:      abs(src.Mid),
		Latest:   abs(src.Latest),
		History:  abs(src.History),
	}
}

// findConfigFile walks up from dir looking for sessionlint.yaml.
func findConfigFile(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxWalkUp; i++ {
		p := filepath.Join(dir, FileName)
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func boolPtr(b bool) *bool {
	return &b
}
