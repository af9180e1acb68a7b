package validate

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sessionlint/internal/model"
)

// SnippetLimit caps the record excerpt attached to each error.
const SnippetLimit = 200

var printer = message.NewPrinter(language.English)

// ValidateRecord checks the decoded line doc against sch and returns one error
// per violation reported by the schema engine. doc may be any JSON value; raw
// is the source line used for the snippet.
func ValidateRecord(file string, line int, raw string, doc any, sch *jsonschema.Schema) []model.ValidationError {
	if rec, ok := doc.(model.Record); ok {
		doc = map[string]any(rec)
	}
	err := sch.Validate(doc)
	if err == nil {
		return nil
	}

	snippet := Snippet(raw)
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []model.ValidationError{{
			File:    file,
			Line:    line,
			Path:    model.PathRoot,
			Message: fmt.Sprintf("schema: %v", err),
			Snippet: snippet,
			Kind:    model.KindOther,
		}}
	}

	var out []model.ValidationError
	walkLeaves(verr, func(leaf *jsonschema.ValidationError) {
		base := model.ValidationError{
			File:       file,
			Line:       line,
			Path:       instancePath(leaf.InstanceLocation),
			SchemaPath: schemaPath(leaf),
			Snippet:    snippet,
		}
		out = append(out, describe(base, leaf)...)
	})
	return out
}

// walkLeaves visits the violations in the engine's error tree. Combinator
// failures are reported once instead of once per failing branch.
func walkLeaves(verr *jsonschema.ValidationError, visit func(*jsonschema.ValidationError)) {
	switch verr.ErrorKind.(type) {
	case *kind.AnyOf, *kind.OneOf:
		visit(verr)
		return
	}
	if len(verr.Causes) == 0 {
		visit(verr)
		return
	}
	for _, cause := range verr.Causes {
		walkLeaves(cause, visit)
	}
}

func describe(base model.ValidationError, leaf *jsonschema.ValidationError) []model.ValidationError {
	switch k := leaf.ErrorKind.(type) {
	case *kind.Required:
		out := make([]model.ValidationError, 0, len(k.Missing))
		for _, name := range k.Missing {
			e := base
			e.Message = fmt.Sprintf("'%s' is a required property", name)
			e.Kind = model.KindMissingRequired
			out = append(out, e)
		}
		return out

	case *kind.AdditionalProperties:
		out := make([]model.ValidationError, 0, len(k.Properties))
		for _, name := range k.Properties {
			e := base
			e.Message = fmt.Sprintf("Additional properties are not allowed ('%s' was unexpected)", name)
			e.Kind = model.KindUnknownField
			out = append(out, e)
		}
		return out

	case *kind.Type, *kind.Enum, *kind.Const, *kind.Format, *kind.Pattern,
		*kind.Minimum, *kind.Maximum, *kind.ExclusiveMinimum, *kind.ExclusiveMaximum,
		*kind.MultipleOf, *kind.MinLength, *kind.MaxLength, *kind.MinItems, *kind.MaxItems,
		*kind.UniqueItems, *kind.MinProperties, *kind.MaxProperties:
		base.Message = fmt.Sprintf("%s is not valid: %s", subject(base.Path), leaf.ErrorKind.LocalizedString(printer))
		base.Kind = model.KindInvalidValue
		return []model.ValidationError{base}

	default:
		base.Message = leaf.ErrorKind.LocalizedString(printer)
		base.Kind = model.KindOther
		return []model.ValidationError{base}
	}
}

func subject(path string) string {
	if path == model.PathRoot {
		return "record"
	}
	return fmt.Sprintf("value at %s", path)
}

func instancePath(loc []string) string {
	if len(loc) == 0 {
		return model.PathRoot
	}
	return strings.Join(loc, ".")
}

// schemaPath turns the failing keyword's location into a dot separated path
// relative to the schema document, e.g. "allOf.0.then.required".
func schemaPath(leaf *jsonschema.ValidationError) string {
	var parts []string
	if _, frag, ok := strings.Cut(leaf.SchemaURL, "#"); ok {
		for _, tok := range strings.Split(frag, "/") {
			if tok == "" {
				continue
			}
			if unescaped, err := url.PathUnescape(tok); err == nil {
				tok = unescaped
			}
			tok = strings.ReplaceAll(tok, "~1", "/")
			tok = strings.ReplaceAll(tok, "~0", "~")
			parts = append(parts, tok)
		}
	}
	if _, isRef := leaf.ErrorKind.(*kind.Reference); !isRef {
		parts = append(parts, leaf.ErrorKind.KeywordPath()...)
	}
	return strings.Join(parts, ".")
}

// Snippet trims raw to SnippetLimit runes, appending "..." when cut.
func Snippet(raw string) string {
	if utf8.RuneCountInString(raw) <= SnippetLimit {
		return raw
	}
	runes := []rune(raw)
	return string(runes[:SnippetLimit]) + "..."
}
