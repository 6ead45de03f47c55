package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Violation describes one failed constraint. Field is the dotted path of the
// offending property; empty means the input as a whole.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input does not satisfy a schema.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("%s: invalid input: %s", e.Schema, strings.Join(parts, "; "))
}

// Validator validates input against schemas, caching compiled documents by schema name.
type Validator struct {
	cache   *lru.Cache[string, *jsonschema.Schema]
	printer *message.Printer
}

// NewValidator creates a validator holding at most cacheSize compiled schemas.
func NewValidator(cacheSize int) (*Validator, error) {
	cache, err := lru.New[string, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &Validator{
		cache:   cache,
		printer: message.NewPrinter(language.English),
	}, nil
}

// Validate checks input against s. Integer fields given as numeric strings are
// coerced first. On success the coerced object is returned; on failure the error
// is a *ValidationError.
func (v *Validator) Validate(s Schema, input any) (map[string]any, error) {
	compiled, err := v.compiled(s)
	if err != nil {
		return nil, err
	}

	obj, isObject := input.(map[string]any)
	if isObject {
		obj = coerce(s, obj)
		input = obj
	}

	if err := compiled.Validate(input); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, fmt.Errorf("validate %s: %w", s.Name, err)
		}
		return nil, &ValidationError{Schema: s.Name, Violations: v.violations(ve)}
	}

	return obj, nil
}

// CacheSize reports how many compiled schemas are cached.
func (v *Validator) CacheSize() int {
	return v.cache.Len()
}

func (v *Validator) compiled(s Schema) (*jsonschema.Schema, error) {
	if cached, ok := v.cache.Get(s.Name); ok {
		return cached, nil
	}
	compiled, err := compile(s)
	if err != nil {
		return nil, err
	}
	v.cache.Add(s.Name, compiled)
	return compiled, nil
}

func compile(s Schema) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(s.Document())
	if err != nil {
		return nil, fmt.Errorf("render schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", s.Name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	compiler.AssertFormat()
	for _, f := range customFormats {
		compiler.RegisterFormat(f)
	}

	url := s.Name + ".json"
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", s.Name, err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", s.Name, err)
	}
	return compiled, nil
}

// violations flattens the error tree into leaf failures, one per missing required
// property, sorted by field.
func (v *Validator) violations(root *jsonschema.ValidationError) []Violation {
	var out []Violation
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}

		location := strings.Join(e.InstanceLocation, ".")
		if req, ok := e.ErrorKind.(*kind.Required); ok {
			for _, missing := range req.Missing {
				out = append(out, Violation{Field: joinPath(location, missing), Message: "Required"})
			}
			return
		}
		out = append(out, Violation{Field: location, Message: e.ErrorKind.LocalizedString(v.printer)})
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

// coerce returns a copy of in with integer fields normalised to json.Number when the
// supplied value is numeric (a number or a numeric string). Other values are left for
// the type check to reject.
func coerce(s Schema, in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, val := range in {
		out[k] = val
	}
	for _, f := range s.Fields {
		if f.Type != TypeInteger {
			continue
		}
		val, ok := out[f.Name]
		if !ok {
			continue
		}
		if n, ok := toNumber(val); ok {
			out[f.Name] = n
		}
	}
	return out
}

func toNumber(val any) (json.Number, bool) {
	var text string
	switch x := val.(type) {
	case json.Number:
		text = string(x)
	case string:
		text = strings.TrimSpace(x)
	case float64:
		return floatNumber(x)
	case int:
		return json.Number(strconv.Itoa(x)), true
	default:
		return "", false
	}
	if text == "" {
		return "", false
	}
	// Exact for anything that fits in 64 bits.
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return json.Number(strconv.FormatInt(n, 10)), true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return "", false
	}
	return floatNumber(f)
}

// floatNumber renders f without an exponent so bounds compare against the full value.
// Out-of-range values stay out of range; they are never clamped.
func floatNumber(f float64) (json.Number, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64)), true
}
