// Package schema declares request input schemas and validates raw request data
// against them.
//
// Schemas are plain Go values describing fields and their constraints. They are
// rendered to JSON Schema (draft 7) documents, compiled once, and cached by name.
// Unknown input fields are accepted and ignored.
package schema

// Type is the JSON type accepted by a field.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeObject  Type = "object"
	// TypeAny accepts any JSON value.
	TypeAny Type = "any"
)

// Formats understood by the validator in addition to the JSON Schema built-ins.
const (
	FormatEmail   = "email"
	FormatUUID    = "uuid"
	FormatDecimal = "decimal"
	FormatDate    = "crm-date"
)

// Field describes one input property.
type Field struct {
	Name     string
	Type     Type
	Required bool

	// MinLength applies to strings; zero means unconstrained.
	MinLength int
	// Format names a string format (email, uuid, decimal, crm-date).
	Format string
	// Minimum applies to integers when non-nil (0 for nonnegative, 1 for positive).
	Minimum *int
	// Maximum applies to integers when non-nil.
	Maximum *int
}

// Schema is a named set of fields.
type Schema struct {
	Name   string
	Fields []Field
}

// Partial derives a second schema in which every field is optional. Nothing else
// changes: types, formats and bounds are copied as-is.
func (s Schema) Partial(name string) Schema {
	fields := make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		f.Required = false
		fields[i] = f
	}
	return Schema{Name: name, Fields: fields}
}

// Field returns the named field.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required lists the names of required fields in declaration order.
func (s Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Document renders the schema as a JSON Schema draft-7 object.
func (s Schema) Document() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = f.document()
	}

	doc := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"title":      s.Name,
		"type":       "object",
		"properties": props,
	}
	if required := s.Required(); len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func (f Field) document() map[string]any {
	prop := map[string]any{}
	if f.Type != TypeAny {
		prop["type"] = string(f.Type)
	}
	if f.MinLength > 0 {
		prop["minLength"] = f.MinLength
	}
	if f.Format != "" {
		prop["format"] = f.Format
	}
	if f.Minimum != nil {
		prop["minimum"] = *f.Minimum
	}
	if f.Maximum != nil {
		prop["maximum"] = *f.Maximum
	}
	return prop
}

// Int returns a pointer to n, for Field.Minimum and Field.Maximum.
func Int(n int) *int { return &n }
