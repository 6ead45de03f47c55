package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/mitchellh/mapstructure"
)

var (
	rawMessageType = reflect.TypeOf(json.RawMessage(nil))
	timeType       = reflect.TypeOf(time.Time{})
	jsonNullType   = reflect.TypeOf(jsonNull{})
)

// jsonNull stands in for an explicit null so it reaches the decode hooks;
// mapstructure skips hooks for nil input.
type jsonNull struct{}

// Decode copies validated input into a typed struct using `mapstructure` tags.
// Free-form values decode into json.RawMessage, an explicit null as the literal
// `null`; dates decode into time.Time. Keys without a matching struct field are
// ignored. Values the target cannot hold are reported as a *ValidationError.
func Decode(input map[string]any, out any) error {
	in := make(map[string]any, len(input))
	for k, v := range input {
		if v == nil {
			v = jsonNull{}
		}
		in[k] = v
	}

	if err := decodeInto(in, out); err != nil {
		if violations := decodeViolations(in, out); len(violations) > 0 {
			return &ValidationError{Schema: "decode", Violations: violations}
		}
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func decodeInto(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(nullHook, rawJSONHook, dateHook),
		Result:     out,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	return decoder.Decode(input)
}

// decodeViolations decodes each key on its own into a fresh value of out's type
// to find the ones that fail.
func decodeViolations(input map[string]any, out any) []Violation {
	target := reflect.TypeOf(out)
	if target.Kind() != reflect.Ptr {
		return nil
	}

	var violations []Violation
	for k, v := range input {
		fresh := reflect.New(target.Elem()).Interface()
		if err := decodeInto(map[string]any{k: v}, fresh); err != nil {
			violations = append(violations, Violation{Field: k, Message: "Value out of range for this field"})
		}
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].Field < violations[j].Field })
	return violations
}

func nullHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from != jsonNullType {
		return data, nil
	}
	if to == rawMessageType {
		return json.RawMessage("null"), nil
	}
	// Typed fields already reject null during validation.
	return data, nil
}

func rawJSONHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != rawMessageType || from == rawMessageType {
		return data, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

func dateHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType || from.Kind() != reflect.String {
		return data, nil
	}
	return ParseDate(data.(string))
}
