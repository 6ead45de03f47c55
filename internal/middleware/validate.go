package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hearthstone-labs/crm/internal/apierr"
	"github.com/hearthstone-labs/crm/internal/schema"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Labels for the two validation failure responses.
const (
	BodyValidationFailed  = "Validation failed"
	QueryValidationFailed = "Query validation failed"
)

// MaxBodyBytes bounds request bodies read by ValidateBody.
const MaxBodyBytes = 1 << 20

type bodyKey[T any] struct{}

type queryKey[T any] struct{}

// ValidateBody parses the JSON body, validates it against s and stores the decoded
// T on the context for Body[T]. An empty body is treated as {}.
func ValidateBody[T any](v *schema.Validator, s schema.Schema) Guard {
	return func(r *http.Request) (*http.Request, error) {
		input, err := readJSON(r)
		if err != nil {
			return r, apierr.Validation(BodyValidationFailed, []schema.Violation{{Field: "body", Message: err.Error()}}, err)
		}

		decoded, err := validate[T](v, s, input, BodyValidationFailed)
		if err != nil {
			return r, err
		}
		return r.WithContext(context.WithValue(r.Context(), bodyKey[T]{}, decoded)), nil
	}
}

// ValidateQuery validates the query string against s and stores the decoded T on the
// context for Query[T]. Only the first value of a repeated parameter is considered.
func ValidateQuery[T any](v *schema.Validator, s schema.Schema) Guard {
	return func(r *http.Request) (*http.Request, error) {
		input := make(map[string]any)
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				input[key] = values[0]
			}
		}

		decoded, err := validate[T](v, s, input, QueryValidationFailed)
		if err != nil {
			return r, err
		}
		return r.WithContext(context.WithValue(r.Context(), queryKey[T]{}, decoded)), nil
	}
}

// Body returns the body decoded by ValidateBody[T].
func Body[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(bodyKey[T]{}).(T)
	return v, ok
}

// Query returns the query decoded by ValidateQuery[T].
func Query[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(queryKey[T]{}).(T)
	return v, ok
}

func validate[T any](v *schema.Validator, s schema.Schema, input any, label string) (T, error) {
	var out T

	coerced, err := v.Validate(s, input)
	if err == nil {
		err = schema.Decode(coerced, &out)
	}
	if err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			return out, apierr.Validation(label, ve.Violations, err)
		}
		return out, apierr.Internal(err)
	}
	return out, nil
}

var errMalformedJSON = errors.New("malformed JSON")

func readJSON(r *http.Request) (any, error) {
	if r.Body == nil {
		return map[string]any{}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(raw) > MaxBodyBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxBodyBytes)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	input, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, errMalformedJSON
	}
	return input, nil
}
