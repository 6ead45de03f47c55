package schema

import (
	"fmt"
	"regexp"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var decimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Accepted date layouts, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339Nano}

// ParseDate parses a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date (YYYY-MM-DD or RFC 3339)", s)
}

// Non-string values are left to the type keyword.
var customFormats = []*jsonschema.Format{
	{
		Name: FormatDecimal,
		Validate: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			if !decimalPattern.MatchString(s) {
				return fmt.Errorf("%q is not a decimal amount", s)
			}
			return nil
		},
	},
	{
		Name: FormatDate,
		Validate: func(v any) error {
			s, ok := v.(string)
			if !ok {
				return nil
			}
			_, err := ParseDate(s)
			return err
		},
	},
}
