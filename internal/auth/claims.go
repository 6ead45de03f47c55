package auth

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ExtractRoles reads the roles claim. Supported shapes:
//   - Flat arrays: ["agent", "admin"]
//   - A single string: "agent"
//   - Nested objects: [{"name": "agent"}] with claimPath="name"
//
// A missing claim yields no roles.
func ExtractRoles(claims map[string]any, claimField, claimPath string) ([]string, error) {
	rawValue, ok := claims[claimField]
	if !ok || rawValue == nil {
		return []string{}, nil
	}

	if role, ok := rawValue.(string); ok {
		return []string{role}, nil
	}

	if claimPath != "" {
		return extractNestedRoles(rawValue, claimPath)
	}

	var roles []string
	if err := mapstructure.Decode(rawValue, &roles); err != nil {
		return nil, fmt.Errorf("roles claim %q invalid format (expected []string or []object with path): %w", claimField, err)
	}
	return roles, nil
}

func extractNestedRoles(rawValue any, path string) ([]string, error) {
	var objects []map[string]any
	if err := mapstructure.Decode(rawValue, &objects); err != nil {
		return nil, fmt.Errorf("failed to decode nested roles: %w", err)
	}

	result := make([]string, 0, len(objects))
	for _, obj := range objects {
		if val, ok := obj[path].(string); ok {
			result = append(result, val)
		}
	}
	return result, nil
}

// principalFromClaims builds a Principal from verified token claims. sub is required.
func principalFromClaims(claims map[string]any, rolesClaim, rolesPath string) (*Principal, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("token missing sub claim")
	}

	roles, err := ExtractRoles(claims, rolesClaim, rolesPath)
	if err != nil {
		return nil, err
	}

	email, _ := claims["email"].(string)
	return &Principal{Subject: sub, Email: email, Roles: roles}, nil
}
