// Package auth verifies bearer credentials and decides role access.
package auth

import (
	"context"
	"strings"
)

// Role names recognised by the API. Matching is exact and case-sensitive.
const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

// Principal is the authenticated caller. Subject is the stable identity used as
// the owner of every row the caller creates.
type Principal struct {
	Subject string
	Email   string
	Roles   []string
}

type principalContextKey struct{}

// WithPrincipal stores the authenticated principal on the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal stored by the authentication gate.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok && p != nil
}

// HasAnyRole reports whether p holds at least one of required. An empty required
// set always passes; a nil principal never does.
func HasAnyRole(p *Principal, required []string) bool {
	if p == nil {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ParseRoles splits a comma separated role list, dropping blanks.
func ParseRoles(s string) []string {
	var roles []string
	for _, part := range strings.Split(s, ",") {
		if role := strings.TrimSpace(part); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
