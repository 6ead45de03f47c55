package middleware

import (
	"net/http"

	"github.com/hearthstone-labs/crm/internal/apierr"
	"github.com/hearthstone-labs/crm/internal/auth"
	"github.com/hearthstone-labs/crm/internal/logging"
)

// Authenticate verifies the request credential and stores the principal on the context.
func Authenticate(authn auth.Authenticator) Guard {
	return func(r *http.Request) (*http.Request, error) {
		principal, err := authn.Authenticate(r.Context(), r)
		if err != nil {
			logging.FromContext(r.Context()).WithError(err).Debug("authentication failed")
			return r, apierr.Unauthenticated(err)
		}

		ctx := auth.WithPrincipal(r.Context(), principal)
		ctx = logging.WithEntry(ctx, logging.FromContext(ctx).WithField("subject", principal.Subject))
		return r.WithContext(ctx), nil
	}
}

// RequireRole admits callers holding any of roles. Without a principal the request is
// unauthenticated; with one lacking every role it is forbidden.
func RequireRole(roles ...string) Guard {
	return func(r *http.Request) (*http.Request, error) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			return r, apierr.Unauthenticated(nil)
		}
		if !auth.HasAnyRole(principal, roles) {
			logging.FromContext(r.Context()).WithField("required_roles", roles).Debug("role check failed")
			return r, apierr.Forbidden()
		}
		return r, nil
	}
}
