// Package middleware composes the per-route request gates: authentication, role
// authorization and schema validation.
package middleware

import (
	"net/http"

	"github.com/hearthstone-labs/crm/internal/apierr"
)

// Guard inspects a request before the handler runs. It returns the request to pass
// on (possibly with an enriched context) or an error that ends the request.
type Guard func(r *http.Request) (*http.Request, error)

// Chain runs guards in order. The first error is rendered with apierr.Write and no
// later guard or the handler runs.
func Chain(guards ...Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, guard := range guards {
				var err error
				if r, err = guard(r); err != nil {
					apierr.Write(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
