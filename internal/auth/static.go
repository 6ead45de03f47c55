package auth

import (
	"context"
	"net/http"
)

// StaticAuthenticator authenticates every request as one fixed principal.
// It backs the "dev" auth mode and must never be enabled in production.
type StaticAuthenticator struct {
	principal Principal
}

// NewStaticAuthenticator returns an authenticator that always yields p.
func NewStaticAuthenticator(p *Principal) *StaticAuthenticator {
	return &StaticAuthenticator{principal: *p}
}

func (a *StaticAuthenticator) Authenticate(context.Context, *http.Request) (*Principal, error) {
	p := a.principal
	p.Roles = append([]string(nil), a.principal.Roles...)
	return &p, nil
}
