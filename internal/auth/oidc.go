package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xenitab/go-oidc-middleware/oidctoken"
	"github.com/xenitab/go-oidc-middleware/options"
)

// OIDCAuthenticator verifies bearer tokens issued by an OpenID Connect provider
// against the provider's published signing keys.
type OIDCAuthenticator struct {
	tokenHandler   *oidctoken.TokenHandler[map[string]any]
	rolesClaim     string
	rolesClaimPath string
}

// NewOIDCAuthenticator creates an authenticator for issuer. Tokens must list
// audience in aud. Signing keys are fetched on first use.
func NewOIDCAuthenticator(issuer, audience, rolesClaim, rolesClaimPath string) (*OIDCAuthenticator, error) {
	if issuer == "" {
		return nil, errors.New("oidc issuer is required")
	}
	if audience == "" {
		return nil, errors.New("oidc audience is required")
	}
	if rolesClaim == "" {
		rolesClaim = "roles"
	}

	tokenHandler, err := oidctoken.New[map[string]any](nil,
		options.WithIssuer(issuer),
		options.WithRequiredAudience(audience),
		options.WithLazyLoadJwks(true),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize oidc token handler: %w", err)
	}

	return &OIDCAuthenticator{
		tokenHandler:   tokenHandler,
		rolesClaim:     rolesClaim,
		rolesClaimPath: rolesClaimPath,
	}, nil
}

// Authenticate verifies the bearer token and returns its principal.
func (a *OIDCAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*Principal, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return nil, err
	}

	claims, err := a.tokenHandler.ParseToken(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	return principalFromClaims(claims, a.rolesClaim, a.rolesClaimPath)
}
