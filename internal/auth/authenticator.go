package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hearthstone-labs/crm/internal/config"
	"github.com/xenitab/go-oidc-middleware/oidctoken"
	"github.com/xenitab/go-oidc-middleware/options"
)

// ErrNoCredentials is returned when the request carries no bearer token.
var ErrNoCredentials = errors.New("missing bearer token")

// Authenticator verifies the credential on a request and returns the caller.
// Any error means the request is unauthenticated.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*Principal, error)
}

// NewAuthenticator builds the authenticator selected by cfg.Mode.
func NewAuthenticator(cfg config.AuthConfig) (Authenticator, error) {
	switch cfg.Mode {
	case config.AuthModeJWT:
		a, err := NewHMACAuthenticator(HMACOptions{
			Secret:         []byte(cfg.JWTSecret),
			Issuer:         cfg.JWTIssuer,
			Audience:       cfg.JWTAudience,
			RolesClaim:     cfg.RolesClaim,
			RolesClaimPath: cfg.RolesClaimPath,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.AuthModeOIDC:
		a, err := NewOIDCAuthenticator(cfg.OIDCIssuer, cfg.OIDCAudience, cfg.RolesClaim, cfg.RolesClaimPath)
		if err != nil {
			return nil, err
		}
		return a, nil
	case config.AuthModeDev:
		return NewStaticAuthenticator(&Principal{Subject: cfg.DevSubject, Roles: cfg.DevRoles}), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	tokenStrings := [][]options.TokenStringOption{
		{}, // Default: Authorization header
	}
	token, err := oidctoken.GetTokenString(r.Header.Get, tokenStrings)
	if err != nil || strings.TrimSpace(token) == "" {
		return "", ErrNoCredentials
	}
	return strings.TrimSpace(token), nil
}
