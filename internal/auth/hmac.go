package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMACOptions configures HS256 token verification.
type HMACOptions struct {
	Secret         []byte
	Issuer         string
	Audience       string
	RolesClaim     string
	RolesClaimPath string
}

// HMACAuthenticator verifies HS256 bearer tokens signed with a shared secret.
// Tokens must carry exp and sub; iss and aud are checked when configured.
type HMACAuthenticator struct {
	opts   HMACOptions
	parser *jwt.Parser
}

// NewHMACAuthenticator creates an authenticator for shared-secret tokens.
func NewHMACAuthenticator(opts HMACOptions) (*HMACAuthenticator, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if opts.RolesClaim == "" {
		opts.RolesClaim = "roles"
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}

	return &HMACAuthenticator{opts: opts, parser: jwt.NewParser(parserOpts...)}, nil
}

// Authenticate verifies the bearer token and returns its principal.
func (a *HMACAuthenticator) Authenticate(_ context.Context, r *http.Request) (*Principal, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	_, err = a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.opts.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	return principalFromClaims(claims, a.opts.RolesClaim, a.opts.RolesClaimPath)
}

// TokenRequest describes a token to mint.
type TokenRequest struct {
	Subject  string
	Email    string
	Roles    []string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// IssueToken signs an HS256 token accepted by HMACAuthenticator. Roles are written to
// the "roles" claim.
func IssueToken(secret []byte, req TokenRequest) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is required")
	}
	if req.Subject == "" {
		return "", errors.New("subject is required")
	}
	if req.TTL <= 0 {
		req.TTL = time.Hour
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   req.Subject,
		"iat":   now.Unix(),
		"exp":   now.Add(req.TTL).Unix(),
		"roles": append([]string{}, req.Roles...),
	}
	if req.Email != "" {
		claims["email"] = req.Email
	}
	if req.Issuer != "" {
		claims["iss"] = req.Issuer
	}
	if req.Audience != "" {
		claims["aud"] = req.Audience
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
