// Package auth identifies the caller of an HTTP request.
//
// Token issuance belongs to an external identity provider; this package only
// verifies bearer tokens and exposes the resulting Principal.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shopfront/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the coarse permission level of a principal.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is an authenticated caller.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether p holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ErrUnauthenticated is returned when a request carries no valid credentials.
var ErrUnauthenticated = errors.New("unauthenticated")

// Gate authenticates requests.
type Gate interface {
	Authenticate(r *http.Request) (Principal, error)
}

// Claims is the JWT payload: the subject is the user id.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTGate verifies HS256 bearer tokens.
type JWTGate struct {
	secret []byte
	issuer string
}

// NewJWTGate creates a gate from the auth configuration.
func NewJWTGate(cfg config.AuthConfig) *JWTGate {
	return &JWTGate{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer}
}

// Authenticate validates the Authorization header.
func (g *JWTGate) Authenticate(r *http.Request) (Principal, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return Principal{}, ErrUnauthenticated
	}
	return g.Verify(strings.TrimSpace(token))
}

// Verify parses a raw token string.
func (g *JWTGate) Verify(raw string) (Principal, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if g.issuer != "" {
		opts = append(opts, jwt.WithIssuer(g.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return g.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, errors.Join(ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return Principal{}, ErrUnauthenticated
	}

	return Principal{ID: claims.Subject, Role: claims.Role}, nil
}

// IssueToken signs a token for p that expires after ttl.
func IssueToken(cfg config.AuthConfig, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

type principalCtxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// FromContext returns the principal stored by the authentication middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}
