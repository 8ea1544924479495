package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Strob0t/ClientForge/internal/config"
)

// Role is the staff role carried in an admin token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Principal is the authenticated caller of an admin endpoint.
type Principal struct {
	Subject string
	Email   string
	Role    Role
}

// Claims is the JWT payload issued by the identity provider.
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier checks HS256 bearer tokens against the shared secret.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier from the auth configuration.
func NewTokenVerifier(cfg *config.Auth) *TokenVerifier {
	return &TokenVerifier{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer}
}

// Verify parses and validates a token, returning its claims.
func (v *TokenVerifier) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	switch claims.Role {
	case RoleAdmin, RoleStaff:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}

// VerifyString adapts Verify to the websocket hub's token check.
func (v *TokenVerifier) VerifyString(token string) error {
	_, err := v.Verify(token)
	return err
}

type principalCtxKey struct{}

// devPrincipal is injected when admin auth is disabled.
var devPrincipal = &Principal{Subject: "local", Email: "admin@localhost", Role: RoleAdmin}

// Auth returns middleware that requires a valid bearer token.
// When enabled is false, a local admin principal is injected.
func Auth(verifier *TokenVerifier, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), devPrincipal)))
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSONError(w, http.StatusUnauthorized, "authorization required")
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			p := &Principal{Subject: claims.Subject, Email: claims.Email, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the authenticated caller, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalCtxKey{}).(*Principal)
	return p
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":%q}`, msg)
}
