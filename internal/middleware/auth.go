package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/YashMarke130105/pen-perfect-playground/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for the verified session claims.
	ClaimsKey contextKey = "claims"

	// SignInPath is where clients are sent when a session is required.
	SignInPath = "/auth"
)

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetClaims returns the verified session claims, or nil when signed out.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Email
	}
	return ""
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header http.Header) (string, bool) {
	parts := strings.SplitN(header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Unauthenticated builds the error returned when a session is required. It
// carries a Location header pointing at the sign-in page.
func Unauthenticated(err error) *connect.Error {
	connectErr := connect.NewError(connect.CodeUnauthenticated, err)
	connectErr.Meta().Set("Location", SignInPath)
	return connectErr
}

// RequireAuth returns a middleware that validates session tokens for the
// given procedures (all procedures when none are given) and rejects
// requests without a valid, non-revoked session.
func RequireAuth(sessions *auth.Sessions, procedures ...string) connect.UnaryInterceptorFunc {
	protected := make(map[string]bool, len(procedures))
	for _, p := range procedures {
		protected[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if len(protected) > 0 && !protected[req.Spec().Procedure] {
				return next(ctx, req)
			}
			if GetClaims(ctx) != nil {
				return next(ctx, req)
			}

			token, ok := BearerToken(req.Header())
			if !ok {
				return nil, Unauthenticated(auth.ErrMissingToken)
			}
			claims, err := sessions.Verify(ctx, token)
			if err != nil {
				return nil, Unauthenticated(err)
			}

			return next(WithClaims(ctx, claims), req)
		}
	}
}

// OptionalAuth returns a middleware that validates session tokens if present,
// but allows requests without authentication. Invalid or revoked tokens are
// treated as no session.
func OptionalAuth(sessions *auth.Sessions) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token, ok := BearerToken(req.Header()); ok {
				if claims, err := sessions.Verify(ctx, token); err == nil {
					ctx = WithClaims(ctx, claims)
				}
			}
			return next(ctx, req)
		}
	}
}
