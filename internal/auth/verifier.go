package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/YashMarke130105/pen-perfect-playground/internal/models"
)

// Sessions issues, verifies and revokes session tokens.
type Sessions struct {
	jwt     *JWTManager
	revoker Revoker
}

// NewSessions combines a JWT manager with a deny list.
func NewSessions(jwtManager *JWTManager, revoker Revoker) *Sessions {
	return &Sessions{jwt: jwtManager, revoker: revoker}
}

// Issue creates a session token for user.
func (s *Sessions) Issue(user *models.User) (string, error) {
	return s.jwt.Generate(user)
}

// Verify validates tokenString and rejects signed-out tokens.
func (s *Sessions) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.jwt.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke signs out the session described by claims.
func (s *Sessions) Revoke(ctx context.Context, claims *Claims) error {
	expiresAt := time.Now()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, claims.ID, expiresAt)
}
