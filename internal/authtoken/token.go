// Package authtoken signs and verifies the HS256 access tokens Supabase Auth
// issues, so the API and the in-memory store agree on one format.
package authtoken

import (
	"fmt"
	"time"

	"editdesk-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Audience is the "aud" Supabase puts on signed-in user tokens.
const Audience = "authenticated"

type Claims struct {
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	SessionID    string                 `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// Sign creates an access token for identity valid for ttl from now.
func Sign(identity models.Identity, sessionID, secret string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expires := now.Add(ttl)
	claims := Claims{
		Email:        identity.Email,
		Role:         Audience,
		UserMetadata: identity.Metadata,
		SessionID:    sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "editdesk",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies tokenString's HS256 signature, expiry and session audience.
func Parse(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, jwt.ErrSignatureInvalid
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(Audience),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// Session turns verified claims back into the session they were issued for.
func (c *Claims) Session(accessToken string) models.Session {
	s := models.Session{
		AccessToken: accessToken,
		User: models.Identity{
			ID:       c.Subject,
			Email:    c.Email,
			Metadata: c.UserMetadata,
		},
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}
