// Package auth issues and verifies the HS256 bearer tokens used by the API.
// The login endpoint acts as a stand-in identity provider: it signs whatever
// identity it is handed, and every authenticated request trusts the verified
// claims as the source of truth.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orgstack/org-license-manager/internal/apperrors"
)

// Claims is the verified identity extracted from a bearer token.
type Claims struct {
	ExternalID string
	Email      string
	Role       string
}

// TokenService signs and validates HS256 tokens with a shared secret.
type TokenService struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

func NewTokenService(secret, issuer string, expirationMinutes int) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: time.Duration(expirationMinutes) * time.Minute,
	}
}

// Issue signs a token carrying the external identity, email and role claims.
func (s *TokenService) Issue(externalID, email, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   externalID,
		"email": email,
		"role":  role,
		"iss":   s.issuer,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate verifies the signature, algorithm and expiry, and extracts the
// identity claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, apperrors.Unauthorized("Invalid token", "The bearer token is invalid or expired")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Unauthorized("Invalid token", "The bearer token carries no claims")
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, apperrors.Unauthorized("Invalid token", "The bearer token carries no subject")
	}
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	if role == "" {
		role = "User"
	}

	return &Claims{ExternalID: sub, Email: email, Role: role}, nil
}
