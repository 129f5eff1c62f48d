package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

func GenerateToken(sessionID, userID string, secret []byte, issuedAt time.Time, expiry time.Duration) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString string, secret []byte, now time.Time) (*Claims, error) {
	return parseToken(tokenString, secret, jwt.WithTimeFunc(func() time.Time { return now }))
}

// ParseTokenIgnoringExpiry checks the signature only. Revocation uses it so
// an expired token can still be dropped from the session table.
func ParseTokenIgnoringExpiry(tokenString string, secret []byte) (*Claims, error) {
	return parseToken(tokenString, secret, jwt.WithoutClaimsValidation())
}

func parseToken(tokenString string, secret []byte, opts ...jwt.ParserOption) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}
	if tc.ID == "" || tc.UserID == "" {
		return nil, fmt.Errorf("ValidateToken: missing session or user id")
	}

	claims := &Claims{SessionID: tc.ID, UserID: tc.UserID}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}
