package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "jobhive"

var (
	ErrInvalidToken = errors.New("invalid or malformed token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the JWT payload. Purpose distinguishes special-use tokens
// (e.g. "refresh") from plain access tokens.
type Claims struct {
	UserID  uuid.UUID `json:"id"`
	Purpose string    `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// GenerateAccessToken creates a short-lived token for API access.
func GenerateAccessToken(userID uuid.UUID, secret string, expiry time.Duration) (string, error) {
	return sign(userID, "", secret, expiry)
}

// GenerateRefreshToken creates a long-lived token for rotating the pair.
func GenerateRefreshToken(userID uuid.UUID, secret string, expiry time.Duration) (string, error) {
	return sign(userID, "refresh", secret, expiry)
}

// GeneratePurposeToken creates a token bound to an explicit purpose.
func GeneratePurposeToken(userID uuid.UUID, purpose string, secret string, expiry time.Duration) (string, error) {
	return sign(userID, purpose, secret, expiry)
}

func sign(userID uuid.UUID, purpose string, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken validates the signature and expiry and returns the claims.
func VerifyToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeWithoutVerify extracts claims without checking the signature. Used on
// logout, where an expired token still identifies whose session to clear.
func DecodeWithoutVerify(tokenString string) (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
