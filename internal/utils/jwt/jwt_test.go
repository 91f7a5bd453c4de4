package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateAccessToken(userID, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := VerifyToken(token, testSecret)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("UserID = %s, want %s", claims.UserID, userID)
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := VerifyToken(token, "other-secret"); err != ErrInvalidToken {
		t.Fatalf("VerifyToken: expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	token, err := GenerateAccessToken(uuid.New(), testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := VerifyToken(token, testSecret); err != ErrExpiredToken {
		t.Fatalf("VerifyToken: expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	if _, err := VerifyToken("not.a.jwt", testSecret); err != ErrInvalidToken {
		t.Fatalf("VerifyToken: expected ErrInvalidToken, got %v", err)
	}
}

func TestDecodeWithoutVerifyReadsExpiredToken(t *testing.T) {
	userID := uuid.New()

	token, err := GeneratePurposeToken(userID, "refresh", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GeneratePurposeToken: %v", err)
	}

	claims, err := DecodeWithoutVerify(token)
	if err != nil {
		t.Fatalf("DecodeWithoutVerify: %v", err)
	}
	if claims.UserID != userID || claims.Purpose != "refresh" {
		t.Fatalf("claims = %+v, want user %s purpose refresh", claims, userID)
	}
}
