package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashing failed: %v", err)
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateJWTCarriesClaims(t *testing.T) {
	JwtSecret = []byte("test-secret")

	tokenString, err := GenerateJWT("pharmacist@example.com", "pharmacist", "pharmacy-east-wing", time.Hour)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtSecret, nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not parse as valid: %v", err)
	}

	if claims.Email != "pharmacist@example.com" {
		t.Errorf("email claim = %q", claims.Email)
	}
	if claims.Role != "pharmacist" {
		t.Errorf("role claim = %q", claims.Role)
	}
	if claims.PharmacyID != "pharmacy-east-wing" {
		t.Errorf("pharmacyID claim = %q", claims.PharmacyID)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) <= 0 {
		t.Error("expiration missing or already passed")
	}
}
