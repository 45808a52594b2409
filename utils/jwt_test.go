package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

// signTestToken issues a token the way the identity service does, so the
// validation path can be exercised against real signatures.
func signTestToken(t *testing.T, subject, email string, duration time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey())
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestExtractIdentityFromToken(t *testing.T) {
	token := signTestToken(t, "user-1", "alex@example.com", time.Hour)

	sub, email, err := ExtractIdentityFromToken(token)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if sub != "user-1" {
		t.Errorf("sub = %q, want user-1", sub)
	}
	if email != "alex@example.com" {
		t.Errorf("email = %q", email)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token := signTestToken(t, "user-1", "alex@example.com", -time.Minute)

	if _, _, err := ExtractIdentityFromToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestTokenWithoutSubjectRejected(t *testing.T) {
	token := signTestToken(t, "", "alex@example.com", time.Hour)

	if _, _, err := ExtractIdentityFromToken(token); err == nil {
		t.Fatal("token without sub claim accepted")
	}
}

func TestHashTokenStable(t *testing.T) {
	a := HashToken("token-a")
	if a != HashToken("token-a") {
		t.Error("hash not deterministic")
	}
	if a == HashToken("token-b") {
		t.Error("distinct tokens share a hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
