package jwt

import (
	"testing"
	"time"
)

func newTestService() *TokenService {
	return NewTokenService(Config{
		Secret:     "test-secret-key",
		Expiration: time.Hour,
	})
}

// ============================================================
// Test: Token generation and round-trip validation
// ============================================================

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken("donor@example.com", "DONOR", 42)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims := svc.ValidateToken(token)
	if claims == nil {
		t.Fatal("expected valid claims, got nil")
	}
	if claims.Subject != "donor@example.com" {
		t.Errorf("subject = %q, want donor@example.com", claims.Subject)
	}
	if claims.Role != "DONOR" {
		t.Errorf("role = %q, want DONOR", claims.Role)
	}
	if claims.UserID != 42 {
		t.Errorf("userId = %d, want 42", claims.UserID)
	}
}

func TestAdminTokenHasZeroUserID(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateToken("admin", "ADMIN", 0)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims := svc.ValidateToken(token)
	if claims == nil {
		t.Fatal("expected valid claims, got nil")
	}
	if claims.UserID != 0 {
		t.Errorf("userId = %d, want 0", claims.UserID)
	}
	if !svc.IsAdmin(token) {
		t.Error("IsAdmin = false, want true")
	}
}

// ============================================================
// Test: Generation rejects missing inputs
// ============================================================

func TestGenerateTokenRequiresSubjectAndRole(t *testing.T) {
	svc := newTestService()

	if _, err := svc.GenerateToken("", "DONOR", 1); err == nil {
		t.Error("expected error for empty subject")
	}
	if _, err := svc.GenerateToken("donor@example.com", "", 1); err == nil {
		t.Error("expected error for empty role")
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	svc := NewTokenService(Config{Secret: "", Expiration: time.Hour})

	if _, err := svc.GenerateToken("donor@example.com", "DONOR", 1); err == nil {
		t.Error("expected error for empty secret")
	}
}

// ============================================================
// Test: Validation degrades to nil, never panics or errors
// ============================================================

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService()

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if claims := svc.ValidateToken(token); claims != nil {
			t.Errorf("ValidateToken(%q) = %+v, want nil", token, claims)
		}
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestService()
	other := NewTokenService(Config{Secret: "different-secret", Expiration: time.Hour})

	token, err := svc.GenerateToken("donor@example.com", "DONOR", 1)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if claims := other.ValidateToken(token); claims != nil {
		t.Error("token signed with another secret should not validate")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewTokenService(Config{
		Secret:     "test-secret-key",
		Expiration: -time.Minute,
	})

	token, err := svc.GenerateToken("donor@example.com", "DONOR", 1)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if claims := svc.ValidateToken(token); claims != nil {
		t.Error("expired token should not validate")
	}
}

func TestGetRoleAndSubjectFromInvalidToken(t *testing.T) {
	svc := newTestService()

	if role := svc.GetRoleFromToken("garbage"); role != "" {
		t.Errorf("role = %q, want empty", role)
	}
	if subject := svc.GetSubjectFromToken("garbage"); subject != "" {
		t.Errorf("subject = %q, want empty", subject)
	}
	if svc.IsAdmin("garbage") {
		t.Error("IsAdmin on garbage token should be false")
	}
}
