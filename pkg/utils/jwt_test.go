package utils

import (
	"testing"
	"time"
)

const testSecret = "test-secret"

func TestGenerateAndValidateJWTToken(t *testing.T) {
	token, err := GenerateJWTToken(testSecret, 7, "kasir1", "Siti", []int{4}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ValidateJWTToken(testSecret, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.IDKaryawan != 7 || claims.Username != "kasir1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if !claims.HasPrivilege(4) {
		t.Error("expected privilege 4")
	}
	if claims.HasPrivilege(1) {
		t.Error("did not expect privilege 1")
	}
}

func TestValidateJWTToken_WrongSecret(t *testing.T) {
	token, _ := GenerateJWTToken(testSecret, 1, "a", "A", nil, time.Now().Add(time.Hour))
	if _, err := ValidateJWTToken("other-secret", token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestValidateJWTToken_Expired(t *testing.T) {
	token, _ := GenerateJWTToken(testSecret, 1, "a", "A", nil, time.Now().Add(-time.Minute))
	if _, err := ValidateJWTToken(testSecret, token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestMissingSecret(t *testing.T) {
	if _, err := GenerateJWTToken("", 1, "a", "A", nil, time.Now().Add(time.Hour)); err == nil {
		t.Error("expected error when secret is empty")
	}
	if _, err := ValidateJWTToken("", "x.y.z"); err == nil {
		t.Error("expected error when secret is empty")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("rahasia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !CheckPassword(hash, "rahasia") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "salah") {
		t.Error("expected wrong password to fail")
	}
}
