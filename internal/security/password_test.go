package security

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "s3cret-password" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}

	if err := CheckPassword(hash, "s3cret-password"); err != nil {
		t.Errorf("CheckPassword rejected the correct password: %v", err)
	}

	if err := CheckPassword(hash, "wrong-password"); err == nil {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := HashPassword("same-password")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	b, err := HashPassword("same-password")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if a == b {
		t.Error("two hashes of the same password should differ (salt)")
	}
}
