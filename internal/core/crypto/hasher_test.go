package crypto

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret-password")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !Verify("s3cret-password", hash) {
		t.Fatalf("Verify should accept the original password")
	}
	if Verify("wrong-password", hash) {
		t.Fatalf("Verify should reject a different password")
	}
}

func TestHashIsSalted(t *testing.T) {
	h1, err := Hash("same-input")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	h2, err := Hash("same-input")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same input must differ")
	}
}

func TestHashRejectsEmpty(t *testing.T) {
	if _, err := Hash(""); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestHashRejectsOversized(t *testing.T) {
	long := strings.Repeat("x", maxPasswordBytes+1)
	if _, err := Hash(long); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	if Verify("anything", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must verify as false")
	}
	if Verify("anything", "") {
		t.Fatalf("empty hash must verify as false")
	}
}
