package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordService() *PasswordService {
	return NewPasswordServiceWithCost(bcrypt.MinCost)
}

// =========================================================================
// HASH
// =========================================================================

func TestHash_IsBcryptAndNotPlaintext(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("Secur3!ty")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "Secur3!ty" {
		t.Fatal("Hash() returned the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_Salted(t *testing.T) {
	ps := newTestPasswordService()

	h1, _ := ps.Hash("same-password")
	h2, _ := ps.Hash("same-password")
	if h1 == h2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHash_LengthLimit(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("Hash() should accept 72 bytes, got %v", err)
	}
	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatal("Hash() should reject 73 bytes")
	}
}

// =========================================================================
// VERIFY
// =========================================================================

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, _ := ps.Hash("Secur3!ty")

	if err := ps.Verify(hash, "Secur3!ty"); err != nil {
		t.Errorf("Verify() correct password error = %v", err)
	}
	if err := ps.Verify(hash, "secur3!ty"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify() wrong password error = %v, want ErrPasswordMismatch", err)
	}

	err := ps.Verify("not-a-hash", "Secur3!ty")
	if err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify() malformed hash error = %v, want a non-mismatch error", err)
	}
}

func TestDummyVerify_AlwaysMismatch(t *testing.T) {
	ps := newTestPasswordService()

	for _, pw := range []string{"", "Secur3!ty", "cahier-api-dummy-password"} {
		if err := ps.DummyVerify(pw); !errors.Is(err, ErrPasswordMismatch) {
			t.Errorf("DummyVerify(%q) = %v, want ErrPasswordMismatch", pw, err)
		}
	}
}
