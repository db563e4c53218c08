package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasherWithCost(bcrypt.MinCost)

	hash, err := hasher.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if hash == "correct-horse-battery" {
		t.Error("Hash() returned the plaintext password")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() = %q, want a bcrypt hash", hash)
	}

	if !hasher.Verify("correct-horse-battery", hash) {
		t.Error("Verify() rejected the correct password")
	}
	if hasher.Verify("wrong-password", hash) {
		t.Error("Verify() accepted a wrong password")
	}
}

func TestPasswordHasher_SaltedHashes(t *testing.T) {
	hasher := NewPasswordHasherWithCost(bcrypt.MinCost)

	h1, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestPasswordHasher_VerifyGarbageHash(t *testing.T) {
	hasher := NewPasswordHasherWithCost(bcrypt.MinCost)

	if hasher.Verify("password", "not-a-hash") {
		t.Error("Verify() should reject a malformed hash")
	}
}

func TestNewPasswordHasherWithCost_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		cost int
		want int
	}{
		{name: "below min", cost: 1, want: DefaultBcryptCost},
		{name: "above max", cost: 99, want: DefaultBcryptCost},
		{name: "min", cost: bcrypt.MinCost, want: bcrypt.MinCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewPasswordHasherWithCost(tt.cost).cost; got != tt.want {
				t.Errorf("cost = %d, want %d", got, tt.want)
			}
		})
	}
}
