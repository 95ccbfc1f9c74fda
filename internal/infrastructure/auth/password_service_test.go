package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordServiceImpl_HashAndVerify(t *testing.T) {
	svc := NewPasswordService(MinBcryptCost)

	tests := []struct {
		name     string
		password string
	}{
		{name: "simple password", password: "securepassword123"},
		{name: "password with symbols", password: "p@$$w0rd!#%&"},
		{name: "unicode password", password: "пароль密码🔐"},
		{name: "long password", password: strings.Repeat("a", 72)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := svc.Hash(tt.password)
			if err != nil {
				t.Fatalf("Hash failed: %v", err)
			}
			if hash == tt.password {
				t.Error("hash must not equal the plaintext password")
			}
			if !svc.Verify(hash, tt.password) {
				t.Error("Verify should accept the original password")
			}
			if svc.Verify(hash, tt.password+"x") {
				t.Error("Verify should reject a different password")
			}
		})
	}
}

func TestPasswordServiceImpl_HashIsSalted(t *testing.T) {
	svc := NewPasswordService(MinBcryptCost)

	first, err := svc.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := svc.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestPasswordServiceImpl_CostFloor(t *testing.T) {
	tests := []struct {
		name         string
		cost         int
		expectedCost int
	}{
		{name: "below floor is raised", cost: 4, expectedCost: MinBcryptCost},
		{name: "zero is raised", cost: 0, expectedCost: MinBcryptCost},
		{name: "at floor kept", cost: MinBcryptCost, expectedCost: MinBcryptCost},
		{name: "above floor kept", cost: 13, expectedCost: 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPasswordService(tt.cost)
			hash, err := svc.Hash("password123")
			if err != nil {
				t.Fatalf("Hash failed: %v", err)
			}
			cost, err := bcrypt.Cost([]byte(hash))
			if err != nil {
				t.Fatalf("failed to read cost from hash: %v", err)
			}
			if cost != tt.expectedCost {
				t.Errorf("expected cost %d, got %d", tt.expectedCost, cost)
			}
		})
	}
}

func TestPasswordServiceImpl_VerifyMalformedHash(t *testing.T) {
	svc := NewPasswordService(MinBcryptCost)

	tests := []struct {
		name string
		hash string
	}{
		{name: "empty hash", hash: ""},
		{name: "not a bcrypt hash", hash: "plaintext"},
		{name: "truncated hash", hash: "$2a$12$tooshort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if svc.Verify(tt.hash, "password123") {
				t.Error("Verify should fail for a malformed hash")
			}
		})
	}
}
