package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/shuke0908/quantauth/domain"
)

// MinBcryptCost is the lowest work factor accepted for password hashing.
const MinBcryptCost = 12

// PasswordServiceImpl implements domain.PasswordService
type PasswordServiceImpl struct {
	cost int
}

// NewPasswordService creates a new password service. Costs below
// MinBcryptCost are raised to it.
func NewPasswordService(cost int) domain.PasswordService {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &PasswordServiceImpl{cost: cost}
}

// Hash implements domain.PasswordService. The bcrypt output encodes salt
// and cost, so verification is self-describing.
func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.PasswordService. A malformed hash is not an
// error, just a failed verification.
func (p *PasswordServiceImpl) Verify(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
