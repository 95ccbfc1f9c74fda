package mocks

import (
	"context"

	"github.com/shuke0908/quantauth/domain"
)

// MockResetService implements domain.ResetService interface for testing
type MockResetService struct {
	GenerateFunc  func(ctx context.Context, email string) (*domain.ResetRequest, error)
	VerifyFunc    func(ctx context.Context, email, code string) (bool, error)
	CanResendFunc func(ctx context.Context, email string) (bool, int64, error)
}

// NewMockResetService creates a new MockResetService
func NewMockResetService() *MockResetService {
	return &MockResetService{}
}

// Generate creates a reset code
func (m *MockResetService) Generate(ctx context.Context, email string) (*domain.ResetRequest, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, email)
	}
	return &domain.ResetRequest{Email: email, Code: "123456"}, nil
}

// Verify checks a reset code
func (m *MockResetService) Verify(ctx context.Context, email, code string) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, email, code)
	}
	return false, domain.ErrResetCodeNotFound
}

// CanResend checks the resend throttle
func (m *MockResetService) CanResend(ctx context.Context, email string) (bool, int64, error) {
	if m.CanResendFunc != nil {
		return m.CanResendFunc(ctx, email)
	}
	return true, 0, nil
}

// Compile-time interface compliance verification
var _ domain.ResetService = (*MockResetService)(nil)
