package mocks

import (
	"context"
	"time"

	"github.com/shuke0908/quantauth/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	IssueAccessTokenFunc   func(user *domain.User) (string, time.Time, error)
	IssueRefreshTokenFunc  func(user *domain.User, generation int64) (string, string, time.Time, error)
	VerifyAccessTokenFunc  func(ctx context.Context, token string) (*domain.TokenClaims, error)
	VerifyRefreshTokenFunc func(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// IssueAccessToken issues an access token
func (m *MockTokenService) IssueAccessToken(user *domain.User) (string, time.Time, error) {
	if m.IssueAccessTokenFunc != nil {
		return m.IssueAccessTokenFunc(user)
	}
	return "access_" + user.ID, time.Now().Add(15 * time.Minute), nil
}

// IssueRefreshToken issues a refresh token
func (m *MockTokenService) IssueRefreshToken(user *domain.User, generation int64) (string, string, time.Time, error) {
	if m.IssueRefreshTokenFunc != nil {
		return m.IssueRefreshTokenFunc(user, generation)
	}
	return "refresh_" + user.ID, "jti_" + user.ID, time.Now().Add(7 * 24 * time.Hour), nil
}

// VerifyAccessToken verifies an access token
func (m *MockTokenService) VerifyAccessToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	if m.VerifyAccessTokenFunc != nil {
		return m.VerifyAccessTokenFunc(ctx, token)
	}
	return nil, domain.ErrTokenInvalid
}

// VerifyRefreshToken verifies a refresh token
func (m *MockTokenService) VerifyRefreshToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	if m.VerifyRefreshTokenFunc != nil {
		return m.VerifyRefreshTokenFunc(ctx, token)
	}
	return nil, domain.ErrTokenInvalid
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
