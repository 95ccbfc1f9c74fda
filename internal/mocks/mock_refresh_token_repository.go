package mocks

import (
	"context"

	"github.com/shuke0908/quantauth/domain"
)

// MockRefreshTokenRepository implements domain.RefreshTokenRepository for testing
type MockRefreshTokenRepository struct {
	CreateFunc    func(ctx context.Context, rec *domain.RefreshTokenRecord) error
	FindFunc      func(ctx context.Context, jti string) (*domain.RefreshTokenRecord, error)
	ConsumeFunc   func(ctx context.Context, jti string) (*domain.RefreshTokenRecord, error)
	DeleteFunc    func(ctx context.Context, jti string) error
	RevokeAllFunc func(ctx context.Context, userID string) error
}

// NewMockRefreshTokenRepository creates a new MockRefreshTokenRepository
func NewMockRefreshTokenRepository() *MockRefreshTokenRepository {
	return &MockRefreshTokenRepository{}
}

// Create stores a refresh token record
func (m *MockRefreshTokenRepository) Create(ctx context.Context, rec *domain.RefreshTokenRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return nil
}

// Find looks up a record by JTI
func (m *MockRefreshTokenRepository) Find(ctx context.Context, jti string) (*domain.RefreshTokenRecord, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, jti)
	}
	return nil, domain.ErrTokenNotFound
}

// Consume atomically marks a record spent
func (m *MockRefreshTokenRepository) Consume(ctx context.Context, jti string) (*domain.RefreshTokenRecord, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, jti)
	}
	return nil, domain.ErrTokenNotFound
}

// Delete removes a record
func (m *MockRefreshTokenRepository) Delete(ctx context.Context, jti string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, jti)
	}
	return nil
}

// RevokeAll removes every record for the user
func (m *MockRefreshTokenRepository) RevokeAll(ctx context.Context, userID string) error {
	if m.RevokeAllFunc != nil {
		return m.RevokeAllFunc(ctx, userID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.RefreshTokenRepository = (*MockRefreshTokenRepository)(nil)
