package mocks

import (
	"context"

	"github.com/shuke0908/quantauth/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc             func(ctx context.Context, user *domain.User) error
	FindByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	FindByIDFunc           func(ctx context.Context, id string) (*domain.User, error)
	UpdateFunc             func(ctx context.Context, user *domain.User) error
	UpdatePasswordHashFunc func(ctx context.Context, userID, hash string) error
	BumpTokenEpochFunc     func(ctx context.Context, userID string) (int64, error)
	EpochFunc              func(ctx context.Context, userID string) (int64, error)
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

// Update updates an existing user
func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash
func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, userID, hash)
	}
	return nil
}

// BumpTokenEpoch increments the user's token epoch
func (m *MockUserRepository) BumpTokenEpoch(ctx context.Context, userID string) (int64, error) {
	if m.BumpTokenEpochFunc != nil {
		return m.BumpTokenEpochFunc(ctx, userID)
	}
	return 2, nil
}

// Epoch reads the user's current token epoch
func (m *MockUserRepository) Epoch(ctx context.Context, userID string) (int64, error) {
	if m.EpochFunc != nil {
		return m.EpochFunc(ctx, userID)
	}
	return 1, nil
}

// Compile-time interface compliance verification
var (
	_ domain.UserRepository = (*MockUserRepository)(nil)
	_ domain.TokenEpochs    = (*MockUserRepository)(nil)
)
