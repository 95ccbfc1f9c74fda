package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	// BumpTokenEpoch atomically increments the user's token epoch and
	// returns the new value. Every token issued under a prior epoch
	// fails verification afterwards.
	BumpTokenEpoch(ctx context.Context, userID string) (int64, error)
	Epoch(ctx context.Context, userID string) (int64, error)
}

// RefreshTokenRepository defines the server-side refresh token table.
type RefreshTokenRepository interface {
	Create(ctx context.Context, rec *RefreshTokenRecord) error
	Find(ctx context.Context, jti string) (*RefreshTokenRecord, error)
	// Consume marks the record spent as one atomic check-and-set.
	// Returns ErrTokenReused when the record was already consumed and
	// ErrTokenNotFound when it never existed or has expired.
	Consume(ctx context.Context, jti string) (*RefreshTokenRecord, error)
	Delete(ctx context.Context, jti string) error
	// RevokeAll deletes every outstanding record for the user.
	RevokeAll(ctx context.Context, userID string) error
}

// TokenEpochs is the narrow read capability the token service needs to
// reject tokens issued under a revoked epoch.
type TokenEpochs interface {
	Epoch(ctx context.Context, userID string) (int64, error)
}

// AuthService defines authentication business logic
type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Logout deletes the server-side record behind the presented refresh
	// token. The token's own signature proves ownership; a missing or
	// dead token still counts as logged out.
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID string, change PasswordChange) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	GetUserProfile(ctx context.Context, userID string) (*User, error)
}

// ResetService defines password-reset code operations
type ResetService interface {
	Generate(ctx context.Context, email string) (*ResetRequest, error)
	Verify(ctx context.Context, email, code string) (bool, error)
	CanResend(ctx context.Context, email string) (bool, int64, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	IssueAccessToken(user *User) (token string, expiresAt time.Time, err error)
	IssueRefreshToken(user *User, generation int64) (token string, jti string, expiresAt time.Time, err error)
	VerifyAccessToken(ctx context.Context, token string) (*TokenClaims, error)
	VerifyRefreshToken(ctx context.Context, token string) (*TokenClaims, error)
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// PolicyService defines authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// TokenClaims represents verified JWT claims
type TokenClaims struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TokenType  string `json:"typ"`
	Epoch      int64  `json:"epoch"`
	Generation int64  `json:"gen,omitempty"`
	JTI        string `json:"jti"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
