package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shuke0908/quantauth/domain"
	"github.com/shuke0908/quantauth/internal/mocks"
)

func createJWTServiceForTest(t *testing.T, epochs domain.TokenEpochs) *JWTServiceImpl {
	t.Helper()

	cfg := JWTConfig{
		Secret:     "test-secret-key-for-jwt-signing",
		Issuer:     "quanttrade",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	return NewJWTService(cfg, epochs)
}

func createTestUser(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:         "user-123",
		Email:      "alice@example.com",
		Role:       "user",
		IsActive:   true,
		TokenEpoch: 1,
	}
}

func TestJWTServiceImpl_AccessTokenRoundTrip(t *testing.T) {
	svc := createJWTServiceForTest(t, mocks.NewMockUserRepository())
	user := createTestUser(t)

	token, expiresAt, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expiry should be in the future")
	}

	claims, err := svc.VerifyAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyAccessToken failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("expected user ID %s, got %s", user.ID, claims.UserID)
	}
	if claims.Email != user.Email {
		t.Errorf("expected email %s, got %s", user.Email, claims.Email)
	}
	if claims.Role != user.Role {
		t.Errorf("expected role %s, got %s", user.Role, claims.Role)
	}
	if claims.TokenType != TokenTypeAccess {
		t.Errorf("expected token type %s, got %s", TokenTypeAccess, claims.TokenType)
	}
	if claims.Epoch != user.TokenEpoch {
		t.Errorf("expected epoch %d, got %d", user.TokenEpoch, claims.Epoch)
	}
	if claims.JTI == "" {
		t.Error("expected a JTI claim")
	}
}

func TestJWTServiceImpl_RefreshTokenRoundTrip(t *testing.T) {
	svc := createJWTServiceForTest(t, mocks.NewMockUserRepository())
	user := createTestUser(t)

	token, jti, expiresAt, err := svc.IssueRefreshToken(user, 3)
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}
	if jti == "" {
		t.Fatal("expected non-empty JTI")
	}
	if !expiresAt.After(time.Now().Add(6 * 24 * time.Hour)) {
		t.Error("refresh expiry should honor the refresh TTL")
	}

	claims, err := svc.VerifyRefreshToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyRefreshToken failed: %v", err)
	}
	if claims.TokenType != TokenTypeRefresh {
		t.Errorf("expected token type %s, got %s", TokenTypeRefresh, claims.TokenType)
	}
	if claims.JTI != jti {
		t.Errorf("expected JTI %s, got %s", jti, claims.JTI)
	}
	if claims.Generation != 3 {
		t.Errorf("expected generation 3, got %d", claims.Generation)
	}
}

func TestJWTServiceImpl_WrongTokenType(t *testing.T) {
	svc := createJWTServiceForTest(t, mocks.NewMockUserRepository())
	user := createTestUser(t)

	accessToken, _, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}
	refreshToken, _, _, err := svc.IssueRefreshToken(user, 1)
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	if _, err := svc.VerifyRefreshToken(context.Background(), accessToken); !errors.Is(err, domain.ErrTokenWrongType) {
		t.Errorf("access token as refresh: expected ErrTokenWrongType, got %v", err)
	}
	if _, err := svc.VerifyAccessToken(context.Background(), refreshToken); !errors.Is(err, domain.ErrTokenWrongType) {
		t.Errorf("refresh token as access: expected ErrTokenWrongType, got %v", err)
	}
}

func TestJWTServiceImpl_ExpiredToken(t *testing.T) {
	svc := createJWTServiceForTest(t, mocks.NewMockUserRepository())
	user := createTestUser(t)

	issuedAt := time.Now()
	svc.WithClock(func() time.Time { return issuedAt })

	token, _, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	// Still valid one minute before expiry.
	svc.WithClock(func() time.Time { return issuedAt.Add(14 * time.Minute) })
	if _, err := svc.VerifyAccessToken(context.Background(), token); err != nil {
		t.Fatalf("token should still verify before expiry: %v", err)
	}

	// Dead one minute after expiry.
	svc.WithClock(func() time.Time { return issuedAt.Add(16 * time.Minute) })
	if _, err := svc.VerifyAccessToken(context.Background(), token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTServiceImpl_TamperedToken(t *testing.T) {
	svc := createJWTServiceForTest(t, mocks.NewMockUserRepository())
	user := createTestUser(t)

	token, _, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	tests := []struct {
		name          string
		token         string
		expectedError error
	}{
		{
			name:          "flipped signature byte",
			token:         flipSignatureByte(t, token),
			expectedError: domain.ErrTokenSignature,
		},
		{
			name: "signed with a different key",
			token: func() string {
				other := createJWTServiceForTest(t, mocks.NewMockUserRepository())
				other.secretKey = []byte("a-completely-different-secret")
				tok, _, err := other.IssueAccessToken(user)
				if err != nil {
					t.Fatalf("IssueAccessToken failed: %v", err)
				}
				return tok
			}(),
			expectedError: domain.ErrTokenSignature,
		},
		{
			name:          "not a JWT at all",
			token:         "garbage",
			expectedError: domain.ErrTokenMalformed,
		},
		{
			name:          "empty token",
			token:         "",
			expectedError: domain.ErrTokenMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyAccessToken(context.Background(), tt.token)
			if !errors.Is(err, tt.expectedError) {
				t.Errorf("expected %v, got %v", tt.expectedError, err)
			}
		})
	}
}

func TestJWTServiceImpl_EpochRevocation(t *testing.T) {
	epochs := mocks.NewMockUserRepository()
	svc := createJWTServiceForTest(t, epochs)
	user := createTestUser(t)

	token, _, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	// Current epoch matches the token: verification succeeds.
	if _, err := svc.VerifyAccessToken(context.Background(), token); err != nil {
		t.Fatalf("VerifyAccessToken failed: %v", err)
	}

	// Epoch bumped after issuance: the same token is now dead, even though
	// it has not expired and the signature is intact.
	epochs.EpochFunc = func(ctx context.Context, userID string) (int64, error) {
		return 2, nil
	}
	if _, err := svc.VerifyAccessToken(context.Background(), token); !errors.Is(err, domain.ErrEpochRevoked) {
		t.Errorf("expected ErrEpochRevoked, got %v", err)
	}

	// Refresh tokens die the same way.
	epochs.EpochFunc = nil
	refreshToken, _, _, err := svc.IssueRefreshToken(user, 1)
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}
	epochs.EpochFunc = func(ctx context.Context, userID string) (int64, error) {
		return 5, nil
	}
	if _, err := svc.VerifyRefreshToken(context.Background(), refreshToken); !errors.Is(err, domain.ErrEpochRevoked) {
		t.Errorf("expected ErrEpochRevoked for refresh token, got %v", err)
	}
}

func TestJWTServiceImpl_WrongIssuer(t *testing.T) {
	user := createTestUser(t)

	other := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-jwt-signing",
		Issuer:     "someone-else",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, mocks.NewMockUserRepository())

	token, _, err := other.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	svc := createJWTServiceForTest(t, mocks.NewMockUserRepository())
	if _, err := svc.VerifyAccessToken(context.Background(), token); err == nil {
		t.Error("token with a foreign issuer should not verify")
	}
}

func TestJWTServiceImpl_UniqueJTIs(t *testing.T) {
	svc := createJWTServiceForTest(t, mocks.NewMockUserRepository())
	user := createTestUser(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		_, jti, _, err := svc.IssueRefreshToken(user, 1)
		if err != nil {
			t.Fatalf("IssueRefreshToken failed: %v", err)
		}
		if seen[jti] {
			t.Fatalf("duplicate JTI issued: %s", jti)
		}
		seen[jti] = true
	}
}

// flipSignatureByte corrupts a byte in the middle of the signature segment
// of a compact JWT, leaving the header and claims intact.
func flipSignatureByte(t *testing.T, token string) string {
	t.Helper()

	idx := strings.LastIndex(token, ".")
	if idx < 0 || idx+10 >= len(token) {
		t.Fatalf("unexpected token shape: %s", token)
	}
	pos := idx + 5
	replacement := byte('A')
	if token[pos] == 'A' {
		replacement = 'B'
	}
	return token[:pos] + string(replacement) + token[pos+1:]
}
