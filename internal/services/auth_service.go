package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shuke0908/quantauth/domain"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	refreshRepo domain.RefreshTokenRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	resetSvc    domain.ResetService
	log         *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	refreshRepo domain.RefreshTokenRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	resetSvc domain.ResetService,
	log *logrus.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		refreshRepo: refreshRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		resetSvc:    resetSvc,
		log:         log,
	}
}

// Register implements domain.AuthService
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, error) {
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existingUser != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         "user",
		IsActive:     true,
		TokenEpoch:   1,
		VIPTier:      "standard",
		KYCStatus:    "pending",
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two registrations racing the same email both pass the lookup
		// above; the unique index settles it.
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit(domain.UserRegistrationEvent, user.ID, user.Email, true)
	return user, nil
}

// Login implements domain.AuthService. Unknown email and wrong password
// both surface as ErrInvalidCredentials so accounts are not enumerable.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.audit(domain.UserLoginFailureEvent, "", email, false)
		return nil, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if !s.passwordSvc.Verify(user.PasswordHash, password) {
		s.audit(domain.UserLoginFailureEvent, user.ID, email, false)
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user, 1)
	if err != nil {
		return nil, err
	}

	s.audit(domain.UserLoginEvent, user.ID, user.Email, true)
	return &domain.AuthResult{User: user, Session: session}, nil
}

// Refresh implements domain.AuthService. The presented token is consumed
// atomically; a token that was already rotated out is treated as evidence
// of theft and every session for that user is revoked.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	claims, err := s.tokenSvc.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	rec, err := s.refreshRepo.Consume(ctx, claims.JTI)
	if err != nil {
		if err == domain.ErrTokenReused {
			s.log.WithFields(logrus.Fields{
				"user_id": claims.UserID,
				"event":   domain.TokenReuseEvent,
			}).Warn("refresh token reuse detected, revoking all sessions")
			if revokeErr := s.revokeAll(ctx, claims.UserID); revokeErr != nil {
				s.log.WithField("user_id", claims.UserID).WithError(revokeErr).Error("failed to revoke sessions after reuse")
			}
			return nil, domain.ErrTokenReused
		}
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, rec.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	// The consumed record is not restored on failure: rotation fails
	// closed and the client re-authenticates instead of retrying the
	// spent token.
	session, err := s.issueSession(ctx, user, rec.Generation+1)
	if err != nil {
		return nil, err
	}

	s.audit(domain.TokenRefreshedEvent, user.ID, user.Email, true)
	return &domain.AuthResult{User: user, Session: session}, nil
}

// Logout implements domain.AuthService. No prior authentication is
// required: the refresh token's signature identifies its owner, and an
// expired session must still be able to log out. Repeating a logout is
// safe: a token whose record is already gone verifies but deletes nothing.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokenSvc.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil
	}
	if err := s.refreshRepo.Delete(ctx, claims.JTI); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	s.audit(domain.UserLogoutEvent, claims.UserID, "", true)
	return nil
}

// ChangePassword implements domain.AuthService. A successful change bumps
// the token epoch, so every session established before it dies.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID string, change domain.PasswordChange) error {
	if change.Current == "" || change.New == "" || change.Confirm == "" {
		return domain.ErrMissingFields
	}
	if change.New != change.Confirm {
		return domain.ErrPasswordMismatch
	}
	if len(change.New) < 8 {
		return domain.ErrPasswordTooShort
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	if !s.passwordSvc.Verify(user.PasswordHash, change.Current) {
		return domain.ErrPasswordIncorrect
	}

	hash, err := s.passwordSvc.Hash(change.New)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.revokeAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.audit(domain.PasswordChangedEvent, user.ID, user.Email, true)
	return nil
}

// ForgotPassword implements domain.AuthService. The outcome is identical
// whether or not the account exists.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil
	}

	if _, err := s.resetSvc.Generate(ctx, user.Email); err != nil {
		// Throttled or delivery failure: the caller still sees success.
		s.log.WithField("user_id", user.ID).WithError(err).Warn("reset code generation failed")
		return nil
	}

	s.audit(domain.ResetRequestedEvent, user.ID, user.Email, true)
	return nil
}

// ResetPassword implements domain.AuthService
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return domain.ErrMissingFields
	}
	if len(newPassword) < 8 {
		return domain.ErrPasswordTooShort
	}

	valid, err := s.resetSvc.Verify(ctx, email, code)
	if err != nil {
		return err
	}
	if !valid {
		return domain.ErrResetCodeInvalid
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return domain.ErrResetCodeInvalid
	}

	hash, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.revokeAll(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.audit(domain.PasswordResetEvent, user.ID, user.Email, true)
	return nil
}

// GetUserProfile implements domain.AuthService
func (s *AuthServiceImpl) GetUserProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// issueSession builds a fresh access+refresh pair and persists the
// refresh record. Either both tokens exist or neither does.
func (s *AuthServiceImpl) issueSession(ctx context.Context, user *domain.User, generation int64) (*domain.Session, error) {
	accessToken, accessExp, err := s.tokenSvc.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, jti, refreshExp, err := s.tokenSvc.IssueRefreshToken(user, generation)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	rec := &domain.RefreshTokenRecord{
		JTI:        jti,
		UserID:     user.ID,
		Generation: generation,
		ExpiresAt:  refreshExp,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.refreshRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return &domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

// revokeAll bumps the user's token epoch and drops every outstanding
// refresh record. Prior-epoch access tokens fail verification afterwards.
func (s *AuthServiceImpl) revokeAll(ctx context.Context, userID string) error {
	if _, err := s.userRepo.BumpTokenEpoch(ctx, userID); err != nil {
		return err
	}
	if err := s.refreshRepo.RevokeAll(ctx, userID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"event":   domain.SessionsRevokedEvent,
	}).Info("all sessions revoked")
	return nil
}

func (s *AuthServiceImpl) audit(event domain.AuditEventType, userID, email string, success bool) {
	s.log.WithFields(logrus.Fields{
		"event":   event,
		"user_id": userID,
		"email":   email,
		"success": success,
	}).Info("auth event")
}
