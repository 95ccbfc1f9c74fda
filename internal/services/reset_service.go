package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shuke0908/quantauth/domain"
)

// ResetServiceImpl implements domain.ResetService using Redis persistence
type ResetServiceImpl struct {
	notificationSvc domain.NotificationService
	userRepo        domain.UserRepository
	redisClient     *redis.Client
	config          ResetConfig
}

type ResetConfig struct {
	Length       int
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

// NewResetService creates a new Redis-based password reset service
func NewResetService(notificationSvc domain.NotificationService, userRepo domain.UserRepository, redisClient *redis.Client, config ResetConfig) domain.ResetService {
	return &ResetServiceImpl{
		notificationSvc: notificationSvc,
		userRepo:        userRepo,
		redisClient:     redisClient,
		config:          config,
	}
}

func resetKeys(email string) (code, attempts, resend string) {
	e := strings.ToLower(email)
	return "reset:" + e, "reset:att:" + e, "reset:res:" + e
}

// Generate implements domain.ResetService with Redis persistence
func (s *ResetServiceImpl) Generate(ctx context.Context, email string) (*domain.ResetRequest, error) {
	codeKey, attemptsKey, resendKey := resetKeys(email)

	if canResend, waitTime, _ := s.CanResend(ctx, email); !canResend {
		return nil, fmt.Errorf("%w: retry in %d seconds", domain.ErrResetResendLimit, waitTime)
	}

	code, err := s.generateSecureCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset code: %w", err)
	}

	if err := s.redisClient.Set(ctx, codeKey, code, s.config.TTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.redisClient.Set(ctx, attemptsKey, 0, s.config.TTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to initialize attempts counter: %w", err)
	}

	if err := s.redisClient.Set(ctx, resendKey, 1, s.config.ResendWindow).Err(); err != nil {
		return nil, fmt.Errorf("failed to set resend throttle: %w", err)
	}

	req := &domain.ResetRequest{
		Email:     strings.ToLower(email),
		Code:      code,
		ExpiresAt: time.Now().Add(s.config.TTL),
		Attempts:  0,
	}

	if err := s.deliver(ctx, email, code); err != nil {
		s.redisClient.Del(ctx, codeKey, attemptsKey, resendKey)
		return nil, fmt.Errorf("failed to deliver reset code: %w", err)
	}

	return req, nil
}

// deliver sends the code over SMS when the account has a phone on file,
// falling back to email.
func (s *ResetServiceImpl) deliver(ctx context.Context, email, code string) error {
	message := fmt.Sprintf("Your password reset code is: %s. Valid for %d minutes.", code, int(s.config.TTL.Minutes()))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && user.Phone != "" {
		return s.notificationSvc.SendSMS(user.Phone, message)
	}
	return s.notificationSvc.SendEmail(email, "Password reset code", message)
}

// Verify implements domain.ResetService with Redis persistence
func (s *ResetServiceImpl) Verify(ctx context.Context, email, code string) (bool, error) {
	codeKey, attemptsKey, _ := resetKeys(email)

	attempts, err := s.redisClient.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment attempts: %w", err)
	}

	if attempts > int64(s.config.MaxAttempts) {
		s.redisClient.Del(ctx, codeKey, attemptsKey)
		return false, domain.ErrResetCodeMaxAttempts
	}

	storedCode, err := s.redisClient.Get(ctx, codeKey).Result()
	if err == redis.Nil {
		return false, domain.ErrResetCodeNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to get reset code: %w", err)
	}

	if storedCode != code {
		return false, domain.ErrResetCodeInvalid
	}

	// Single use.
	s.redisClient.Del(ctx, codeKey, attemptsKey)

	return true, nil
}

// CanResend implements domain.ResetService with Redis-based throttling
func (s *ResetServiceImpl) CanResend(ctx context.Context, email string) (bool, int64, error) {
	_, _, resendKey := resetKeys(email)

	ttl, err := s.redisClient.TTL(ctx, resendKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check resend TTL: %w", err)
	}

	if ttl <= 0 {
		return true, 0, nil
	}

	return false, int64(ttl.Seconds()), nil
}

// generateSecureCode generates a cryptographically secure numeric code
func (s *ResetServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}
