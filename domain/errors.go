package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is inactive")
)

// Token errors. Each verification failure stays distinguishable to callers;
// the HTTP layer collapses them all to a generic 401.
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenWrongType = errors.New("wrong token type")
	ErrTokenReused    = errors.New("refresh token already consumed")
	ErrTokenNotFound  = errors.New("refresh token not found")
	ErrEpochRevoked   = errors.New("token epoch revoked")
)

// Validation errors
var (
	ErrMissingFields     = errors.New("required fields are missing")
	ErrPasswordMismatch  = errors.New("password confirmation does not match")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordIncorrect = errors.New("current password is incorrect")
)

// Reset errors
var (
	ErrResetCodeExpired     = errors.New("reset code has expired")
	ErrResetCodeInvalid     = errors.New("invalid reset code")
	ErrResetCodeMaxAttempts = errors.New("maximum reset attempts exceeded")
	ErrResetCodeNotFound    = errors.New("reset code not found")
	ErrResetResendLimit     = errors.New("reset code resend limit exceeded")
)

// Authorization errors
var (
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInsufficientRole = errors.New("insufficient role permissions")
)

// IsAuthFailure reports whether err belongs to the authentication failure
// family that must surface as a uniform 401.
func IsAuthFailure(err error) bool {
	for _, target := range []error{
		ErrInvalidCredentials, ErrTokenInvalid, ErrTokenExpired,
		ErrTokenMalformed, ErrTokenSignature, ErrTokenWrongType,
		ErrTokenReused, ErrTokenNotFound, ErrEpochRevoked,
		ErrPasswordIncorrect, ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidationFailure reports whether err is a 400-class input error.
func IsValidationFailure(err error) bool {
	for _, target := range []error{
		ErrMissingFields, ErrPasswordMismatch, ErrPasswordTooShort,
		ErrResetCodeInvalid, ErrResetCodeExpired, ErrResetCodeNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
