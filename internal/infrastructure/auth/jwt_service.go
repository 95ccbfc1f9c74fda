package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shuke0908/quantauth/domain"
)

// Token type discriminators. A refresh token presented where an access
// token is expected fails with ErrTokenWrongType, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// JWTConfig is the explicit key/TTL configuration injected at startup.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// JWTServiceImpl implements domain.TokenService using HS256 signatures.
// Verification is stateless except for the epoch check, which reads the
// user's current token epoch through the injected TokenEpochs capability.
type JWTServiceImpl struct {
	secretKey  []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	epochs     domain.TokenEpochs
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg JWTConfig, epochs domain.TokenEpochs) *JWTServiceImpl {
	return &JWTServiceImpl{
		secretKey:  []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		epochs:     epochs,
		now:        time.Now,
	}
}

// WithClock overrides the service clock. Tests use it to simulate expiry.
func (j *JWTServiceImpl) WithClock(now func() time.Time) *JWTServiceImpl {
	j.now = now
	return j
}

// generateJTI creates a unique JWT ID
func generateJTI() string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// IssueAccessToken implements domain.TokenService
func (j *JWTServiceImpl) IssueAccessToken(user *domain.User) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.accessTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"typ":   TokenTypeAccess,
		"epoch": user.TokenEpoch,
		"iss":   j.issuer,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"jti":   generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueRefreshToken implements domain.TokenService. The JTI keys the
// server-side record that rotation consumes.
func (j *JWTServiceImpl) IssueRefreshToken(user *domain.User, generation int64) (string, string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.refreshTTL)
	jti := generateJTI()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"typ":   TokenTypeRefresh,
		"epoch": user.TokenEpoch,
		"gen":   generation,
		"iss":   j.issuer,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
		"jti":   jti,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, expiresAt, nil
}

// VerifyAccessToken implements domain.TokenService
func (j *JWTServiceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.TokenClaims, error) {
	return j.verifyToken(ctx, tokenString, TokenTypeAccess)
}

// VerifyRefreshToken implements domain.TokenService
func (j *JWTServiceImpl) VerifyRefreshToken(ctx context.Context, tokenString string) (*domain.TokenClaims, error) {
	return j.verifyToken(ctx, tokenString, TokenTypeRefresh)
}

func (j *JWTServiceImpl) verifyToken(ctx context.Context, tokenString, wantType string) (*domain.TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithTimeFunc(j.now),
		jwt.WithIssuer(j.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, domain.ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, domain.ErrTokenMalformed
		default:
			return nil, domain.ErrTokenInvalid
		}
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	typ, ok := claims["typ"].(string)
	if !ok || typ != wantType {
		return nil, domain.ErrTokenWrongType
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, domain.ErrTokenMalformed
	}

	role, ok := claims["role"].(string)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	epoch, ok := claims["epoch"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, domain.ErrTokenMalformed
	}

	// Tokens issued before a password change or mass revocation carry a
	// stale epoch and must fail here.
	current, err := j.epochs.Epoch(ctx, userID)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if int64(epoch) != current {
		return nil, domain.ErrEpochRevoked
	}

	tokenClaims := &domain.TokenClaims{
		UserID:    userID,
		Role:      role,
		TokenType: typ,
		Epoch:     int64(epoch),
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
	}

	if email, ok := claims["email"].(string); ok {
		tokenClaims.Email = email
	}
	if jti, ok := claims["jti"].(string); ok {
		tokenClaims.JTI = jti
	}
	if gen, ok := claims["gen"].(float64); ok {
		tokenClaims.Generation = int64(gen)
	}

	return tokenClaims, nil
}
