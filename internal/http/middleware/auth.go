package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/shuke0908/quantauth/domain"
)

// AuthMW wraps the token service for middleware wiring.
type AuthMW struct {
	tokenSvc domain.TokenService
	observe  func(result string)
}

// NewAuthMW creates new auth middleware wrapper. observe may be nil.
func NewAuthMW(tokenSvc domain.TokenService, observe func(result string)) *AuthMW {
	return &AuthMW{tokenSvc: tokenSvc, observe: observe}
}

// WithJWT returns the JWT middleware function
func (mw *AuthMW) WithJWT() gin.HandlerFunc {
	return AuthMiddleware(mw.tokenSvc, mw.observe)
}
