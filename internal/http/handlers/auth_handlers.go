package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shuke0908/quantauth/domain"
	"github.com/shuke0908/quantauth/internal/http/metrics"
	"github.com/shuke0908/quantauth/internal/http/middleware"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
	cookies *CookieWriter
	metrics *metrics.Metrics
	log     *logrus.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, cookies *CookieWriter, m *metrics.Metrics, log *logrus.Logger) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		cookies: cookies,
		metrics: m,
		log:     log,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest represents password change request
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// ForgotPasswordRequest represents password reset initiation
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents password reset completion
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// userView is the wire shape of a user. The password hash never appears
// in any response.
func userView(u *domain.User) gin.H {
	return gin.H{
		"id":               u.ID,
		"email":            u.Email,
		"firstName":        u.FirstName,
		"lastName":         u.LastName,
		"role":             u.Role,
		"isActive":         u.IsActive,
		"twoFactorEnabled": u.TwoFactorEnabled,
		"balance":          u.Balance,
		"vipTier":          u.VIPTier,
		"kycStatus":        u.KYCStatus,
		"createdAt":        u.CreatedAt,
		"updatedAt":        u.UpdatedAt,
	}
}

// respondError maps domain errors onto the HTTP taxonomy. Every
// authentication failure collapses to the same generic 401 body.
func (h *AuthHandlers) respondError(c *gin.Context, err error) {
	switch {
	case domain.IsValidationFailure(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsAuthFailure(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case err == domain.ErrUserInactive:
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
	case err == domain.ErrInsufficientRole:
		c.JSON(http.StatusForbidden, gin.H{"error": "Access Denied"})
	case err == domain.ErrUserAlreadyExists:
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case err == domain.ErrUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case err == domain.ErrResetCodeMaxAttempts:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Maximum attempts exceeded"})
	default:
		h.log.WithError(err).Error("unexpected handler error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": userView(user)})
}

// Login handles user login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.Logins.WithLabelValues("failure").Inc()
		h.respondError(c, err)
		return
	}

	h.metrics.Logins.WithLabelValues("success").Inc()
	h.cookies.Write(c, result.Session)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  result.Session.AccessToken,
		"refreshToken": result.Session.RefreshToken,
		"expiresIn":    result.Session.ExpiresIn,
		"user":         userView(result.User),
	})
}

// refreshTokenFrom returns the refresh token from the request body,
// falling back to the session cookie.
func refreshTokenFrom(c *gin.Context) string {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie(CookieRefreshToken); err == nil {
		return cookie
	}
	return ""
}

// Refresh handles token rotation
func (h *AuthHandlers) Refresh(c *gin.Context) {
	refreshToken := refreshTokenFrom(c)
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if err == domain.ErrTokenReused {
			h.metrics.Refreshes.WithLabelValues("reuse_detected").Inc()
			// The session is revoked; clear whatever cookies remain.
			h.cookies.Clear(c)
		} else {
			h.metrics.Refreshes.WithLabelValues("failure").Inc()
		}
		h.respondError(c, err)
		return
	}

	h.metrics.Refreshes.WithLabelValues("success").Inc()
	h.cookies.Write(c, result.Session)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  result.Session.AccessToken,
		"refreshToken": result.Session.RefreshToken,
		"expiresIn":    result.Session.ExpiresIn,
	})
}

// Logout ends the session named by the refresh cookie (or body). No
// authentication is required: a client whose access token has already
// expired must still be able to log out, so the cookies are cleared and
// the response is 200 whatever state the tokens are in.
func (h *AuthHandlers) Logout(c *gin.Context) {
	err := h.authSvc.Logout(c.Request.Context(), refreshTokenFrom(c))
	h.cookies.Clear(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ChangePassword handles password change (requires authentication)
func (h *AuthHandlers) ChangePassword(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authSvc.ChangePassword(c.Request.Context(), identity.UserID, domain.PasswordChange{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
		Confirm: req.ConfirmNewPassword,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Every other session is dead now; this one keeps its cookies until
	// the short-lived access token expires against the bumped epoch.
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// ForgotPassword initiates an out-of-band reset. The response is the same
// whether or not the account exists.
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset code has been sent"})
}

// ResetPassword completes an out-of-band reset
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// Me handles getting user profile (requires authentication)
func (h *AuthHandlers) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userView(user)})
}
