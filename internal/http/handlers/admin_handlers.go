package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shuke0908/quantauth/domain"
)

// AdminHandlers serves user administration endpoints. Routes using it are
// gated by the casbin middleware on top of authentication.
type AdminHandlers struct {
	userRepo domain.UserRepository
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(userRepo domain.UserRepository) *AdminHandlers {
	return &AdminHandlers{userRepo: userRepo}
}

// GetUser returns any user's profile by id
func (h *AdminHandlers) GetUser(c *gin.Context) {
	user, err := h.userRepo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == domain.ErrUserNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userView(user)})
}
