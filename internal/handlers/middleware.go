package handlers

import (
	"net/http"

	"furniture_shop/internal/services"
	"furniture_shop/internal/session"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// RequireStaff lets through only signed-in, active admins.
func RequireStaff(authService services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authService.CurrentUser(c.Request.Context(), session.FromContext(c))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required", "redirect": loginPath})
			return
		}
		if !user.IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}
