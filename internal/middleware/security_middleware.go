package middleware

import (
	"net/http"
	"strings"
	"time"

	"go-gst-billing/internal/auth"
	"go-gst-billing/internal/database"
	"go-gst-billing/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags every request with a correlation id so log lines from the
// same request can be stitched together.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Store user info in the context for the next handler to use
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole is a secondary guard that checks for specific permissions
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != allowedRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CheckLicense blocks the whole API until this installation has been
// activated with a valid, unexpired licence key for this device.
func CheckLicense() gin.HandlerFunc {
	return func(c *gin.Context) {
		var license models.SystemLicense
		if err := database.DB.First(&license).Error; err != nil || !license.IsActive {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "System is not activated. Please enter your licence key.",
				"code":  "LICENSE_REQUIRED",
			})
			c.Abort()
			return
		}

		if time.Now().After(license.ExpirationDate) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Licence has expired. Please contact support for renewal.",
				"code":  "LICENSE_EXPIRED",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
