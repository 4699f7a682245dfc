package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hiremind/backend/config"
	"github.com/hiremind/backend/models"
)

// AuthClaimsKey is the key used to store JWT claims in gin context
const AuthClaimsKey = "auth_claims"

// AuthMiddleware creates a middleware for JWT authentication
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(AuthClaimsKey, claims)
		c.Next()
	}
}

// RequireAdmin gates maintenance routes. It must run after AuthMiddleware.
// In production only ADMIN_EMAILS may pass; in development any
// authenticated user may.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	admins := cfg.Admins()
	production := cfg.IsProduction()

	return func(c *gin.Context) {
		claims := GetAuthClaims(c)
		if claims == nil {
			abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if production && !slices.Contains(admins, strings.ToLower(claims.Email)) {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// GetAuthClaims retrieves auth claims from gin context
func GetAuthClaims(c *gin.Context) *Claims {
	claims, exists := c.Get(AuthClaimsKey)
	if !exists {
		return nil
	}
	typed, _ := claims.(*Claims)
	return typed
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, models.ErrorResponse{Error: msg, Code: code})
}
