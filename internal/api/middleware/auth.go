package middleware

import (
	"floorkeeper/internal/auth"
	"floorkeeper/internal/models"
	"floorkeeper/internal/repository"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Error codes set by the middleware chain
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeRateLimited  = "RATE_LIMITED"
)

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

type AuthMiddleware struct {
	authService *auth.Service
	userRepo    repository.UserRepository
}

func NewAuthMiddleware(authService *auth.Service, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// AuthRequired loads the staff member named by the bearer token into the context
func (m *AuthMiddleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "no authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "invalid authorization header")
			return
		}

		claims, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, CodeUnauthorized, err.Error())
			return
		}

		// The account may have been removed since the token was issued
		user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "user not found")
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// RoleRequired rejects staff whose role is not among roles. It must run after AuthRequired.
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.GetUserFromContext(c)
		if user == nil {
			abort(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
			return
		}
		if !user.HasRole(roles...) {
			abort(c, http.StatusForbidden, CodeForbidden, "role "+string(user.Role)+" may not perform this action")
			return
		}
		c.Next()
	}
}

// AdminRequired is RoleRequired(models.RoleAdmin)
func (m *AuthMiddleware) AdminRequired() gin.HandlerFunc {
	return m.RoleRequired(models.RoleAdmin)
}
