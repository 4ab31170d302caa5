package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/feriahub/marketplace-backend/internal/core/domain"
	"github.com/feriahub/marketplace-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrincipalResolver turns a verified token subject into the authoritative
// principal. Backed by the lifecycle service's cached principal reads.
type PrincipalResolver interface {
	GetPrincipal(ctx context.Context, id primitive.ObjectID) (*domain.Principal, error)
}

const principalContextKey = "principal"

// AuthMiddleware verifies the bearer token and resolves the subject against
// the identity store. The token never carries roles; whatever the store says
// right now is what the request runs with.
func AuthMiddleware(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization header is required"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization header must be Bearer token"))
			c.Abort()
			return
		}

		claims, err := utils.VerifyToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse(err.Error()))
			c.Abort()
			return
		}

		principalID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Invalid token subject"))
			c.Abort()
			return
		}

		principal, err := resolver.GetPrincipal(c.Request.Context(), principalID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Unknown principal"))
			c.Abort()
			return
		}

		c.Set(principalContextKey, principal)
		c.Next()
	}
}

// RequireRole gates a route group on the resolved principal's role set. This
// is a fast path: the lifecycle service re-checks authorization on every
// operation regardless.
func RequireRole(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse("Principal not found in context"))
			c.Abort()
			return
		}

		for _, role := range allowedRoles {
			if principal.HasRole(role) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, utils.ErrorResponse("You do not have permission to access this resource"))
		c.Abort()
	}
}

// PrincipalFrom returns the authenticated principal set by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (*domain.Principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return nil, false
	}
	principal, ok := v.(*domain.Principal)
	return principal, ok
}
