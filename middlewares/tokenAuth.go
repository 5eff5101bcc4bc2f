package middlewares

import (
	"MediCitas/utils"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const accessTokenHeader = "X-Access-Token"

type contextKey string

const (
	userIDKey    contextKey = "userID"
	userRolesKey contextKey = "userRoles"
)

// TokenValidator checks user access tokens.
type TokenValidator interface {
	ValidateToken(token string, requiredRoles ...string) (*utils.TokenClaims, error)
}

// TokenAuthMiddleware validates the user access token and stores its claims
// in the request context. The token is read from the X-Access-Token header,
// then the accessToken cookie, then the accessToken query parameter.
func TokenAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(accessTokenHeader)
		if token == "" {
			token, _ = c.Cookie(utils.AccessTokenCookie)
		}
		if token == "" {
			token = c.Query("accessToken")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), claims.UserID, claims.Roles))

		c.Next()
	}
}

// RoleAuthMiddleware lets through users holding any of roles.
func RoleAuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		held, err := ExtractUserRolesFromContext(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User roles not found in context"})
			return
		}

		claims := utils.TokenClaims{Roles: held}
		if !claims.HasAnyRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient privileges"})
			return
		}

		c.Next()
	}
}

// WithUser returns ctx carrying the given user, as TokenAuthMiddleware does.
func WithUser(ctx context.Context, userID uint, roles []string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userRolesKey, roles)
}

// ExtractUserIDFromContext retrieves the userID from the context.
func ExtractUserIDFromContext(ctx context.Context) (uint, error) {
	userID, ok := ctx.Value(userIDKey).(uint)
	if !ok {
		return 0, errors.New("user ID not found in context")
	}
	return userID, nil
}

// ExtractUserRolesFromContext retrieves the user roles from the context.
func ExtractUserRolesFromContext(ctx context.Context) ([]string, error) {
	roles, ok := ctx.Value(userRolesKey).([]string)
	if !ok {
		return nil, errors.New("user roles not found in context")
	}
	return roles, nil
}
