package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/tasklane/internal/auth"
	"github.com/lalith-99/tasklane/internal/models"
	"github.com/lalith-99/tasklane/internal/service"
	"go.uber.org/zap"
)

// ContextKeyPrincipal is the gin context key holding the service.Principal
// of an authenticated request.
const ContextKeyPrincipal = "principal"

// AuthOption tweaks AuthMiddleware for a single route group.
type AuthOption func(*authOptions)

type authOptions struct {
	queryToken bool
}

// AllowQueryToken also accepts the token in a `token` query parameter.
// Browsers cannot set headers on a websocket handshake, so only the event
// stream route uses it.
func AllowQueryToken() AuthOption {
	return func(o *authOptions) { o.queryToken = true }
}

// AuthMiddleware validates the bearer token and stores the caller as a
// service.Principal. A missing, malformed, expired or revoked token aborts
// with 401 before any handler runs.
func AuthMiddleware(issuer *auth.Issuer, denylist auth.Denylist, opts ...AuthOption) gin.HandlerFunc {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		tokenString, msg := bearerToken(c, o.queryToken)
		if tokenString == "" {
			abortUnauthorized(c, msg)
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			Logger(c).Error("failed to check token revocation", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
			return
		}
		if revoked {
			abortUnauthorized(c, "Token has been revoked")
			return
		}

		p := service.Principal{
			UserID:   claims.UserID,
			TenantID: claims.TenantID,
			Role:     claims.Role,
			Email:    claims.Email,
			TokenID:  claims.ID,
		}
		if claims.ExpiresAt != nil {
			p.ExpiresAt = claims.ExpiresAt.Time
		}
		c.Set(ContextKeyPrincipal, p)

		c.Set(loggerKey, Logger(c).With(
			zap.String("user_id", p.UserID.String()),
			zap.String("role", string(p.Role)),
		))

		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQuery bool) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if allowQuery {
			if t := c.Query("token"); t != "" {
				return t, ""
			}
		}
		return "", "Not authenticated"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "Invalid authorization format, expected: Bearer <token>"
	}
	return strings.TrimSpace(parts[1]), ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": msg,
	})
}

// RequireRole restricts a route to the given roles. It must run after
// AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok || !slices.Contains(roles, p.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Forbidden",
			})
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller. ok is false on routes
// that do not run AuthMiddleware.
func GetPrincipal(c *gin.Context) (service.Principal, bool) {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return service.Principal{}, false
	}
	p, ok := val.(service.Principal)
	return p, ok
}

func GetUserID(c *gin.Context) uuid.UUID {
	p, _ := GetPrincipal(c)
	return p.UserID
}

// GetTenantID returns uuid.Nil for SUPER_ADMIN and unauthenticated requests.
func GetTenantID(c *gin.Context) uuid.UUID {
	p, _ := GetPrincipal(c)
	return p.TenantID
}
