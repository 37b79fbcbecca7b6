package middleware

import (
	"context"
	"net/http"
	"strings"

	"glowclinic/models"
	"glowclinic/services/authz"
	"glowclinic/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	identityKey = "identity"
	userKey     = "user"
)

// UserLookup resolves a verified subject to the synced local user.
type UserLookup interface {
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// SessionAuth verifies the bearer token and stores the caller's identity.
func SessionAuth(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		identity, err := verifier.Verify(token)
		if err != nil {
			zap.L().Debug("Session verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireUser loads the synced user for the verified identity. Must run after
// SessionAuth.
func RequireUser(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := users.GetBySubject(c.Request.Context(), identity.Subject)
		if err != nil {
			utils.RespondError(c, zap.L(), err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// RequireAdmin rejects callers the policy does not recognise as admins.
func RequireAdmin(policy authz.AuthorizationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		isAdmin, err := policy.IsAdmin(c.Request.Context(), identity.Subject)
		if err != nil {
			utils.RespondError(c, zap.L(), err)
			return
		}
		if !isAdmin {
			zap.L().Warn("Admin access denied", zap.String("subject", identity.Subject))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok && identity != nil
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
