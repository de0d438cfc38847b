package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/floristportal/internal/domain/model"
	pkgAuth "github.com/polkiloo/floristportal/internal/pkg/auth"
)

const (
	// ActorContextKey is a gin context key for the authenticated model.Actor.
	ActorContextKey = "actor"
	// AuthCookieName carries the session token for browser clients.
	AuthCookieName = "florist_token"
)

// SessionResolver turns a token into the account behind it.
type SessionResolver interface {
	ParseToken(token string) (pkgAuth.Claims, error)
	Me(ctx context.Context, userID int64) (*model.User, error)
}

// AuthRequired ensures user is authenticated before accessing handler. The
// account is reloaded so deleted users and role changes take effect at once.
func AuthRequired(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := sessions.ParseToken(token)
		if err != nil {
			abortAuth(c, err)
			return
		}
		user, err := sessions.Me(c.Request.Context(), claims.UserID)
		if err != nil {
			abortAuth(c, err)
			return
		}

		c.Set(ActorContextKey, model.ActorFromUser(user))
		c.Next()
	}
}

func abortAuth(c *gin.Context, err error) {
	if errors.Is(err, pkgAuth.ErrInvalidToken) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
		return
	}
	c.AbortWithStatus(http.StatusInternalServerError)
}

// RequireRole rejects actors whose role is not listed.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// CurrentActor returns the actor stored by AuthRequired.
func CurrentActor(c *gin.Context) (model.Actor, bool) {
	val, ok := c.Get(ActorContextKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := val.(model.Actor)
	return actor, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string, expires time.Time) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)
	c.Header("Authorization", "Bearer "+token)
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}
