package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"trainingforms/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys populated by RequireAuth / ResolveAdmin.
const (
	ContextUserEmail = "userEmail"
	ContextIsAdmin   = "isAdmin"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// AdminLookup reports whether an email is on the approver list.
type AdminLookup func(ctx context.Context, email string) (bool, error)

// extractToken pulls the bearer token from the access_token cookie first,
// then the Authorization header.
func extractToken(c *gin.Context) (string, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr == nil && tokenString != "" {
		return tokenString, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth validates the identity provider's JWT and stores the caller's
// email in the request context. The token carries identity only; whether the
// caller is an admin comes from the admins table, not a claim.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		email, ok := claims["email"].(string)
		if !ok || email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Email not found in token"))
			return
		}

		c.Set(ContextUserEmail, strings.ToLower(email))
		c.Next()
	}
}

// --- Admin membership cache ---

type adminCacheEntry struct {
	isAdmin   bool
	expiresAt time.Time
}

var (
	adminCache    sync.Map // email -> adminCacheEntry
	adminCacheTTL = 5 * time.Minute
)

// ClearAdminCache drops cached membership for one email, or everyone when
// email is empty. Called after the approver list changes.
func ClearAdminCache(email string) {
	if email == "" {
		adminCache.Range(func(key, _ interface{}) bool {
			adminCache.Delete(key)
			return true
		})
		return
	}
	adminCache.Delete(strings.ToLower(email))
}

func cachedAdminCheck(ctx context.Context, email string, lookup AdminLookup) (bool, error) {
	if entry, ok := adminCache.Load(email); ok {
		cached := entry.(adminCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.isAdmin, nil
		}
	}

	isAdmin, err := lookup(ctx, email)
	if err != nil {
		return false, err
	}
	adminCache.Store(email, adminCacheEntry{
		isAdmin:   isAdmin,
		expiresAt: time.Now().Add(adminCacheTTL),
	})
	return isAdmin, nil
}

// ResolveAdmin runs after RequireAuth and records whether the caller is an
// admin without blocking non-admins. Handlers that allow submitter-or-admin
// access read the flag instead of re-querying.
func ResolveAdmin(lookup AdminLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(ContextUserEmail)
		isAdmin, err := cachedAdminCheck(c.Request.Context(), email, lookup)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
			return
		}
		c.Set(ContextIsAdmin, isAdmin)
		c.Next()
	}
}

// RequireAdmin runs after ResolveAdmin and rejects non-admins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: admin rights required"))
			return
		}
		c.Next()
	}
}
