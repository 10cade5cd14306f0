package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Roles the identity provider can put in a session token. Anonymous
// is what everyone without a session gets.
const (
	RoleCommittee = "committee"
	RoleTreasurer = "treasurer"
	RoleMember    = "member"
	RoleAnonymous = "anonymous"
)

const authContextKey = "authContext"

// AuthContext is the typed authorization state resolved once per
// request from the session token. Handlers read this instead of
// poking at raw claims.
type AuthContext struct {
	UserID string
	Email  string
	Roles  []string
}

func (a *AuthContext) HasRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(a.Roles, r) {
			return true
		}
	}

	return false
}

// GetAuth returns the request's AuthContext. Always non-nil once the
// auth middleware ran.
func GetAuth(c *gin.Context) *AuthContext {
	if v, ok := c.Get(authContextKey); ok {
		return v.(*AuthContext)
	}

	return &AuthContext{Roles: []string{RoleAnonymous}}
}

// NewAuthMiddleware parses the session cookie into an AuthContext.
// It never rejects on its own: a missing or invalid session just
// resolves to anonymous and the role check downstream decides.
func NewAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		anon := &AuthContext{Roles: []string{RoleAnonymous}}

		tokenStr, err := c.Cookie("session_token")
		if err != nil || tokenStr == "" {
			c.Set(authContextKey, anon)
			c.Next()
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
			}

			return []byte(viper.GetString("session.jwt_secret")), nil
		})
		if err != nil || !token.Valid {
			zap.L().Debug("Rejected session token", zap.Error(err))
			c.Set(authContextKey, anon)
			c.Next()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.Set(authContextKey, anon)
			c.Next()
			return
		}

		if exp, ok := claims["exp"].(float64); !ok || time.Now().Unix() >= int64(exp) {
			c.Set(authContextKey, anon)
			c.Next()
			return
		}

		auth := &AuthContext{Roles: []string{RoleMember}}

		if sub, ok := claims["sub"].(string); ok {
			auth.UserID = sub
		}
		if email, ok := claims["email"].(string); ok {
			auth.Email = email
		}

		if raw, ok := claims["roles"].([]any); ok {
			for _, r := range raw {
				if role, ok := r.(string); ok {
					auth.Roles = append(auth.Roles, role)
				}
			}
		}

		c.Set(authContextKey, auth)
		c.Next()
	}
}

// RequireRoles gates an endpoint behind at least one of the given
// roles. 401 without a session, 403 with one that lacks the role.
// Neither response says whether the resource behind it exists.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := GetAuth(c)

		if auth.HasRole(RoleAnonymous) || auth.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Not signed in",
			})
			return
		}

		if !auth.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			return
		}

		c.Next()
	}
}
