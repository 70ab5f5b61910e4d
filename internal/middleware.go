package internal

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const cookieName = "arena_token"

type claims struct {
	UserID int    `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func parseToken(tokenStr, secret string) (*claims, bool) {
	tok, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, false
	}
	cl, ok := tok.Claims.(*claims)
	return cl, ok
}

func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}

		cl, ok := parseToken(tokenStr, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
			return
		}

		c.Set("uid", cl.UserID)
		c.Set("role", cl.Role)
		c.Next()
	}
}

// MaybeAuth resolves the session when a valid cookie is present but never
// rejects. Registration endpoints are public; an authenticated visitor just
// gets their user id attached to the inscription row.
func MaybeAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, err := c.Cookie(cookieName); err == nil && tokenStr != "" {
			if cl, ok := parseToken(tokenStr, secret); ok {
				c.Set("uid", cl.UserID)
				c.Set("role", cl.Role)
			}
		}
		c.Next()
	}
}

// RequireStaff allow-lists the two roles with attendance/dashboard
// capability. Anything else, including an unknown role, is rejected.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != "admin" && role != "coordinador" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func uid(c *gin.Context) int {
	v, _ := c.Get("uid")
	id, _ := v.(int)
	return id
}

// maybeUID returns the session user id when one was resolved by MaybeAuth.
func maybeUID(c *gin.Context) *int {
	v, ok := c.Get("uid")
	if !ok {
		return nil
	}
	id, ok := v.(int)
	if !ok {
		return nil
	}
	return &id
}

// RequestLogger logs every request with path, status and latency.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
		)
	}
}
