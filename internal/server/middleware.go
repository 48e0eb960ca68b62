package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	apperrors "github.com/mowind/txinsight-go/internal/errors"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware 读取或生成请求 ID，写入请求上下文和响应头
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, requestID := apperrors.EnsureRequestID(c.Request.Context(), c.GetHeader(RequestIDHeader))

		c.Request = c.Request.WithContext(ctx)
		c.Set(string(apperrors.RequestIDKey), requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// CORSMiddleware 允许跨域访问，预检请求在认证之前直接应答
func CORSMiddleware() gin.HandlerFunc {
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})

	return func(c *gin.Context) {
		handler.HandlerFunc(c.Writer, c.Request)

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// AuthMiddleware authenticates requests using Bearer tokens or X-API-Key headers.
func AuthMiddleware(enabled bool, secret string, whitelist []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled || isWhitelisted(c.Request.URL.Path, whitelist) {
			c.Next()
			return
		}

		// Bearer token takes precedence over X-API-Key
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" && secretMatches(parts[1], secret) {
				c.Next()
				return
			}
			abortUnauthorized(c)
			return
		}

		if apiKey := c.GetHeader("X-API-Key"); apiKey != "" && secretMatches(apiKey, secret) {
			c.Next()
			return
		}

		abortUnauthorized(c)
	}
}

// isWhitelisted reports whether path matches a whitelisted prefix. "/" only matches the root itself.
func isWhitelisted(path string, whitelist []string) bool {
	for _, prefix := range whitelist {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		if prefix == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// secretMatches compares in constant time.
func secretMatches(got, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}

// abortUnauthorized writes a generic failure so callers learn nothing about which check failed.
func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": "authentication failed",
		"code":  http.StatusUnauthorized,
	})
}
