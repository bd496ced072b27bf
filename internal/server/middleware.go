package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/mowind/txinsight-go/internal/errors"
)

// RequestIDMiddleware 为每个请求分配请求ID
//
// 客户端通过 X-Request-ID 传入的值会被沿用，并回写到响应头。
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := apperrors.NewContextWithRequestID(c.Request.Context(), c.GetHeader(apperrors.RequestIDHeader))
		c.Request = c.Request.WithContext(ctx)

		requestID := apperrors.GetRequestID(ctx)
		c.Set(string(apperrors.RequestIDKey), requestID)
		c.Header(apperrors.RequestIDHeader, requestID)
		c.Next()
	}
}

// AuthMiddleware authenticates requests using Bearer tokens or X-API-Key headers.
//
// Paths starting with a whitelist entry skip authentication.
func AuthMiddleware(enabled bool, secret string, whitelist []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled || isWhitelisted(c.Request.URL.Path, whitelist) {
			c.Next()
			return
		}

		if token, ok := credential(c); ok && subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1 {
			c.Next()
			return
		}

		// 不区分失败原因
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
			"code":  http.StatusUnauthorized,
		})
	}
}

func isWhitelisted(path string, whitelist []string) bool {
	for _, prefix := range whitelist {
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

// credential 提取请求携带的凭证，Authorization 头优先
func credential(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || scheme != "Bearer" {
			return "", false
		}
		return token, true
	}
	if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
		return apiKey, true
	}
	return "", false
}
