package middleware

import (
	"net/http"
	"strings"

	"karmafeed/pkg/response"
	"karmafeed/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ContextUsernameKey 认证通过后用户名在 gin.Context 中的 key
const ContextUsernameKey = "username"

// AuthMiddleware JWT认证中间件，凭证缺失或无效时返回 401
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Authorization header is required")
			c.Abort()
			return
		}

		username, ok := parseAuthorization(authHeader)
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUsernameKey, username)
		c.Next()
	}
}

// OptionalAuth 可选认证：带有效凭证时写入用户名，否则按匿名访问继续
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if username, ok := parseAuthorization(c.GetHeader("Authorization")); ok {
			c.Set(ContextUsernameKey, username)
		}
		c.Next()
	}
}

// GetUsername 获取当前登录用户名，匿名时返回空串
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}

// parseAuthorization 支持 "Bearer <token>" 与 "Token <token>" 两种格式
func parseAuthorization(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "Token") {
		return "", false
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return "", false
	}
	return claims.Username, true
}
