package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Tavhidjon/RealEstate/internal/model"
	"github.com/Tavhidjon/RealEstate/internal/service"
	"github.com/Tavhidjon/RealEstate/pkg/response"
)

const (
	ctxKeyPrincipal   = "principal"
	ctxKeyAccessToken = "access_token"
)

// JWTAuth 认证中间件
// 校验 Bearer Token 并把主体放入 context；登出过的 Token 在这里被拒绝
func JWTAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		principal, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ctxKeyPrincipal, principal)
		c.Set(ctxKeyAccessToken, token)
		c.Next()
	}
}

// extractToken 从 Authorization header 提取 token
func extractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// GetPrincipal 从 context 获取认证主体
func GetPrincipal(c *gin.Context) model.Principal {
	v, exists := c.Get(ctxKeyPrincipal)
	if !exists {
		return model.Principal{}
	}
	return v.(model.Principal)
}

// GetAccessToken 从 context 获取当前请求的 AccessToken
func GetAccessToken(c *gin.Context) string {
	v, exists := c.Get(ctxKeyAccessToken)
	if !exists {
		return ""
	}
	return v.(string)
}
