// Package middleware 提供 HTTP 中间件
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yuewen2025/homestay-backend/internal/common/jwt"
	"github.com/yuewen2025/homestay-backend/internal/common/response"
)

// RequireRoles 要求指定角色
func RequireRoles(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if _, ok := roleSet[role]; !ok {
			response.Forbidden(c, "权限不足")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireHost 要求房东角色
func RequireHost() gin.HandlerFunc {
	return RequireRoles(jwt.RoleHost)
}

// RequireGuest 要求房客角色
func RequireGuest() gin.HandlerFunc {
	return RequireRoles(jwt.RoleGuest)
}
