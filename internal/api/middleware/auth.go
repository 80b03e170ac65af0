package middleware

import (
	"Motorway/internal/pkg/logger"
	"Motorway/internal/pkg/response"
	"Motorway/internal/pkg/security"
	"context"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 负责验证 JWT 并将用户身份信息注入 Context
func AuthMiddleware(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := security.ExtractBearer(c.GetHeader("Authorization"))
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set(logger.UserIDKey, claims.UserID)
		newCtx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}
