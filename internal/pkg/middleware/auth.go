package middleware

import (
	"net/http"

	"social_moderation/internal/pkg/session"
	"social_moderation/pkg/response"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// SessionMiddleware 从 Cookie 解析会话，把身份注入 gin 上下文和 request context
// 无 Cookie 或 Cookie 无效时注入匿名身份，不拦截请求
func SessionMiddleware(manager *session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)
		id := manager.Resolve(c.Request.Context(), token)

		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(session.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

// CurrentIdentity 当前请求的身份
func CurrentIdentity(c *gin.Context) session.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(session.Identity); ok {
			return id
		}
	}
	return session.FromContext(c.Request.Context())
}

// AuthMiddleware 要求已登录
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).Authenticated {
			response.Error(c, http.StatusUnauthorized, response.ErrUnauthenticated, "Please log in to continue")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if !id.Authenticated {
			response.Error(c, http.StatusUnauthorized, response.ErrUnauthenticated, "Please log in to continue")
			c.Abort()
			return
		}

		if !id.IsAdmin() {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Admin permission required")
			c.Abort()
			return
		}

		c.Next()
	}
}
