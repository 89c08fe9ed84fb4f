// Package middleware 提供 Gin 中间件：会话加载、缓存控制和速率限制。
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/service"
)

// sessionCookie 是携带不透明会话 ID 的 cookie 名称。
const sessionCookie = "session_id"

// sessionContextKey 是会话对象在 Gin Context 中的存放键。
const sessionContextKey = "session"

// Session 返回一个 Gin 中间件，为每个请求加载 (必要时新建) 会话状态。
// 客户端只见到不透明的会话 ID；注销后该 ID 对应的身份立即失效。
func Session(sessions *service.SessionService) gin.HandlerFunc {
	if sessions == nil {
		panic("SessionService cannot be nil for Session middleware")
	}

	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)

		sess, err := sessions.Load(c.Request.Context(), id)
		if err != nil {
			// 会话存储不可用时无法安全地处理任何请求
			logrus.WithError(err).Error("Session middleware: failed to load session")
			c.String(http.StatusInternalServerError, "Service temporarily unavailable.")
			c.Abort()
			return
		}

		if sess.ID != id {
			// 新建的会话：把 ID 下发给客户端 (HttpOnly，会话级生存期)
			c.SetCookie(sessionCookie, sess.ID, 0, "/", "", false, true)
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// CurrentSession 从 Gin Context 取出由 Session 中间件放入的会话对象。
func CurrentSession(c *gin.Context) *domain.Session {
	sess, ok := c.Get(sessionContextKey)
	if !ok {
		panic("Session middleware not installed")
	}
	return sess.(*domain.Session)
}
