package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ToucheSir/svblog/internal/middleware"
	"github.com/ToucheSir/svblog/internal/service"
)

// AdminHandler 封装管理员专属页面的 HTTP 处理逻辑。
type AdminHandler struct {
	auth     *service.AuthService
	sessions *service.SessionService
}

// NewAdminHandler 创建 AdminHandler 实例。
func NewAdminHandler(auth *service.AuthService, sessions *service.SessionService) *AdminHandler {
	return &AdminHandler{auth: auth, sessions: sessions}
}

// ListUsers 渲染全部用户的总览页。
// 只有管理员身份可以访问；没有其他提权路径。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	if err := h.sessions.CheckAdminAccess(sess); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	users, err := h.auth.ListUsers(c.Request.Context())
	if err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	render(c, h.sessions, sess, "all.html", gin.H{"Users": users})
}
