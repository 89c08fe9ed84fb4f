package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ToucheSir/svblog/internal/middleware"
	"github.com/ToucheSir/svblog/internal/service"
)

// ThemeHandler 封装主题查看和变更的 HTTP 处理逻辑。
type ThemeHandler struct {
	auth     *service.AuthService
	sessions *service.SessionService
}

// NewThemeHandler 创建 ThemeHandler 实例。
func NewThemeHandler(auth *service.AuthService, sessions *service.SessionService) *ThemeHandler {
	return &ThemeHandler{auth: auth, sessions: sessions}
}

// Show 渲染主题选择页。
func (h *ThemeHandler) Show(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	name := c.Param("name")

	if err := h.sessions.CheckOwnerAccess(c.Request.Context(), sess, name); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	render(c, h.sessions, sess, "theme.html", gin.H{
		"Username": name,
		"Themes":   service.AllowedThemes,
	})
}

// Change 处理主题变更：持久化到用户记录，同时更新当前会话的取值。
func (h *ThemeHandler) Change(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	name := c.Param("name")

	if err := h.sessions.CheckOwnerAccess(c.Request.Context(), sess, name); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	theme := c.PostForm("theme")
	if err := h.auth.UpdateTheme(c.Request.Context(), name, theme); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}
	if err := h.sessions.SyncTheme(c.Request.Context(), sess, theme); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	h.sessions.Flash(c.Request.Context(), sess, "Theme updated.")
	redirect(c, "/"+name+"/theme/")
}
