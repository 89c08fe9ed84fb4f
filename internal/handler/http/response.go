// Package http 实现各端点的 Gin 处理器。
// 处理器负责编排 service 层：读取表单、调用业务逻辑、渲染模板或重定向。
package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/service"
)

// render 渲染一个页面模板，自动注入会话主题和待显示的闪现消息。
func render(c *gin.Context, sessions *service.SessionService, sess *domain.Session, template string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Theme"] = sess.Theme
	data["Flashes"] = sessions.PopFlashes(c.Request.Context(), sess)
	data["Identity"] = sess.Identity
	c.HTML(nethttp.StatusOK, template, data)
}

// redirect 发出一个跳转响应。
func redirect(c *gin.Context, location string) {
	c.Redirect(nethttp.StatusFound, location)
}
