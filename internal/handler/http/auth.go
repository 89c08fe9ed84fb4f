package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/middleware"
	"github.com/ToucheSir/svblog/internal/service"
)

// AuthHandler 封装登录、注销和注册相关的 HTTP 处理逻辑。
type AuthHandler struct {
	auth     *service.AuthService
	sessions *service.SessionService
}

// NewAuthHandler 创建 AuthHandler 实例。
func NewAuthHandler(auth *service.AuthService, sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// ShowLogin 渲染登录页。首页默认重定向到这里。
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	render(c, h.sessions, sess, "login.html", nil)
}

// Login 处理登录表单提交。
// 成功后建立会话并跳转到该用户的博客页；失败闪现原因后回到登录页。
func (h *AuthHandler) Login(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.auth.Login(c.Request.Context(), username, password)
	if err != nil {
		// 登录页的提示沿用历史文案："Invalid username." / "Invalid password."
		if errors.Is(err, service.ErrUserNotFound) {
			h.sessions.Flash(c.Request.Context(), sess, "Error: Invalid username.")
		} else {
			flashError(c, h.sessions, sess, err)
		}
		redirect(c, "/login/")
		return
	}

	if err := h.sessions.Establish(c.Request.Context(), sess, user); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	h.sessions.Flash(c.Request.Context(), sess, "Successfully logged in.")
	redirect(c, "/"+user.Name+"/")
}

// Logout 注销当前会话并回到登录页。
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	if err := h.sessions.Clear(c.Request.Context(), sess); err != nil {
		logrus.WithError(err).Error("Handler.Logout: failed to clear session")
	}

	h.sessions.Flash(c.Request.Context(), sess, "Successfully logged out.")
	redirect(c, "/login/")
}

// ShowCreate 渲染注册页。
func (h *AuthHandler) ShowCreate(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	render(c, h.sessions, sess, "create.html", nil)
}

// Create 处理注册表单提交。
// 验证失败时不创建任何记录；成功后直接登录新账号。
func (h *AuthHandler) Create(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	username := c.PostForm("username")
	password := c.PostForm("password-a")
	confirm := c.PostForm("password-b")

	user, err := h.auth.Register(c.Request.Context(), username, password, confirm)
	if err != nil {
		flashError(c, h.sessions, sess, err)
		redirect(c, "/create/")
		return
	}

	if err := h.sessions.Establish(c.Request.Context(), sess, user); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	h.sessions.Flash(c.Request.Context(), sess, "Account created!")
	redirect(c, "/"+user.Name+"/")
}
