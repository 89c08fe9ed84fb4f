package http

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/service"
)

// errorMessage 把业务错误映射为用户可见的提示文本。
// 未识别的错误一律显示通用提示，绝不暴露内部细节。
func errorMessage(err error) string {
	var notAuthorized *service.NotAuthorizedError
	switch {
	case errors.As(err, &notAuthorized):
		return fmt.Sprintf("Must be logged in as %s to access this page.", notAuthorized.Name)
	case errors.Is(err, service.ErrUserNotFound):
		return "User does not exist."
	case errors.Is(err, service.ErrWrongPassword):
		return "Invalid password."
	case errors.Is(err, service.ErrUsernameTaken):
		return "Username is already taken."
	case errors.Is(err, service.ErrInvalidUsername):
		return "Username may only contain letters, numbers and underscores."
	case errors.Is(err, service.ErrPasswordRequired):
		return "Password must not be empty."
	case errors.Is(err, service.ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, service.ErrPostingDisabled):
		return "Access denied."
	case errors.Is(err, service.ErrInvalidFile):
		return "Invalid filename or file type."
	case errors.Is(err, service.ErrInvalidTheme):
		return "Invalid theme."
	case errors.Is(err, service.ErrEntryNotFound):
		return "Specified entry does not exist."
	case errors.Is(err, service.ErrUploadNotFound):
		return "Specified file does not exist."
	default:
		logrus.WithError(err).Error("Unhandled service error reached handler")
		return "An unexpected error occurred."
	}
}

// flashError 把业务错误作为闪现消息记入会话。
func flashError(c *gin.Context, sessions *service.SessionService, sess *domain.Session, err error) {
	sessions.Flash(c.Request.Context(), sess, "Error: "+errorMessage(err))
}

// failToSafePage 是所有变更操作的错误恢复路径：
// 闪现错误消息，然后重定向到安全页面——未登录回登录页，已登录回自己的博客页。
// 任何业务错误都不会导致请求硬失败。
func failToSafePage(c *gin.Context, sessions *service.SessionService, sess *domain.Session, err error) {
	flashError(c, sessions, sess, err)
	if sess.Authenticated() {
		redirect(c, "/"+sess.Identity+"/")
		return
	}
	redirect(c, "/login/")
}
