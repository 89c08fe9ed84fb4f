package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/middleware"
	"github.com/ToucheSir/svblog/internal/service"
)

// UploadHandler 封装文件上传相关的 HTTP 处理逻辑。
type UploadHandler struct {
	sessions *service.SessionService
	uploads  *service.UploadService
}

// NewUploadHandler 创建 UploadHandler 实例。
func NewUploadHandler(sessions *service.SessionService, uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{sessions: sessions, uploads: uploads}
}

// ShowForm 渲染上传表单。
// 发帖许可被禁用或未以页面所属用户登录时不放行。
func (h *UploadHandler) ShowForm(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	name := c.Param("name")

	if err := h.checkUploadAccess(c, name); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	render(c, h.sessions, sess, "upload.html", gin.H{"Username": name})
}

// Upload 接收一个上传文件。
// 验证扩展名、清洗文件名、解决同名冲突后写入存储并登记记录。
func (h *UploadHandler) Upload(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	name := c.Param("name")

	if err := h.checkUploadAccess(c, name); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		flashError(c, h.sessions, sess, service.ErrInvalidFile)
		redirect(c, "/"+name+"/upload/")
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("Handler.Upload: failed to open multipart file")
		failToSafePage(c, h.sessions, sess, service.ErrInternalServer)
		return
	}
	defer src.Close()

	if _, err := h.uploads.Store(c.Request.Context(), name, fileHeader.Filename, src); err != nil {
		// 验证失败回到上传表单重试，其余错误走通用恢复路径
		if errors.Is(err, service.ErrInvalidFile) {
			flashError(c, h.sessions, sess, err)
			redirect(c, "/"+name+"/upload/")
			return
		}
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	h.sessions.Flash(c.Request.Context(), sess, "File was uploaded successfully.")
	redirect(c, "/"+name+"/")
}

// checkUploadAccess 组合上传操作的两道闸门：发帖许可和所有者身份。
func (h *UploadHandler) checkUploadAccess(c *gin.Context, name string) error {
	sess := middleware.CurrentSession(c)

	// 许可检查在前：被禁用的账号即使是本人也不能上传
	if sess.Authenticated() && !sess.PostingEnabled {
		return service.ErrPostingDisabled
	}
	return h.sessions.CheckOwnerAccess(c.Request.Context(), sess, name)
}
