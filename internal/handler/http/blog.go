package http

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ToucheSir/svblog/internal/middleware"
	"github.com/ToucheSir/svblog/internal/service"
)

// BlogHandler 封装博客页面、发帖、文件下载和删除操作的 HTTP 处理逻辑。
type BlogHandler struct {
	auth     *service.AuthService
	sessions *service.SessionService
	entries  *service.EntryService
	uploads  *service.UploadService
}

// NewBlogHandler 创建 BlogHandler 实例。
func NewBlogHandler(auth *service.AuthService, sessions *service.SessionService, entries *service.EntryService, uploads *service.UploadService) *BlogHandler {
	return &BlogHandler{auth: auth, sessions: sessions, entries: entries, uploads: uploads}
}

// entryView 是文章在模板中的展示形式。
// 正文入库前已经过 Urlify，这里按原样渲染生成的链接标记。
type entryView struct {
	ID     uint
	Owner  string
	Title  string
	Text   template.HTML
}

// Page 渲染某个用户的博客页：全部文章 (最新在前) 加全部上传文件。
// 会话主题同步为被浏览用户存储的主题。
func (h *BlogHandler) Page(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	name := c.Param("name")

	user, err := h.auth.FindUser(c.Request.Context(), name)
	if err != nil {
		flashError(c, h.sessions, sess, err)
		redirect(c, "/login/")
		return
	}

	if err := h.sessions.SyncTheme(c.Request.Context(), sess, user.Theme); err != nil {
		logrus.WithError(err).Warn("Handler.Page: failed to sync session theme")
	}

	entries, err := h.entries.List(c.Request.Context())
	if err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}
	uploads, err := h.uploads.List(c.Request.Context())
	if err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			ID:    e.ID,
			Owner: e.UserID,
			Title: e.Title,
			Text:  template.HTML(e.Text),
		})
	}

	render(c, h.sessions, sess, "entries.html", gin.H{
		"Username":       name,
		"Entries":        views,
		"Uploads":        uploads,
		"IsOwner":        sess.Identity == name,
		"PostingEnabled": sess.PostingEnabled,
	})
}

// PostEntry 处理发帖表单提交。
// 发帖要求以页面所属用户身份登录且发帖许可未被禁用。
func (h *BlogHandler) PostEntry(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	name := c.Param("name")

	if err := h.sessions.CheckOwnerAccess(c.Request.Context(), sess, name); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}
	if !sess.PostingEnabled {
		failToSafePage(c, h.sessions, sess, service.ErrPostingDisabled)
		return
	}

	title := c.PostForm("title")
	text := c.PostForm("text")
	if _, err := h.entries.Post(c.Request.Context(), name, title, text); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	h.sessions.Flash(c.Request.Context(), sess, "Post successful!")
	redirect(c, "/"+name+"/")
}

// ServeFile 把存储的上传文件回传给客户端。
// 路径已由 UploadService 限定在存储目录内；文件不存在时返回 404。
func (h *BlogHandler) ServeFile(c *gin.Context) {
	filename := c.Param("filename")
	c.File(h.uploads.Path(filename))
}

// Delete 分发删除请求：post_{id} 形式的目标删除文章，其余按上传文件名处理。
// 非所有者的删除一律表现为目标不存在。
func (h *BlogHandler) Delete(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	name := c.Param("name")
	target := c.Param("target")

	if err := h.sessions.CheckOwnerAccess(c.Request.Context(), sess, name); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	if id, ok := strings.CutPrefix(target, "post_"); ok {
		h.deleteEntry(c, name, id)
		return
	}
	h.deleteUpload(c, name, target)
}

func (h *BlogHandler) deleteEntry(c *gin.Context, name, rawID string) {
	sess := middleware.CurrentSession(c)

	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		failToSafePage(c, h.sessions, sess, service.ErrEntryNotFound)
		return
	}
	if err := h.entries.Delete(c.Request.Context(), name, uint(id)); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	h.sessions.Flash(c.Request.Context(), sess, "Entry deleted.")
	redirect(c, "/"+name+"/")
}

func (h *BlogHandler) deleteUpload(c *gin.Context, name, filename string) {
	sess := middleware.CurrentSession(c)

	if err := h.uploads.Delete(c.Request.Context(), name, filename); err != nil {
		failToSafePage(c, h.sessions, sess, err)
		return
	}

	h.sessions.Flash(c.Request.Context(), sess, "File deleted.")
	redirect(c, "/"+name+"/")
}
