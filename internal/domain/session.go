package domain

// Session 表示一个客户端会话的状态。
// 客户端只持有不透明的会话 ID (cookie)，状态本身保存在服务端 (Redis)。
type Session struct {
	ID             string // 不透明会话标识符 (UUID)
	Identity       string // 已登录的用户名；未登录时为空字符串
	PostingEnabled bool   // 登录时从用户记录快照的发帖许可
	Theme          string // 当前会话使用的显示主题
}

// Authenticated 报告该会话是否已登录。
func (s *Session) Authenticated() bool {
	return s.Identity != ""
}
