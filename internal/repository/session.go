package repository

import (
	"context"

	"github.com/ToucheSir/svblog/internal/domain"
)

// SessionRepository 定义了会话状态和闪现消息的存储操作。
// 会话以不透明 ID 为键，状态完全保存在服务端。
type SessionRepository interface {
	// Find 根据会话 ID 查找会话状态。
	// 会话不存在 (或已过期) 时返回 ErrSessionNotFound。
	Find(ctx context.Context, id string) (*domain.Session, error)

	// Save 写入会话状态并刷新过期时间。
	Save(ctx context.Context, sess *domain.Session) error

	// Delete 删除会话状态及其未消费的闪现消息。
	Delete(ctx context.Context, id string) error

	// PushFlash 向会话的闪现消息队列追加一条消息。
	PushFlash(ctx context.Context, id string, message string) error

	// PopFlashes 取出并清空会话的全部闪现消息。
	PopFlashes(ctx context.Context, id string) ([]string, error)
}
