// Package redisstate 提供基于 Redis 的会话状态存储。
package redisstate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ToucheSir/svblog/internal/domain"
	"github.com/ToucheSir/svblog/internal/repository"
)

// RedisSessionRepository 是 SessionRepository 接口的 Redis 实现。
// 会话状态保存为 hash，闪现消息保存为 list，两者共享同一过期时间。
type RedisSessionRepository struct {
	client    *redis.Client
	keyPrefix string        // Redis key 前缀，方便多应用共用实例
	ttl       time.Duration // 会话过期时间，每次写入时刷新
}

// NewRedisSessionRepository 创建 RedisSessionRepository 实例
func NewRedisSessionRepository(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisSessionRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "sv:"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionRepository{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (r *RedisSessionRepository) sessionKey(id string) string {
	return r.keyPrefix + "session:" + id
}

func (r *RedisSessionRepository) flashKey(id string) string {
	return r.keyPrefix + "flash:" + id
}

// Find 实现根据会话 ID 查找会话状态
func (r *RedisSessionRepository) Find(ctx context.Context, id string) (*domain.Session, error) {
	fields, err := r.client.HGetAll(ctx, r.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get session '%s': %w", id, err)
	}
	if len(fields) == 0 {
		// HGetAll 对不存在的 key 返回空 map 而不是错误
		return nil, repository.ErrSessionNotFound
	}

	postingEnabled, _ := strconv.ParseBool(fields["posting_enabled"])
	return &domain.Session{
		ID:             id,
		Identity:       fields["identity"],
		PostingEnabled: postingEnabled,
		Theme:          fields["theme"],
	}, nil
}

// Save 实现写入会话状态并刷新过期时间
func (r *RedisSessionRepository) Save(ctx context.Context, sess *domain.Session) error {
	key := r.sessionKey(sess.ID)

	// HSet 与 Expire 通过 Pipeline 一次往返完成
	pipe := r.client.Pipeline()
	pipe.HSet(ctx, key,
		"identity", sess.Identity,
		"posting_enabled", strconv.FormatBool(sess.PostingEnabled),
		"theme", sess.Theme,
	)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: save session '%s': %w", sess.ID, err)
	}
	return nil
}

// Delete 实现删除会话状态及其闪现消息
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.sessionKey(id), r.flashKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: delete session '%s': %w", id, err)
	}
	return nil
}

// PushFlash 实现追加一条闪现消息
func (r *RedisSessionRepository) PushFlash(ctx context.Context, id string, message string) error {
	key := r.flashKey(id)

	pipe := r.client.Pipeline()
	pipe.RPush(ctx, key, message)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: push flash for session '%s': %w", id, err)
	}
	return nil
}

// PopFlashes 实现取出并清空全部闪现消息
func (r *RedisSessionRepository) PopFlashes(ctx context.Context, id string) ([]string, error) {
	key := r.flashKey(id)

	// 读取和删除之间不要求原子性：同一会话的请求是串行的
	messages, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read flashes for session '%s': %w", id, err)
	}
	if len(messages) == 0 {
		return nil, nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("redis: clear flashes for session '%s': %w", id, err)
	}
	return messages, nil
}
