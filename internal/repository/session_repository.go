package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionRepository 维护用户当前进行中的梦境记录指针。
// 对话历史本身存放在记录上（MySQL），Redis 只保存活跃会话的映射。
type SessionRepository interface {
	GetCurrentRecordID(ctx context.Context, userID uint) (string, error)
	SetCurrentRecordID(ctx context.Context, userID uint, recordID string) error
	ClearCurrentRecordID(ctx context.Context, userID uint) error
}

type redisSessionRepository struct {
	redisClient *redis.Client
}

// NewSessionRepository 创建一个新的 SessionRepository 实例。
func NewSessionRepository(redisClient *redis.Client) SessionRepository {
	return &redisSessionRepository{redisClient: redisClient}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("user:%d:current_dream", userID)
}

// GetCurrentRecordID 返回用户当前进行中的记录 ID，没有则返回空串。
func (r *redisSessionRepository) GetCurrentRecordID(ctx context.Context, userID uint) (string, error) {
	recordID, err := r.redisClient.Get(ctx, sessionKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get current dream id: %w", err)
	}
	return recordID, nil
}

// SetCurrentRecordID 记录用户当前进行中的记录 ID。
func (r *redisSessionRepository) SetCurrentRecordID(ctx context.Context, userID uint, recordID string) error {
	return r.redisClient.Set(ctx, sessionKey(userID), recordID, 7*24*time.Hour).Err()
}

// ClearCurrentRecordID 清除活跃会话指针（记录完成或被删除时调用）。
func (r *redisSessionRepository) ClearCurrentRecordID(ctx context.Context, userID uint) error {
	return r.redisClient.Del(ctx, sessionKey(userID)).Err()
}
