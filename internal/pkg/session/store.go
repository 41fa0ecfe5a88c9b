package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	userModel "social_moderation/internal/domain/user/model"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

// Store 会话存储
type Store interface {
	Save(ctx context.Context, id string, rec Record, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
}

// Record 持久化的会话内容
type Record struct {
	User        userModel.User `json:"user"`
	RemoteToken string         `json:"token"`
	CreatedAt   time.Time      `json:"createdAt"`
}

type redisStore struct {
	rdb *redis.Client
}

// NewRedisStore 基于 Redis 的会话存储，key 自带 TTL
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *redisStore) Save(ctx context.Context, id string, rec Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKey(id), data, ttl).Err()
}

func (s *redisStore) Load(ctx context.Context, id string) (*Record, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &rec, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}
