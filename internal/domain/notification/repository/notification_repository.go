package repository

import (
	"context"
	"fmt"

	"social_moderation/internal/domain/notification/model"
	"social_moderation/internal/pkg/remote"
	"social_moderation/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// NotificationRepository 通知由远端产生
type NotificationRepository interface {
	List(ctx context.Context, token, userID string) ([]model.Notification, error)
}

type notificationRepository struct {
	client *remote.Client
}

func NewNotificationRepository(client *remote.Client) NotificationRepository {
	return &notificationRepository{client: client}
}

func (r *notificationRepository) List(ctx context.Context, token, userID string) ([]model.Notification, error) {
	raw, err := r.client.GetNotifications(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Notification, 0, len(raw))
	for _, n := range raw {
		if n != nil {
			out = append(out, ToNotification(userID, n))
		}
	}
	return out, nil
}

func ToNotification(userID string, n *remote.Notification) model.Notification {
	return model.Notification{
		ID:        n.ID,
		UserID:    userID,
		Kind:      model.ParseKind(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Seen,
		CreatedAt: utils.ParseTimestamp(n.CreatedAt),
		ActionURL: n.ActionURL,
	}
}

// ReadStore 本地已读集合，只增不减
type ReadStore interface {
	ReadIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	MarkRead(ctx context.Context, userID string, ids ...string) error
}

type redisReadStore struct {
	client *redis.Client
	prefix string
}

func NewRedisReadStore(client *redis.Client) ReadStore {
	return &redisReadStore{client: client, prefix: "social-moderation:notifications:read:"}
}

func (s *redisReadStore) key(userID string) string {
	return s.prefix + userID
}

func (s *redisReadStore) ReadIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	ids, err := s.client.SMembers(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load read set: %w", err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (s *redisReadStore) MarkRead(ctx context.Context, userID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return s.client.SAdd(ctx, s.key(userID), members...).Err()
}
