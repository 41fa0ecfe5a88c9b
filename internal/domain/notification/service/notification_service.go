package service

import (
	"context"
	"fmt"
	"time"

	"social_moderation/internal/domain/notification/model"
	"social_moderation/internal/domain/notification/repository"
	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/session"

	"go.uber.org/zap"
)

// NotificationService 通知列表与已读标记
type NotificationService interface {
	List(ctx context.Context, viewer session.Identity) (*model.Inbox, error)
	MarkRead(ctx context.Context, viewer session.Identity, id string) error
	// MarkAllRead 返回本次新标记的数量
	MarkAllRead(ctx context.Context, viewer session.Identity) (int, error)
}

type notificationService struct {
	repo  repository.NotificationRepository
	reads repository.ReadStore
	log   *zap.Logger
	now   func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, reads repository.ReadStore, log *zap.Logger) NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &notificationService{repo: repo, reads: reads, log: log, now: time.Now}
}

func (s *notificationService) List(ctx context.Context, viewer session.Identity) (*model.Inbox, error) {
	items, err := s.load(ctx, viewer)
	if err != nil {
		return nil, err
	}
	inbox := model.NewInbox(items, s.now())
	return &inbox, nil
}

// load 远端已读或本地已读都算已读
func (s *notificationService) load(ctx context.Context, viewer session.Identity) ([]model.Notification, error) {
	if !viewer.Authenticated {
		return nil, apperr.ErrUnauthenticated
	}
	items, err := s.repo.List(ctx, viewer.RemoteToken, viewer.User.ID)
	if err != nil {
		return nil, err
	}
	read, err := s.reads.ReadIDs(ctx, viewer.User.ID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if _, ok := read[items[i].ID]; ok {
			items[i].Read = true
		}
	}
	return items, nil
}

func (s *notificationService) MarkRead(ctx context.Context, viewer session.Identity, id string) error {
	items, err := s.load(ctx, viewer)
	if err != nil {
		return err
	}
	for _, n := range items {
		if n.ID != id {
			continue
		}
		if n.Read {
			return nil
		}
		return s.reads.MarkRead(ctx, viewer.User.ID, id)
	}
	return fmt.Errorf("notification %s: %w", id, apperr.ErrNotFound)
}

func (s *notificationService) MarkAllRead(ctx context.Context, viewer session.Identity) (int, error) {
	items, err := s.load(ctx, viewer)
	if err != nil {
		return 0, err
	}
	var unread []string
	for _, n := range items {
		if !n.Read {
			unread = append(unread, n.ID)
		}
	}
	if err := s.reads.MarkRead(ctx, viewer.User.ID, unread...); err != nil {
		return 0, err
	}
	s.log.Debug("notifications marked read", zap.String("user_id", viewer.User.ID), zap.Int("count", len(unread)))
	return len(unread), nil
}
