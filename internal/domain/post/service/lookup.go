package service

import (
	"context"
	"errors"
	"fmt"

	"social_moderation/internal/domain/post/model"
	"social_moderation/internal/domain/post/repository"
	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/session"
)

// PostLookup 按 ID 解析单个帖子：全量快照 + 台账结论
type PostLookup struct {
	posts  repository.PostRepository
	ledger repository.ModerationRepository
}

func NewPostLookup(posts repository.PostRepository, ledger repository.ModerationRepository) *PostLookup {
	return &PostLookup{posts: posts, ledger: ledger}
}

// Find 不检查可见性，当前状态以台账结论为准，否则取远端状态
func (l *PostLookup) Find(ctx context.Context, token, postID string) (*model.Post, error) {
	posts, err := l.posts.List(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID != postID {
			continue
		}
		post := posts[i]
		rec, err := l.ledger.GetByPostID(ctx, postID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		post.ApplyRecord(rec)
		return &post, nil
	}
	return nil, fmt.Errorf("post %s: %w", postID, apperr.ErrNotFound)
}

// Invalidate 丢弃全量快照，评论等写操作后调用
func (l *PostLookup) Invalidate(ctx context.Context) {
	l.posts.Invalidate(ctx)
}

// Visible 查看者无权查看时与不存在一样返回 ErrNotFound
func (l *PostLookup) Visible(ctx context.Context, viewer session.Identity, postID string) (*model.Post, error) {
	post, err := l.Find(ctx, viewer.RemoteToken, postID)
	if err != nil {
		return nil, err
	}
	if !model.Visible(*post, viewer) {
		return nil, fmt.Errorf("post %s: %w", postID, apperr.ErrNotFound)
	}
	redacted := model.Redact(*post, viewer)
	return &redacted, nil
}
