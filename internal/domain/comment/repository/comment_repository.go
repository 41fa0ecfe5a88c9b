package repository

import (
	"context"

	"social_moderation/internal/domain/comment/model"
	userRepo "social_moderation/internal/domain/user/repository"
	"social_moderation/internal/pkg/remote"
	"social_moderation/pkg/utils"
)

// CommentRepository 评论由远端保存；远端没有按帖子查询评论的接口，列表随帖子一起返回
type CommentRepository interface {
	Add(ctx context.Context, token, postID, userID, content string, kind model.Kind) (*model.Comment, error)
}

type commentRepository struct {
	client *remote.Client
}

func NewCommentRepository(client *remote.Client) CommentRepository {
	return &commentRepository{client: client}
}

func (r *commentRepository) Add(ctx context.Context, token, postID, userID, content string, kind model.Kind) (*model.Comment, error) {
	raw, err := r.client.AddComment(ctx, token, postID, userID, content, string(kind))
	if err != nil {
		return nil, err
	}
	c := ToComment(postID, raw)
	return &c, nil
}

// ToComment 语音评论的 content 字段存放音频地址
func ToComment(postID string, c *remote.Comment) model.Comment {
	out := model.Comment{
		ID:        c.ID,
		PostID:    postID,
		Author:    userRepo.ToUser(c.User),
		CreatedAt: utils.ParseTimestamp(c.CreatedAt),
	}
	if model.Kind(c.Type) == model.KindAudio {
		out.AudioURL = c.Content
	} else {
		out.Content = c.Content
	}
	out.Normalize()
	return out
}
