package service

import (
	"context"

	"social_moderation/internal/domain/post/model"
	"social_moderation/internal/pkg/push"
	"social_moderation/internal/pkg/realtime"
	"social_moderation/internal/pkg/worker"
)

// DecisionNotifier 审核结果通知作者
type DecisionNotifier interface {
	Notify(ctx context.Context, post model.Post)
}

type decisionNotifier struct {
	pool *worker.WorkerPool
	hub  *realtime.Hub
}

// NewDecisionNotifier pool、hub 均可为 nil
func NewDecisionNotifier(pool *worker.WorkerPool, hub *realtime.Hub) DecisionNotifier {
	return &decisionNotifier{pool: pool, hub: hub}
}

func (n *decisionNotifier) Notify(_ context.Context, post model.Post) {
	if post.Author.ID == "" {
		return
	}
	msg := DecisionMessage(post)
	if n.pool != nil {
		n.pool.AddTask(msg)
	}
	if n.hub != nil {
		n.hub.SendToUser(post.Author.ID, realtime.TypeModerationResult, msg.Extras)
	}
}

// DecisionMessage 推送内容
func DecisionMessage(post model.Post) push.Message {
	msg := push.Message{
		AccountID: post.Author.ID,
		Extras: map[string]string{
			"postId": post.ID,
			"status": string(post.Status),
		},
	}
	switch post.Status {
	case model.StatusApproved:
		msg.Title = "Post approved"
		msg.Body = "Your post has been approved and is now visible to everyone"
	case model.StatusRejected:
		msg.Title = "Post rejected"
		msg.Body = "Your post was rejected: " + post.RejectionReason
		msg.Extras["reason"] = post.RejectionReason
	}
	return msg
}
