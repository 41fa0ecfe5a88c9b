package service

import (
	"context"
	"testing"
	"time"

	"social_moderation/internal/domain/post/model"
	userModel "social_moderation/internal/domain/user/model"
	"social_moderation/internal/pkg/apperr"
	"social_moderation/internal/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func viewer(id string, role userModel.Role) session.Identity {
	return session.Identity{
		SessionID:     "s-" + id,
		Authenticated: true,
		RemoteToken:   "token-" + id,
		User:          userModel.User{ID: id, Role: role},
	}
}

func TestPostLookup_Visible(t *testing.T) {
	ctx := context.Background()
	reviewed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	// 远端把 p2 报告为已通过，台账中已拒绝
	remote := []model.Post{
		{ID: "p1", Status: model.StatusPending, Author: userModel.User{ID: "u2"}},
		{ID: "p2", Status: model.StatusApproved, Author: userModel.User{ID: "u2"}},
		{ID: "p3", Status: model.StatusApproved, Author: userModel.User{ID: "u9"}},
	}
	newLookup := func() *PostLookup {
		repo := new(MockPostRepository)
		repo.On("List", mock.Anything, mock.Anything).Return(remote, nil)
		ledger := newFakeLedger()
		ledger.records["p2"] = &model.ModerationRecord{PostID: "p2", Status: model.StatusRejected, Reason: "spam", ReviewedAt: &reviewed, ReviewedBy: "a1"}
		return NewPostLookup(repo, ledger)
	}

	t.Run("Approved post is visible to anonymous viewers", func(t *testing.T) {
		p, err := newLookup().Visible(ctx, session.Anonymous(), "p3")
		require.NoError(t, err)
		assert.Equal(t, "p3", p.ID)
	})

	t.Run("Pending post is hidden from anonymous viewers and other members", func(t *testing.T) {
		_, err := newLookup().Visible(ctx, session.Anonymous(), "p1")
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = newLookup().Visible(ctx, viewer("u3", userModel.RoleMember), "p1")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Author and admin see the pending post", func(t *testing.T) {
		p, err := newLookup().Visible(ctx, viewer("u2", userModel.RoleMember), "p1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, p.Status)

		_, err = newLookup().Visible(ctx, viewer("a1", userModel.RoleAdmin), "p1")
		require.NoError(t, err)
	})

	t.Run("Ledger rejection overrides the remote status", func(t *testing.T) {
		_, err := newLookup().Visible(ctx, viewer("u3", userModel.RoleMember), "p2")
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		p, err := newLookup().Visible(ctx, viewer("u2", userModel.RoleMember), "p2")
		require.NoError(t, err)
		assert.Equal(t, model.StatusRejected, p.Status)
		assert.Equal(t, "spam", p.RejectionReason)
		assert.Equal(t, "a1", p.ReviewedBy)
	})

	t.Run("Unknown post is not found", func(t *testing.T) {
		_, err := newLookup().Visible(ctx, viewer("a1", userModel.RoleAdmin), "missing")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
