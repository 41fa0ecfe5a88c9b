package handler

import (
	"time"

	commentModel "social_moderation/internal/domain/comment/model"
	"social_moderation/internal/domain/post/model"
	userModel "social_moderation/internal/domain/user/model"
	"social_moderation/internal/pkg/config"
	"social_moderation/pkg/utils"
)

// AuthorView 对外展示的作者信息，不含手机号
type AuthorView struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	Role     userModel.Role `json:"role"`
}

// PostView 帖子展示数据
type PostView struct {
	ID              string              `json:"id"`
	Caption         string              `json:"caption"`
	Author          AuthorView          `json:"author"`
	CreatedAt       *time.Time          `json:"createdAt,omitempty"`
	TimeLabel       string              `json:"timeLabel"`
	Status          model.Status        `json:"status"`
	Badge           model.Badge         `json:"badge"`
	RejectionReason string              `json:"rejectionReason,omitempty"`
	ReviewedAt      *time.Time          `json:"reviewedAt,omitempty"`
	ReviewedBy      string              `json:"reviewedBy,omitempty"`
	Media           []model.MediaView   `json:"media"`
	Comments        []commentModel.View `json:"comments"`
	Engagement      *model.Engagement   `json:"engagement,omitempty"`
}

// Presenter 负责展示层换算：相对时间、媒体地址、评论剩余时间
type Presenter struct {
	media config.MediaConfig
	now   func() time.Time
}

func NewPresenter(media config.MediaConfig) *Presenter {
	return &Presenter{media: media, now: time.Now}
}

func (p *Presenter) Post(post model.Post) PostView {
	now := p.now()
	v := PostView{
		ID:              post.ID,
		Caption:         post.Caption,
		Author:          AuthorOf(post.Author),
		TimeLabel:       utils.TimeAgo(post.CreatedAt, now),
		Status:          post.Status,
		Badge:           model.StatusBadge(post),
		RejectionReason: post.RejectionReason,
		ReviewedAt:      post.ReviewedAt,
		ReviewedBy:      post.ReviewedBy,
		Media:           make([]model.MediaView, len(post.Media)),
		Comments:        make([]commentModel.View, len(post.Comments)),
		Engagement:      post.Engagement,
	}
	if !post.CreatedAt.IsZero() {
		t := post.CreatedAt
		v.CreatedAt = &t
	}
	for i, m := range post.Media {
		v.Media[i] = model.MediaView{
			Media:        m,
			ThumbnailURL: m.DisplayURL(p.media.ThumbnailWidth, p.media.Placeholder),
			FullURL:      m.DisplayURL(p.media.FullWidth, p.media.Placeholder),
		}
	}
	for i, c := range post.Comments {
		v.Comments[i] = commentModel.ViewOf(c, now)
	}
	return v
}

func (p *Presenter) Posts(posts []model.Post) []PostView {
	out := make([]PostView, len(posts))
	for i, post := range posts {
		out[i] = p.Post(post)
	}
	return out
}

func AuthorOf(u userModel.User) AuthorView {
	return AuthorView{ID: u.ID, Username: u.Username, Role: u.Role}
}
