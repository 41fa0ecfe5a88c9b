package repository

import (
	"context"
	"strings"
	"time"

	commentRepo "social_moderation/internal/domain/comment/repository"
	commentModel "social_moderation/internal/domain/comment/model"
	"social_moderation/internal/domain/post/model"
	userRepo "social_moderation/internal/domain/user/repository"
	"social_moderation/internal/pkg/remote"
	"social_moderation/pkg/cache"
	"social_moderation/pkg/utils"

	"go.uber.org/zap"
)

const feedSnapshotKey = "posts:all"

// PostRepository 帖子数据由远端持有
type PostRepository interface {
	List(ctx context.Context, token string) ([]model.Post, error)
	ListByUser(ctx context.Context, token, userID string) ([]model.Post, error)
	Create(ctx context.Context, token, userID, caption string, mediaURLs []string) (*model.Post, error)
	Approve(ctx context.Context, token, postID string) error
	// Invalidate 丢弃全量快照
	Invalidate(ctx context.Context)
}

type postRepository struct {
	client      *remote.Client
	snapshot    *cache.Loader
	snapshotTTL time.Duration
}

// NewPostRepository cache 为 nil 或 snapshotTTL 为 0 时不缓存
func NewPostRepository(client *remote.Client, c cache.CacheService, snapshotTTL time.Duration, log *zap.Logger) PostRepository {
	return &postRepository{client: client, snapshot: cache.NewLoader(c, log), snapshotTTL: snapshotTTL}
}

// List 全量帖子走短期快照，并发未命中只请求远端一次
func (r *postRepository) List(ctx context.Context, token string) ([]model.Post, error) {
	return cache.Remember(ctx, r.snapshot, feedSnapshotKey, r.snapshotTTL, func(ctx context.Context) ([]model.Post, error) {
		raw, err := r.client.GetAllPosts(ctx, token)
		if err != nil {
			return nil, err
		}
		return ToPosts(raw), nil
	})
}

func (r *postRepository) ListByUser(ctx context.Context, token, userID string) ([]model.Post, error) {
	raw, err := r.client.GetUserPosts(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	return ToPosts(raw), nil
}

func (r *postRepository) Create(ctx context.Context, token, userID, caption string, mediaURLs []string) (*model.Post, error) {
	raw, err := r.client.CreatePost(ctx, token, userID, caption, mediaURLs)
	if err != nil {
		return nil, err
	}
	p := ToPost(raw)
	r.Invalidate(ctx)
	return &p, nil
}

// Approve 远端以帖子 ID 作为上传申请 ID
func (r *postRepository) Approve(ctx context.Context, token, postID string) error {
	if _, err := r.client.ApproveUploadRequest(ctx, token, postID); err != nil {
		return err
	}
	r.Invalidate(ctx)
	return nil
}

func (r *postRepository) Invalidate(ctx context.Context) {
	r.snapshot.Forget(ctx, feedSnapshotKey)
}

// ToPosts 跳过 nil 元素
func ToPosts(raw []*remote.Post) []model.Post {
	out := make([]model.Post, 0, len(raw))
	for _, p := range raw {
		if p == nil {
			continue
		}
		out = append(out, ToPost(p))
	}
	return out
}

// ToPost 远端帖子统一转换为本地模型，时间无法解析时为零值
func ToPost(p *remote.Post) model.Post {
	post := model.Post{
		ID:        p.ID,
		Caption:   p.Caption,
		Author:    userRepo.ToUser(p.User),
		CreatedAt: utils.ParseTimestamp(p.CreatedAt),
		Status:    model.ParseStatus(p.Status),
		Media:     make([]model.Media, 0, len(p.Media)),
		Comments:  make([]commentModel.Comment, 0, len(p.Comments)),
	}
	for _, m := range p.Media {
		if m == nil {
			continue
		}
		post.Media = append(post.Media, model.Media{
			ID:         m.ID,
			URL:        m.URL,
			Type:       parseMediaType(m.Type, m.URL),
			Compressed: m.Compressed,
		})
	}
	for _, c := range p.Comments {
		if c == nil {
			continue
		}
		post.Comments = append(post.Comments, commentRepo.ToComment(p.ID, c))
	}
	if p.Likes != nil || p.Shares != nil {
		post.Engagement = &model.Engagement{Comments: len(post.Comments)}
		if p.Likes != nil {
			post.Engagement.Likes = *p.Likes
		}
		if p.Shares != nil {
			post.Engagement.Shares = *p.Shares
		}
	}
	return post
}

// parseMediaType 兼容 "video" 与 "video/mp4" 两种写法，未知类型按图片处理
func parseMediaType(t, url string) model.MediaType {
	t = strings.ToLower(t)
	switch {
	case strings.HasPrefix(t, "video"):
		return model.MediaVideo
	case strings.HasPrefix(t, "audio"):
		return model.MediaAudio
	case t == "":
		return MediaTypeFromName(url)
	default:
		return model.MediaImage
	}
}

// MediaTypeFromName 按扩展名推断
func MediaTypeFromName(name string) model.MediaType {
	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	switch {
	case strings.HasSuffix(lower, ".mp4"), strings.HasSuffix(lower, ".mov"), strings.HasSuffix(lower, ".webm"):
		return model.MediaVideo
	case strings.HasSuffix(lower, ".mp3"), strings.HasSuffix(lower, ".wav"), strings.HasSuffix(lower, ".ogg"), strings.HasSuffix(lower, ".m4a"):
		return model.MediaAudio
	default:
		return model.MediaImage
	}
}
